// Package handler contains the HTTP handlers for the diagnostic surface.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"locus/internal/delivery/http/response"
	"locus/internal/domain/entity"
	"locus/internal/domain/repository"
	"locus/internal/domain/validate"
	"locus/internal/errors"
	"locus/internal/usecase"
)

// GeolocHandler holds dependencies for the geolocation admin handlers.
type GeolocHandler struct {
	store  repository.ConfigStore
	uc     usecase.EProfileUsecase
	logger *slog.Logger
}

// NewGeolocHandler is the constructor for GeolocHandler, injected by Fx.
func NewGeolocHandler(store repository.ConfigStore, uc usecase.EProfileUsecase, logger *slog.Logger) *GeolocHandler {
	return &GeolocHandler{
		store:  store,
		uc:     uc,
		logger: logger,
	}
}

type locationView struct {
	ID           string `json:"id"`
	Format       string `json:"format"`
	Method       string `json:"method,omitempty"`
	LocationInfo string `json:"location_info"`
}

type profileView struct {
	ID                 string `json:"id"`
	LocationReference  string `json:"location_reference,omitempty"`
	PIDFElement        string `json:"pidf_element"`
	Action             string `json:"action"`
	GeolocationRouting bool   `json:"geolocation_routing"`
	SendLocation       bool   `json:"send_location"`
	LocationRefinement string `json:"location_refinement,omitempty"`
	LocationVariables  string `json:"location_variables,omitempty"`
	UsageRules         string `json:"usage_rules,omitempty"`
	Notes              string `json:"notes,omitempty"`
}

// eprofileView is the fully resolved view of a profile, field names
// matching the dialplan accessor names.
type eprofileView struct {
	ID                 string `json:"id"`
	LocationReference  string `json:"location_reference,omitempty"`
	Format             string `json:"format"`
	Method             string `json:"method,omitempty"`
	LocationSource     string `json:"location_source,omitempty"`
	PIDFElement        string `json:"pidf_element"`
	Action             string `json:"action"`
	GeolocationRouting bool   `json:"geolocation_routing"`
	SendLocation       bool   `json:"send_location"`
	LocationInfo       string `json:"location_info"`
	LocationRefinement string `json:"location_refinement,omitempty"`
	LocationVariables  string `json:"location_variables,omitempty"`
	EffectiveLocation  string `json:"effective_location"`
	UsageRules         string `json:"usage_rules,omitempty"`
	Notes              string `json:"notes,omitempty"`
}

func joinVars(list entity.VarList) string {
	return list.Join(",", "=", `"`)
}

// ListLocations returns every configured location.
func (h *GeolocHandler) ListLocations(c echo.Context) error {
	locations := h.store.ListLocations()

	views := make([]locationView, 0, len(locations))
	for _, loc := range locations {
		views = append(views, locationView{
			ID:           loc.ID,
			Format:       loc.Format.String(),
			Method:       loc.Method,
			LocationInfo: joinVars(loc.LocationInfo),
		})
	}

	return response.Success(c, http.StatusOK, views, "")
}

// ListProfiles returns every configured profile.
func (h *GeolocHandler) ListProfiles(c echo.Context) error {
	profiles := h.store.ListProfiles()

	views := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, profileView{
			ID:                 p.ID,
			LocationReference:  p.LocationReference,
			PIDFElement:        p.PIDFElement.String(),
			Action:             p.Action.String(),
			GeolocationRouting: p.GeolocationRouting,
			SendLocation:       p.SendLocation,
			LocationRefinement: joinVars(p.LocationRefinement),
			LocationVariables:  joinVars(p.LocationVariables),
			UsageRules:         joinVars(p.UsageRules),
			Notes:              p.Notes,
		})
	}

	return response.Success(c, http.StatusOK, views, "")
}

// ShowProfile resolves the named profile and returns its effective view.
func (h *GeolocHandler) ShowProfile(c echo.Context) error {
	id := c.Param("id")

	eprofile, err := h.uc.FromProfileID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) || errors.Is(err, repository.ErrLocationNotFound) {
			return response.NotFound(c, "PROFILE_NOT_FOUND", err.Error())
		}

		return response.UnprocessableEntity(c, "PROFILE_RESOLUTION_FAILED", err.Error())
	}

	view := eprofileView{
		ID:                 eprofile.ID,
		LocationReference:  eprofile.LocationReference,
		Format:             eprofile.Format.String(),
		Method:             eprofile.Method,
		LocationSource:     eprofile.LocationSource,
		PIDFElement:        eprofile.PIDFElement.String(),
		Action:             eprofile.Action.String(),
		GeolocationRouting: eprofile.GeolocationRouting,
		SendLocation:       eprofile.SendLocation,
		LocationInfo:       joinVars(eprofile.LocationInfo),
		LocationRefinement: joinVars(eprofile.LocationRefinement),
		LocationVariables:  joinVars(eprofile.LocationVariables),
		EffectiveLocation:  joinVars(eprofile.EffectiveLocation),
		UsageRules:         joinVars(eprofile.UsageRules),
		Notes:              eprofile.Notes,
	}

	return response.Success(c, http.StatusOK, view, "")
}

// ValidateInput is the request body for ad hoc varlist validation.
type ValidateInput struct {
	Format       string   `json:"format" validate:"required"`
	LocationInfo []string `json:"location_info" validate:"required,min=1"`
}

// ValidateOutput reports the validation outcome with the offending item.
type ValidateOutput struct {
	Result string `json:"result"`
	Item   string `json:"item,omitempty"`
}

// ValidateVarlist runs the format validator over a submitted variable list.
func (h *GeolocHandler) ValidateVarlist(c echo.Context) error {
	var input ValidateInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid validation input")
	}
	if err := c.Validate(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", err.Error())
	}

	format, err := entity.ParseFormat(input.Format)
	if err != nil {
		return response.BadRequest(c, "UNKNOWN_FORMAT", err.Error())
	}

	var list entity.VarList
	for _, item := range input.LocationInfo {
		parsed, parseErr := entity.ParseVarList(item)
		if parseErr != nil {
			return response.BadRequest(c, "MALFORMED_VARLIST", parseErr.Error())
		}
		list = append(list, parsed...)
	}

	var result validate.Result
	var item string
	switch format {
	case entity.FormatCivicAddress:
		result, item = validate.ValidateCivicAddr(list)
	case entity.FormatGML:
		result, item = validate.ValidateGML(list)
	case entity.FormatURI:
		if uri, _ := list.Get("URI"); uri == "" {
			result, item = validate.ResultNotEnoughVarnames, "URI"
		}
	default:
		return response.BadRequest(c, "UNKNOWN_FORMAT", "format has no validator")
	}

	return response.Success(c, http.StatusOK, ValidateOutput{
		Result: result.String(),
		Item:   item,
	}, "")
}

// Reload re-reads the geolocation objects file.
func (h *GeolocHandler) Reload(c echo.Context) error {
	if err := h.store.Reload(); err != nil {
		h.logger.Error("geolocation reload failed", slog.Any("error", err))

		return response.UnprocessableEntity(c, "RELOAD_FAILED", err.Error())
	}

	return response.Success(c, http.StatusOK, nil, "Geolocation objects reloaded")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
