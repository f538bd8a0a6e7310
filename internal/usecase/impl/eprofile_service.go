package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/google/uuid"

	"locus/config"
	"locus/internal/domain/entity"
	"locus/internal/domain/repository"
	"locus/internal/domain/validate"
	"locus/internal/infra/pidf"
	"locus/internal/usecase"
)

type eprofileService struct {
	locationRepo repository.LocationRepository
	profileRepo  repository.ProfileRepository
	config       *config.Config
	logger       *slog.Logger
}

// NewEProfileService creates a new effective profile service instance
func NewEProfileService(
	locationRepo repository.LocationRepository,
	profileRepo repository.ProfileRepository,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.EProfileUsecase {
	return &eprofileService{
		locationRepo: locationRepo,
		profileRepo:  profileRepo,
		config:       cfg,
		logger:       logger,
	}
}

// FromProfile builds an effective profile from a configured profile.
func (s *eprofileService) FromProfile(ctx context.Context, profile *entity.Profile) (*entity.EProfile, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is nil")
	}

	eprofile := &entity.EProfile{
		ID:                 profile.ID,
		LocationReference:  profile.LocationReference,
		PIDFElement:        profile.PIDFElement,
		Action:             profile.Action,
		GeolocationRouting: profile.GeolocationRouting,
		SendLocation:       profile.SendLocation,
		LocationRefinement: profile.LocationRefinement.Clone(),
		LocationVariables:  profile.LocationVariables.Clone(),
		UsageRules:         profile.UsageRules.Clone(),
		Notes:              profile.Notes,
	}

	if err := s.Refresh(ctx, eprofile, nil); err != nil {
		return nil, err
	}

	return eprofile, nil
}

// FromProfileID retrieves the named profile and builds from it.
func (s *eprofileService) FromProfileID(ctx context.Context, id string) (*entity.EProfile, error) {
	profile, err := s.profileRepo.RetrieveProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve profile: %w", err)
	}

	return s.FromProfile(ctx, profile)
}

// Refresh re-resolves the referenced location, overlays the refinement,
// substitutes variables and re-validates the effective location. Nothing is
// written back until every step has succeeded.
func (s *eprofileService) Refresh(ctx context.Context, eprofile *entity.EProfile, lookup usecase.VariableLookup) error {
	if eprofile == nil {
		return fmt.Errorf("effective profile is nil")
	}

	format := eprofile.Format
	method := eprofile.Method
	locInfo := eprofile.LocationInfo

	if eprofile.LocationReference != "" {
		location, err := s.locationRepo.RetrieveLocation(ctx, eprofile.LocationReference)
		if err != nil {
			return fmt.Errorf("failed to retrieve location %q: %w", eprofile.LocationReference, err)
		}

		format = location.Format
		method = location.Method
		locInfo = location.LocationInfo.Clone()
	}

	effective := locInfo.Clone()
	for _, v := range eprofile.LocationRefinement {
		effective.Replace(v.Name, v.Value)
	}
	effective = resolveVarList(effective, eprofile.LocationVariables, lookup)

	if err := validateEffective(format, effective); err != nil {
		return fmt.Errorf("profile %q effective location: %w", eprofile.ID, err)
	}

	eprofile.Format = format
	eprofile.Method = method
	eprofile.LocationInfo = locInfo
	eprofile.EffectiveLocation = effective

	return nil
}

// FromPIDF builds an effective profile from a PIDF-LO document body.
func (s *eprofileService) FromPIDF(ctx context.Context, body []byte, geolocURI string) (*entity.EProfile, error) {
	doc, err := pidf.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", usecase.ErrMalformedPayload, err)
	}

	location, err := doc.FindLocation()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", usecase.ErrMalformedPayload, err)
	}

	id := location.ID
	if id == "" {
		id = uuid.NewString()
	}

	eprofile := &entity.EProfile{
		ID:           id,
		PIDFElement:  location.Element,
		Format:       location.Format,
		Method:       location.Method,
		Notes:        location.Notes,
		LocationInfo: location.LocationInfo,
		UsageRules:   location.UsageRules,
	}
	if eprofile.Format == entity.FormatCivicAddress {
		if lang, _ := eprofile.LocationInfo.Get("lang"); lang == "" && s.config.Geolocation.DefaultLanguage != "" {
			eprofile.LocationInfo.Replace("lang", s.config.Geolocation.DefaultLanguage)
		}
	}
	s.setLocationSource(eprofile, geolocURI)

	if err := s.Refresh(ctx, eprofile, nil); err != nil {
		return nil, err
	}

	return eprofile, nil
}

// FromURI builds an effective profile from a bare location URI. Angle
// brackets around the URI are stripped; parameters inside the brackets
// belong to the URI itself and are kept. Header parameters only start
// after the closing bracket, or at a recognized loc-src parameter when the
// URI is unbracketed.
func (s *eprofileService) FromURI(ctx context.Context, uri string) (*entity.EProfile, error) {
	local := strings.TrimSpace(uri)
	if strings.HasPrefix(local, "<") {
		local = local[1:]
		if idx := strings.Index(local, ">"); idx >= 0 {
			local = local[:idx]
		}
	} else if idx := strings.Index(local, ";loc-src="); idx >= 0 {
		local = local[:idx]
	}
	local = strings.TrimSpace(local)
	if local == "" {
		return nil, fmt.Errorf("%w: empty location URI", usecase.ErrMalformedPayload)
	}

	eprofile := &entity.EProfile{
		ID:           local,
		Format:       entity.FormatURI,
		LocationInfo: entity.VarList{{Name: "URI", Value: local}},
	}
	s.setLocationSource(eprofile, uri)

	if err := s.Refresh(ctx, eprofile, nil); err != nil {
		return nil, err
	}

	return eprofile, nil
}

// ToURI resolves a URI-format effective profile to the URI to place in an
// outgoing Geolocation header.
func (s *eprofileService) ToURI(_ context.Context, eprofile *entity.EProfile, lookup usecase.VariableLookup) (string, error) {
	if eprofile == nil {
		return "", fmt.Errorf("effective profile is nil")
	}
	if eprofile.Format != entity.FormatURI {
		return "", fmt.Errorf("profile %q is not a URI profile, it's %q", eprofile.ID, eprofile.Format)
	}

	resolved := resolveVarList(eprofile.EffectiveLocation, eprofile.LocationVariables, lookup)
	uri, _ := resolved.Get("URI")
	if uri == "" {
		return "", fmt.Errorf("profile %q has no URI entry in its effective location", eprofile.ID)
	}

	return uri, nil
}

// setLocationSource records the loc-src parameter of a Geolocation URI.
// Parameters start after the closing angle bracket when the URI is
// bracketed. RFC 8787 requires that IP address sources be dropped.
func (s *eprofileService) setLocationSource(eprofile *entity.EProfile, uri string) {
	rest := uri
	if idx := strings.Index(rest, ">"); idx >= 0 {
		rest = rest[idx+1:]
	}

	_, params, found := strings.Cut(rest, ";")
	if !found {
		return
	}

	for _, param := range strings.Split(params, ";") {
		value, ok := strings.CutPrefix(strings.TrimSpace(param), "loc-src=")
		if !ok || value == "" {
			continue
		}

		host := strings.Trim(value, "[]")
		if net.ParseIP(host) != nil {
			s.logger.Warn("dropping loc-src, IP addresses are not allowed",
				slog.String("uri", uri), slog.String("loc-src", value))

			continue
		}

		eprofile.LocationSource = value

		return
	}
}

func validateEffective(format entity.Format, effective entity.VarList) error {
	switch format {
	case entity.FormatCivicAddress:
		return validate.CivicAddrError(effective)
	case entity.FormatGML:
		return validate.GMLError(effective)
	case entity.FormatURI:
		if uri, _ := effective.Get("URI"); uri == "" {
			return fmt.Errorf("no URI entry in location")
		}

		return nil
	default:
		return fmt.Errorf("location has no usable format")
	}
}

// resolveVarList substitutes ${...} references in source. Values in the
// variables list are pre-resolved in order so later variables can reference
// earlier ones, then the source values are resolved against the variables
// and the lookup.
func resolveVarList(source, variables entity.VarList, lookup usecase.VariableLookup) entity.VarList {
	resolved := make(map[string]string, len(variables))

	resolve := func(name string) (string, bool) {
		if value, ok := resolved[name]; ok {
			return value, true
		}
		if lookup != nil {
			return lookup(name)
		}

		return "", false
	}

	for _, v := range variables {
		resolved[v.Name] = substitute(v.Value, resolve)
	}

	dest := make(entity.VarList, 0, len(source))
	for _, v := range source {
		dest = append(dest, entity.Var{Name: v.Name, Value: substitute(v.Value, resolve)})
	}

	return dest
}

// substitute expands ${NAME} references in value. References that do not
// resolve are left literal.
func substitute(value string, resolve func(name string) (string, bool)) string {
	if !strings.Contains(value, "${") {
		return value
	}

	var b strings.Builder
	rest := value
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			b.WriteString(rest)

			break
		}

		end := strings.Index(rest[start:], "}")
		if end < 0 {
			b.WriteString(rest)

			break
		}

		b.WriteString(rest[:start])
		name := rest[start+2 : start+end]
		if replacement, ok := resolve(name); ok {
			b.WriteString(replacement)
		} else {
			b.WriteString(rest[start : start+end+1])
		}
		rest = rest[start+end+1:]
	}

	return b.String()
}
