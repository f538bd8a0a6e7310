// Package yamlstore loads geolocation location and profile definitions from
// a YAML objects file and serves them through the repository contracts.
// Definitions are checked at load time so consumers never see an object that
// would fail at call time.
package yamlstore

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"locus/config"
	"locus/internal/domain/entity"
	"locus/internal/domain/repository"
	"locus/internal/domain/validate"
)

// locationRecord is the YAML shape of one location definition. Variable
// lists are lists of "name=value" strings because mapping keys would lose
// ordering and duplicate names.
type locationRecord struct {
	ID           string   `koanf:"id" validate:"required"`
	Format       string   `koanf:"format" validate:"required"`
	Method       string   `koanf:"method"`
	LocationInfo []string `koanf:"location_info" validate:"required,min=1"`
}

type profileRecord struct {
	ID                 string   `koanf:"id" validate:"required"`
	LocationReference  string   `koanf:"location_reference"`
	PIDFElement        string   `koanf:"pidf_element"`
	Action             string   `koanf:"action"`
	GeolocationRouting bool     `koanf:"geolocation_routing"`
	SendLocation       bool     `koanf:"send_location"`
	LocationRefinement []string `koanf:"location_refinement"`
	LocationVariables  []string `koanf:"location_variables"`
	UsageRules         []string `koanf:"usage_rules"`
	Notes              string   `koanf:"notes"`
}

type document struct {
	Locations []locationRecord `koanf:"locations"`
	Profiles  []profileRecord  `koanf:"profiles"`
}

// Params defines the dependencies for creating a Store.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// Store is the YAML-backed object store. Reload swaps the whole object set
// atomically; a failed reload leaves the previous set serving.
type Store struct {
	path      string
	logger    *slog.Logger
	validator *validator.Validate

	mu        sync.RWMutex
	locations map[string]*entity.Location
	profiles  map[string]*entity.Profile
}

// New creates a Store and performs the initial load.
func New(params Params) (*Store, error) {
	store := &Store{
		path:      params.Config.Geolocation.Path,
		logger:    params.Logger,
		validator: validator.New(),
	}

	if err := store.Reload(); err != nil {
		return nil, err
	}

	return store, nil
}

// Reload re-reads the objects file. On any error the previous object set is
// kept.
func (s *Store) Reload() error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
		return errors.Wrapf(err, "read objects file %q", s.path)
	}

	var doc document
	if err := k.Unmarshal("", &doc); err != nil {
		return errors.Wrapf(err, "unmarshal objects file %q", s.path)
	}

	locations := make(map[string]*entity.Location, len(doc.Locations))
	for _, rec := range doc.Locations {
		loc, err := s.buildLocation(rec)
		if err != nil {
			return err
		}
		if _, exists := locations[loc.ID]; exists {
			return errors.Errorf("location %q is defined more than once", loc.ID)
		}
		locations[loc.ID] = loc
	}

	profiles := make(map[string]*entity.Profile, len(doc.Profiles))
	for _, rec := range doc.Profiles {
		profile, err := s.buildProfile(rec, locations)
		if err != nil {
			return err
		}
		if _, exists := profiles[profile.ID]; exists {
			return errors.Errorf("profile %q is defined more than once", profile.ID)
		}
		profiles[profile.ID] = profile
	}

	s.mu.Lock()
	s.locations = locations
	s.profiles = profiles
	s.mu.Unlock()

	s.logger.Info("geolocation objects loaded",
		slog.String("path", s.path),
		slog.Int("locations", len(locations)),
		slog.Int("profiles", len(profiles)))

	return nil
}

func (s *Store) buildLocation(rec locationRecord) (*entity.Location, error) {
	if err := s.validator.Struct(rec); err != nil {
		return nil, errors.Wrapf(err, "location %q", rec.ID)
	}

	format, err := entity.ParseFormat(rec.Format)
	if err != nil {
		return nil, errors.Wrapf(err, "location %q", rec.ID)
	}

	info, err := parseVarItems(rec.LocationInfo)
	if err != nil {
		return nil, errors.Wrapf(err, "location %q location_info", rec.ID)
	}

	switch format {
	case entity.FormatCivicAddress:
		if err := validate.CivicAddrError(info); err != nil {
			return nil, errors.Wrapf(err, "location %q location_info", rec.ID)
		}
	case entity.FormatGML:
		if err := validate.GMLError(info); err != nil {
			return nil, errors.Wrapf(err, "location %q location_info", rec.ID)
		}
	case entity.FormatURI:
		if uri, _ := info.Get("URI"); uri == "" {
			return nil, errors.Errorf("location %q format is URI but location_info has no URI entry", rec.ID)
		}
	default:
		return nil, errors.Errorf("location %q has no usable format", rec.ID)
	}

	return &entity.Location{
		ID:           rec.ID,
		Format:       format,
		Method:       rec.Method,
		LocationInfo: info,
	}, nil
}

func (s *Store) buildProfile(rec profileRecord, locations map[string]*entity.Location) (*entity.Profile, error) {
	if err := s.validator.Struct(rec); err != nil {
		return nil, errors.Wrapf(err, "profile %q", rec.ID)
	}

	profile := &entity.Profile{
		ID:                 rec.ID,
		LocationReference:  rec.LocationReference,
		GeolocationRouting: rec.GeolocationRouting,
		SendLocation:       rec.SendLocation,
		Notes:              rec.Notes,
	}

	var err error
	if rec.PIDFElement != "" {
		if profile.PIDFElement, err = entity.ParsePIDFElement(rec.PIDFElement); err != nil {
			return nil, errors.Wrapf(err, "profile %q", rec.ID)
		}
	}
	if rec.Action != "" {
		if profile.Action, err = entity.ParseAction(rec.Action); err != nil {
			return nil, errors.Wrapf(err, "profile %q", rec.ID)
		}
	}

	if profile.LocationRefinement, err = parseVarItems(rec.LocationRefinement); err != nil {
		return nil, errors.Wrapf(err, "profile %q location_refinement", rec.ID)
	}
	if profile.LocationVariables, err = parseVarItems(rec.LocationVariables); err != nil {
		return nil, errors.Wrapf(err, "profile %q location_variables", rec.ID)
	}
	if profile.UsageRules, err = parseVarItems(rec.UsageRules); err != nil {
		return nil, errors.Wrapf(err, "profile %q usage_rules", rec.ID)
	}

	if profile.LocationReference == "" {
		if len(profile.LocationRefinement) > 0 || len(profile.LocationVariables) > 0 {
			return nil, errors.Errorf(
				"profile %q can't have location_refinement or location_variables without a location_reference", rec.ID)
		}

		return profile, nil
	}

	location, ok := locations[profile.LocationReference]
	if !ok {
		return nil, errors.Errorf("profile %q has a location_reference %q that doesn't exist",
			rec.ID, profile.LocationReference)
	}

	// Refinement entries overlay the referenced civic address, so their
	// names must belong to the taxonomy. Partial lists are fine.
	if len(profile.LocationRefinement) > 0 && location.Format == entity.FormatCivicAddress {
		if result, item := validate.ValidateCivicAddrNames(profile.LocationRefinement); result != validate.ResultSuccess {
			return nil, errors.Errorf("profile %q location_refinement: %s: %q", rec.ID, result, item)
		}
	}

	return profile, nil
}

// parseVarItems parses a list of "name=value" items into an ordered variable
// list. A single item may itself hold a comma separated list.
func parseVarItems(items []string) (entity.VarList, error) {
	var list entity.VarList
	for _, item := range items {
		parsed, err := entity.ParseVarList(item)
		if err != nil {
			return nil, err
		}
		list = append(list, parsed...)
	}

	return list, nil
}

// RetrieveLocation implements repository.LocationRepository.
func (s *Store) RetrieveLocation(_ context.Context, id string) (*entity.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	location, ok := s.locations[id]
	if !ok {
		return nil, errors.Wrapf(repository.ErrLocationNotFound, "location %q", id)
	}

	return location, nil
}

// RetrieveProfile implements repository.ProfileRepository.
func (s *Store) RetrieveProfile(_ context.Context, id string) (*entity.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[id]
	if !ok {
		return nil, errors.Wrapf(repository.ErrProfileNotFound, "profile %q", id)
	}

	return profile, nil
}

// ListLocations returns all locations sorted by id.
func (s *Store) ListLocations() []*entity.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// ListProfiles returns all profiles sorted by id.
func (s *Store) ListProfiles() []*entity.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
