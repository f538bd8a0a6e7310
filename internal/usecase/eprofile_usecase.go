package usecase

import (
	"context"
	"errors"

	"locus/internal/domain/entity"
)

// ErrMalformedPayload is returned when an inbound document or URI cannot be
// turned into an effective profile.
var ErrMalformedPayload = errors.New("malformed geolocation payload")

// VariableLookup resolves a call variable by name during ${...}
// substitution. Unresolved references are left literal. A nil lookup is
// valid and resolves nothing.
type VariableLookup func(name string) (string, bool)

// EProfileUsecase defines the interface for building and maintaining
// effective geolocation profiles.
type EProfileUsecase interface {
	// FromProfile builds an effective profile from a configured profile.
	FromProfile(ctx context.Context, profile *entity.Profile) (*entity.EProfile, error)

	// FromProfileID retrieves the named profile and builds from it.
	FromProfileID(ctx context.Context, id string) (*entity.EProfile, error)

	// Refresh re-resolves the referenced location, overlays the
	// refinement, substitutes variables and re-validates the effective
	// location. The profile is unchanged if any step fails.
	Refresh(ctx context.Context, eprofile *entity.EProfile, lookup VariableLookup) error

	// FromPIDF builds an effective profile from a PIDF-LO document body.
	// geolocURI is the value of the Geolocation header the document was
	// referenced by; its loc-src parameter is recorded if present.
	FromPIDF(ctx context.Context, body []byte, geolocURI string) (*entity.EProfile, error)

	// FromURI builds an effective profile from a bare location URI.
	FromURI(ctx context.Context, uri string) (*entity.EProfile, error)

	// ToURI resolves a URI-format effective profile to the URI to place
	// in an outgoing Geolocation header.
	ToURI(ctx context.Context, eprofile *entity.EProfile, lookup VariableLookup) (string, error)
}
