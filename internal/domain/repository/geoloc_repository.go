// Package repository defines the retrieval contracts the engine consumes
// from the configuration object store.
package repository

import (
	"context"
	"errors"

	"locus/internal/domain/entity"
)

// ErrLocationNotFound is returned when a location id is not configured.
var ErrLocationNotFound = errors.New("location not found")

// ErrProfileNotFound is returned when a profile id is not configured.
var ErrProfileNotFound = errors.New("profile not found")

// LocationRepository retrieves configured location objects by id.
// Returned objects are shared snapshots; callers must clone before mutating.
type LocationRepository interface {
	RetrieveLocation(ctx context.Context, id string) (*entity.Location, error)
}

// ProfileRepository retrieves configured profile objects by id.
type ProfileRepository interface {
	RetrieveProfile(ctx context.Context, id string) (*entity.Profile, error)
}

// ConfigStore combines retrieval with the administrative operations the
// diagnostic surface needs.
type ConfigStore interface {
	LocationRepository
	ProfileRepository

	ListLocations() []*entity.Location
	ListProfiles() []*entity.Profile
	Reload() error
}
