// Package callstore holds the resolved effective profiles for one call leg
// in precedence order. The store exposes ordered mutation primitives plus
// the action policy callers use when several sources contribute location
// data for the same leg.
//
// A store is not internally synchronized. Call-leg state is already
// serialized by the owning signaling layer, so the store assumes the usual
// single-writer-per-leg discipline. Pointers handed out by Get stay valid
// after the entry is removed from the store.
package callstore

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"locus/internal/domain/entity"
	"locus/internal/usecase"
)

// ErrNotFound is returned when an index or leg lookup misses.
var ErrNotFound = errors.New("geolocation store entry not found")

// ErrInvalidStore is returned for operations on a nil or malformed store
// handle. It is distinct from ErrNotFound so callers can tell programming
// errors from legitimate absence.
var ErrInvalidStore = errors.New("invalid geolocation store")

// Store is the ordered per-call-leg profile store.
type Store struct {
	id        string
	inherit   bool
	eprofiles []*entity.EProfile
}

// New creates an empty store. The id is required.
func New(id string) (*Store, error) {
	if id == "" {
		return nil, pkgerrors.Wrap(ErrInvalidStore, "store id is empty")
	}

	return &Store{id: id}, nil
}

// NewFromEProfile creates a store seeded with one already-built effective
// profile. The store takes the profile's id.
func NewFromEProfile(eprofile *entity.EProfile) (*Store, error) {
	if eprofile == nil {
		return nil, pkgerrors.Wrap(ErrInvalidStore, "effective profile is nil")
	}

	store, err := New(eprofile.ID)
	if err != nil {
		return nil, err
	}
	store.eprofiles = append(store.eprofiles, eprofile)

	return store, nil
}

// NewFromProfileName resolves the named configured profile, builds its
// effective profile and seeds a store with it.
func NewFromProfileName(ctx context.Context, name string, builder usecase.EProfileUsecase) (*Store, error) {
	if name == "" {
		return nil, pkgerrors.Wrap(ErrInvalidStore, "profile name is empty")
	}

	eprofile, err := builder.FromProfileID(ctx, name)
	if err != nil {
		return nil, err
	}

	return NewFromEProfile(eprofile)
}

// ID returns the store id.
func (s *Store) ID() string {
	if s == nil {
		return ""
	}

	return s.id
}

// Size returns the number of held entries.
func (s *Store) Size() int {
	if s == nil {
		return 0
	}

	return len(s.eprofiles)
}

// SetInheritance sets whether a forked or bridged leg should carry this
// store forward. The flag is consulted by the call-leg layer, not enforced
// here.
func (s *Store) SetInheritance(inherit bool) error {
	if s == nil {
		return ErrInvalidStore
	}
	s.inherit = inherit

	return nil
}

// Inheritable reports the inheritance flag.
func (s *Store) Inheritable() bool {
	return s != nil && s.inherit
}

// Add appends an entry and returns the new count.
func (s *Store) Add(eprofile *entity.EProfile) (int, error) {
	if s == nil {
		return 0, ErrInvalidStore
	}
	if eprofile == nil {
		return 0, pkgerrors.Wrap(ErrInvalidStore, "effective profile is nil")
	}

	s.eprofiles = append(s.eprofiles, eprofile)

	return len(s.eprofiles), nil
}

// Insert inserts an entry at index, shifting later entries. An out of range
// index is clamped to the valid range. Returns the new count.
func (s *Store) Insert(eprofile *entity.EProfile, index int) (int, error) {
	if s == nil {
		return 0, ErrInvalidStore
	}
	if eprofile == nil {
		return 0, pkgerrors.Wrap(ErrInvalidStore, "effective profile is nil")
	}

	if index < 0 {
		index = 0
	}
	if index > len(s.eprofiles) {
		index = len(s.eprofiles)
	}

	s.eprofiles = append(s.eprofiles, nil)
	copy(s.eprofiles[index+1:], s.eprofiles[index:])
	s.eprofiles[index] = eprofile

	return len(s.eprofiles), nil
}

// Get returns the entry at index. The returned pointer is shared with the
// store and stays valid after removal.
func (s *Store) Get(index int) (*entity.EProfile, error) {
	if s == nil {
		return nil, ErrInvalidStore
	}
	if index < 0 || index >= len(s.eprofiles) {
		return nil, ErrNotFound
	}

	return s.eprofiles[index], nil
}

// Delete removes the entry at index, shifting later entries down.
func (s *Store) Delete(index int) error {
	if s == nil {
		return ErrInvalidStore
	}
	if index < 0 || index >= len(s.eprofiles) {
		return ErrNotFound
	}

	s.eprofiles = append(s.eprofiles[:index], s.eprofiles[index+1:]...)

	return nil
}

// Apply combines an incoming effective profile with the current contents
// according to the action policy and returns the new count.
//
// Discard replaces the entire contents. Append and Prepend add at the end
// and the start. Replace removes the first entry whose method matches the
// incoming one and inserts at its position, or appends if none matched.
func (s *Store) Apply(action entity.Action, eprofile *entity.EProfile) (int, error) {
	if s == nil {
		return 0, ErrInvalidStore
	}
	if eprofile == nil {
		return 0, pkgerrors.Wrap(ErrInvalidStore, "effective profile is nil")
	}

	switch action {
	case entity.ActionDiscard:
		s.eprofiles = []*entity.EProfile{eprofile}

		return 1, nil
	case entity.ActionAppend:
		return s.Add(eprofile)
	case entity.ActionPrepend:
		return s.Insert(eprofile, 0)
	case entity.ActionReplace:
		for i, existing := range s.eprofiles {
			if existing.Method == eprofile.Method {
				s.eprofiles[i] = eprofile

				return len(s.eprofiles), nil
			}
		}

		return s.Add(eprofile)
	default:
		return 0, pkgerrors.Errorf("unknown action %d", action)
	}
}
