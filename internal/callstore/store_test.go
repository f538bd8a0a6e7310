package callstore

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locus/config"
	"locus/internal/domain/entity"
	"locus/internal/domain/repository"
	"locus/internal/usecase/impl"
)

func ep(id, method string) *entity.EProfile {
	return &entity.EProfile{ID: id, Method: method}
}

func TestNewRequiresID(t *testing.T) {
	t.Parallel()

	_, err := New("")
	assert.ErrorIs(t, err, ErrInvalidStore)

	store, err := New("leg-1")
	require.NoError(t, err)
	assert.Equal(t, "leg-1", store.ID())
	assert.Zero(t, store.Size())
}

func TestNewFromEProfile(t *testing.T) {
	t.Parallel()

	_, err := NewFromEProfile(nil)
	assert.ErrorIs(t, err, ErrInvalidStore)

	store, err := NewFromEProfile(ep("p1", "Manual"))
	require.NoError(t, err)
	assert.Equal(t, "p1", store.ID())
	assert.Equal(t, 1, store.Size())
}

type staticLocations map[string]*entity.Location

func (s staticLocations) RetrieveLocation(_ context.Context, id string) (*entity.Location, error) {
	if loc, ok := s[id]; ok {
		return loc, nil
	}

	return nil, repository.ErrLocationNotFound
}

type staticProfiles map[string]*entity.Profile

func (s staticProfiles) RetrieveProfile(_ context.Context, id string) (*entity.Profile, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}

	return nil, repository.ErrProfileNotFound
}

func TestNewFromProfileName(t *testing.T) {
	t.Parallel()

	builder := impl.NewEProfileService(
		staticLocations{"desk-civic": {
			ID:     "desk-civic",
			Format: entity.FormatCivicAddress,
			LocationInfo: entity.VarList{
				{Name: "country", Value: "US"},
				{Name: "A1", Value: "CA"},
			},
		}},
		staticProfiles{"sales-desk": {
			ID:                "sales-desk",
			LocationReference: "desk-civic",
		}},
		&config.Config{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	ctx := context.Background()

	store, err := NewFromProfileName(ctx, "sales-desk", builder)
	require.NoError(t, err)
	require.Equal(t, 1, store.Size())

	eprofile, err := store.Get(0)
	require.NoError(t, err)
	assert.Equal(t, entity.FormatCivicAddress, eprofile.Format)
	assert.Equal(t, entity.VarList{
		{Name: "country", Value: "US"},
		{Name: "A1", Value: "CA"},
	}, eprofile.EffectiveLocation)

	_, err = NewFromProfileName(ctx, "", builder)
	assert.ErrorIs(t, err, ErrInvalidStore)

	_, err = NewFromProfileName(ctx, "unknown", builder)
	assert.ErrorIs(t, err, repository.ErrProfileNotFound)
}

func TestAddGetDelete(t *testing.T) {
	t.Parallel()

	store, err := New("leg")
	require.NoError(t, err)

	count, err := store.Add(ep("a", "GPS"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = store.Add(ep("b", "Manual"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)

	_, err = store.Get(2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(-1)
	assert.ErrorIs(t, err, ErrNotFound)

	// A pointer obtained before removal stays usable.
	held, err := store.Get(0)
	require.NoError(t, err)
	require.NoError(t, store.Delete(0))
	assert.Equal(t, "a", held.ID)
	assert.Equal(t, 1, store.Size())

	got, err = store.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)

	assert.ErrorIs(t, store.Delete(5), ErrNotFound)

	_, err = store.Add(nil)
	assert.ErrorIs(t, err, ErrInvalidStore)
}

func TestInsertClampsIndex(t *testing.T) {
	t.Parallel()

	store, err := New("leg")
	require.NoError(t, err)
	_, err = store.Add(ep("a", ""))
	require.NoError(t, err)
	_, err = store.Add(ep("b", ""))
	require.NoError(t, err)

	count, err := store.Insert(ep("first", ""), -5)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	got, _ := store.Get(0)
	assert.Equal(t, "first", got.ID)

	count, err = store.Insert(ep("last", ""), 99)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	got, _ = store.Get(3)
	assert.Equal(t, "last", got.ID)

	count, err = store.Insert(ep("middle", ""), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	got, _ = store.Get(2)
	assert.Equal(t, "middle", got.ID)
}

func TestNilStoreOperationsFailDistinctly(t *testing.T) {
	t.Parallel()

	var store *Store

	assert.Equal(t, "", store.ID())
	assert.Zero(t, store.Size())
	assert.False(t, store.Inheritable())
	assert.ErrorIs(t, store.SetInheritance(true), ErrInvalidStore)

	_, err := store.Add(ep("a", ""))
	assert.ErrorIs(t, err, ErrInvalidStore)
	_, err = store.Get(0)
	assert.ErrorIs(t, err, ErrInvalidStore)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(0), ErrInvalidStore)
	_, err = store.Apply(entity.ActionAppend, ep("a", ""))
	assert.ErrorIs(t, err, ErrInvalidStore)
}

func TestInheritance(t *testing.T) {
	t.Parallel()

	store, err := New("leg")
	require.NoError(t, err)

	assert.False(t, store.Inheritable())
	require.NoError(t, store.SetInheritance(true))
	assert.True(t, store.Inheritable())
}

func TestApplyDiscard(t *testing.T) {
	t.Parallel()

	store, err := New("leg")
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		_, err = store.Add(ep(id, ""))
		require.NoError(t, err)
	}

	count, err := store.Apply(entity.ActionDiscard, ep("winner", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "winner", got.ID)
}

func TestApplyAppendPrepend(t *testing.T) {
	t.Parallel()

	store, err := New("leg")
	require.NoError(t, err)
	_, err = store.Apply(entity.ActionAppend, ep("mid", ""))
	require.NoError(t, err)
	_, err = store.Apply(entity.ActionAppend, ep("last", ""))
	require.NoError(t, err)
	_, err = store.Apply(entity.ActionPrepend, ep("first", ""))
	require.NoError(t, err)

	ids := make([]string, 0, store.Size())
	for i := 0; i < store.Size(); i++ {
		got, getErr := store.Get(i)
		require.NoError(t, getErr)
		ids = append(ids, got.ID)
	}
	assert.Equal(t, []string{"first", "mid", "last"}, ids)
}

func TestApplyReplaceByMethod(t *testing.T) {
	t.Parallel()

	store, err := New("leg")
	require.NoError(t, err)
	_, err = store.Add(ep("a", "Manual"))
	require.NoError(t, err)
	_, err = store.Add(ep("b", "gps"))
	require.NoError(t, err)
	_, err = store.Add(ep("c", "Hybrid"))
	require.NoError(t, err)

	// Same method: exactly one gps entry remains, at the old position.
	count, err := store.Apply(entity.ActionReplace, ep("b2", "gps"))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	got, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "b2", got.ID)

	// No matching method: appended.
	count, err = store.Apply(entity.ActionReplace, ep("d", "Derived"))
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	got, err = store.Get(3)
	require.NoError(t, err)
	assert.Equal(t, "d", got.ID)
}

type fakeLeg map[string]any

func (f fakeLeg) AttachData(key string, value any) { f[key] = value }

func (f fakeLeg) FindData(key string) (any, bool) {
	value, ok := f[key]

	return value, ok
}

func TestAttachAndFind(t *testing.T) {
	t.Parallel()

	leg := fakeLeg{}

	_, err := Find(leg)
	assert.ErrorIs(t, err, ErrNotFound)

	store, err := New("leg")
	require.NoError(t, err)
	require.NoError(t, Attach(leg, store))

	found, err := Find(leg)
	require.NoError(t, err)
	assert.Same(t, store, found)

	// A foreign value under the key is a programming error, not absence.
	leg.AttachData("geolocation", "junk")
	_, err = Find(leg)
	assert.ErrorIs(t, err, ErrInvalidStore)

	assert.ErrorIs(t, Attach(leg, nil), ErrInvalidStore)
	assert.ErrorIs(t, Attach(nil, store), ErrInvalidStore)
}
