package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locus/config"
	"locus/internal/delivery/http/validator"
	"locus/internal/domain/entity"
	"locus/internal/domain/repository"
	"locus/internal/usecase/impl"
)

type fakeConfigStore struct {
	locations map[string]*entity.Location
	profiles  map[string]*entity.Profile
	reloadErr error
	reloads   int
}

func (f *fakeConfigStore) RetrieveLocation(_ context.Context, id string) (*entity.Location, error) {
	if loc, ok := f.locations[id]; ok {
		return loc, nil
	}

	return nil, repository.ErrLocationNotFound
}

func (f *fakeConfigStore) RetrieveProfile(_ context.Context, id string) (*entity.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}

	return nil, repository.ErrProfileNotFound
}

func (f *fakeConfigStore) ListLocations() []*entity.Location {
	out := make([]*entity.Location, 0, len(f.locations))
	for _, loc := range f.locations {
		out = append(out, loc)
	}

	return out
}

func (f *fakeConfigStore) ListProfiles() []*entity.Profile {
	out := make([]*entity.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}

	return out
}

func (f *fakeConfigStore) Reload() error {
	f.reloads++

	return f.reloadErr
}

func newTestHandler(store *fakeConfigStore) *GeolocHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := impl.NewEProfileService(store, store, &config.Config{}, logger)

	return NewGeolocHandler(store, uc, logger)
}

func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func testStore() *fakeConfigStore {
	return &fakeConfigStore{
		locations: map[string]*entity.Location{
			"campus": {
				ID:     "campus",
				Format: entity.FormatCivicAddress,
				Method: "Manual",
				LocationInfo: entity.VarList{
					{Name: "country", Value: "US"},
					{Name: "A1", Value: "Ohio"},
				},
			},
		},
		profiles: map[string]*entity.Profile{
			"desk": {
				ID:                 "desk",
				LocationReference:  "campus",
				PIDFElement:        entity.PIDFElementTuple,
				LocationRefinement: entity.VarList{{Name: "FLR", Value: "2"}},
			},
		},
	}
}

func TestListLocations(t *testing.T) {
	t.Parallel()

	h := newTestHandler(testStore())
	c, rec := newContext(t, http.MethodGet, "/geoloc/locations", "")

	require.NoError(t, h.ListLocations(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"campus"`)
	assert.Contains(t, rec.Body.String(), "civicAddress")
}

func TestShowProfileResolvesEffectiveLocation(t *testing.T) {
	t.Parallel()

	h := newTestHandler(testStore())
	c, rec := newContext(t, http.MethodGet, "/geoloc/profiles/desk", "")
	c.SetParamNames("id")
	c.SetParamValues("desk")

	require.NoError(t, h.ShowProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Format            string `json:"format"`
			EffectiveLocation string `json:"effective_location"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "civicAddress", envelope.Data.Format)
	assert.Contains(t, envelope.Data.EffectiveLocation, `FLR="2"`)
}

func TestShowProfileNotFound(t *testing.T) {
	t.Parallel()

	h := newTestHandler(testStore())
	c, rec := newContext(t, http.MethodGet, "/geoloc/profiles/ghost", "")
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	require.NoError(t, h.ShowProfile(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidateVarlist(t *testing.T) {
	t.Parallel()

	h := newTestHandler(testStore())

	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantResult string
		wantItem   string
	}{
		{
			name:       "valid civic",
			body:       `{"format":"civicAddress","location_info":["country=US","A3=Columbus"]}`,
			wantCode:   http.StatusOK,
			wantResult: "Success",
		},
		{
			name:       "unknown civic element",
			body:       `{"format":"civicAddress","location_info":["country=US","zipcode=1"]}`,
			wantCode:   http.StatusOK,
			wantResult: "Invalid variable name",
			wantItem:   "zipcode",
		},
		{
			name:       "gml missing shape",
			body:       `{"format":"GML","location_info":["pos=1 2"]}`,
			wantCode:   http.StatusOK,
			wantResult: "Missing type",
			wantItem:   "shape",
		},
		{
			name:     "unknown format",
			body:     `{"format":"wgs84","location_info":["x=1"]}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing fields",
			body:     `{"format":"GML"}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, rec := newContext(t, http.MethodPost, "/geoloc/validate", tt.body)
			require.NoError(t, h.ValidateVarlist(c))
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantResult != "" {
				var envelope struct {
					Data ValidateOutput `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
				assert.Equal(t, tt.wantResult, envelope.Data.Result)
				assert.Equal(t, tt.wantItem, envelope.Data.Item)
			}
		})
	}
}

func TestReload(t *testing.T) {
	t.Parallel()

	store := testStore()
	h := newTestHandler(store)

	c, rec := newContext(t, http.MethodPost, "/geoloc/reload", "")
	require.NoError(t, h.Reload(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.reloads)
}

func TestReloadFailure(t *testing.T) {
	t.Parallel()

	store := testStore()
	store.reloadErr = assert.AnError
	h := newTestHandler(store)

	c, rec := newContext(t, http.MethodPost, "/geoloc/reload", "")
	require.NoError(t, h.Reload(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
