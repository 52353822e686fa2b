package content

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexpay/onramp-gateway/internal/config"
	"github.com/vertexpay/onramp-gateway/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewWithOutput("content-test", "error", "json", io.Discard)
}

func seededStore(t *testing.T) *Memory {
	t.Helper()
	store := NewMemory()
	require.NoError(t, EnsureProviders(context.Background(), store, config.DefaultProvidersConfig()))
	return store
}

func newContentRouter(store Store) *mux.Router {
	handler := NewHandler(store, testLogger())
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/content/{slug}", handler.GetPage).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/content/{slug}", handler.PutPage).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/providers", handler.ListProviders).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/providers/all", handler.ListAllProviders).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/providers/{id}", handler.PutProvider).Methods(http.MethodPut)
	return router
}

func TestGetPage_UnknownSlugReturns404(t *testing.T) {
	router := newContentRouter(seededStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/content/pricing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPage_MissingKnownSlugReturns404(t *testing.T) {
	router := newContentRouter(seededStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/content/about", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutPage_RoundTrips(t *testing.T) {
	store := seededStore(t)
	router := newContentRouter(store)

	body, _ := json.Marshal(map[string]string{
		"title": "About VertexPay",
		"body":  "We make crypto purchases simple.",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/content/about", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/content/about", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var page Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "about", page.Slug)
	assert.Equal(t, "About VertexPay", page.Title)
	assert.False(t, page.UpdatedAt.IsZero())
}

func TestPutPage_RejectsEmptyTitle(t *testing.T) {
	router := newContentRouter(seededStore(t))

	body := []byte(`{"title":"  ","body":"text"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/content/faq", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProviders_OnlyEnabled(t *testing.T) {
	store := seededStore(t)
	_, err := store.UpsertProvider(context.Background(), Provider{
		ID: "moonpay", DisplayName: "MoonPay", Enabled: false, SortOrder: 3,
	})
	require.NoError(t, err)

	router := newContentRouter(store)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Providers []Provider `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	for _, provider := range resp.Providers {
		assert.True(t, provider.Enabled)
		assert.NotEqual(t, "moonpay", provider.ID)
	}
}

func TestListAllProviders_IncludesDisabled(t *testing.T) {
	store := seededStore(t)
	_, err := store.UpsertProvider(context.Background(), Provider{
		ID: "moonpay", DisplayName: "MoonPay", Enabled: false, SortOrder: 3,
	})
	require.NoError(t, err)

	router := newContentRouter(store)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/providers/all", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Providers []Provider `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	found := false
	for _, provider := range resp.Providers {
		if provider.ID == "moonpay" {
			found = true
			assert.False(t, provider.Enabled)
		}
	}
	assert.True(t, found)
}

func TestPutProvider_NormalizesID(t *testing.T) {
	store := seededStore(t)
	router := newContentRouter(store)

	body := []byte(`{"enabled":true,"displayName":"Ramp Network","sortOrder":4}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/providers/Ramp", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var saved Provider
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, "ramp", saved.ID)
	assert.Equal(t, "Ramp Network", saved.DisplayName)
}

func TestPutProvider_RequiresDisplayName(t *testing.T) {
	router := newContentRouter(seededStore(t))

	body := []byte(`{"enabled":true,"sortOrder":1}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/providers/coinbase", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemoryStore_ListOrdering(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	for _, p := range []Provider{
		{ID: "zeta", Enabled: true, DisplayName: "Zeta", SortOrder: 2},
		{ID: "alpha", Enabled: true, DisplayName: "Alpha", SortOrder: 2},
		{ID: "first", Enabled: true, DisplayName: "First", SortOrder: 1},
	} {
		_, err := store.UpsertProvider(ctx, p)
		require.NoError(t, err)
	}

	providers, err := store.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, providers, 3)
	assert.Equal(t, "first", providers[0].ID)
	assert.Equal(t, "alpha", providers[1].ID)
	assert.Equal(t, "zeta", providers[2].ID)
}
