package content

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vertexpay/onramp-gateway/internal/errors"
	"github.com/vertexpay/onramp-gateway/internal/httputil"
	"github.com/vertexpay/onramp-gateway/internal/logging"
	"github.com/vertexpay/onramp-gateway/internal/middleware"
)

const maxContentBodyBytes = 128 << 10

// Handler serves the public site copy and the admin edit endpoints.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a content handler over store.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// GetPage handles GET /api/v1/content/{slug}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if !KnownSlug(slug) {
		httputil.WriteServiceError(w, r, errors.NotFound("page"))
		return
	}

	page, err := h.store.GetPage(r.Context(), slug)
	if stderrors.Is(err, ErrNotFound) {
		httputil.WriteServiceError(w, r, errors.NotFound("page"))
		return
	}
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("failed to load page")
		httputil.WriteServiceError(w, r, errors.Internal("failed to load page", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

type putPageRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PutPage handles PUT /api/v1/content/{slug}.
func (h *Handler) PutPage(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if !KnownSlug(slug) {
		httputil.WriteServiceError(w, r, errors.NotFound("page"))
		return
	}

	var req putPageRequest
	if err := httputil.DecodeJSONBody(r, &req, maxContentBodyBytes); err != nil {
		httputil.WriteServiceError(w, r, errors.InvalidInput("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httputil.WriteServiceError(w, r, errors.InvalidInput("title is required"))
		return
	}

	page := Page{Slug: slug, Title: req.Title, Body: req.Body}
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		page.UpdatedBy = user.ID
	}

	saved, err := h.store.UpsertPage(r.Context(), page)
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("failed to save page")
		httputil.WriteServiceError(w, r, errors.Internal("failed to save page", err))
		return
	}

	h.logger.WithContext(r.Context()).WithField("slug", slug).Info("page updated")
	httputil.WriteJSON(w, http.StatusOK, saved)
}

// ListProviders handles GET /api/v1/providers. Only enabled providers are
// returned to the public buy page.
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.store.ListProviders(r.Context())
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("failed to list providers")
		httputil.WriteServiceError(w, r, errors.Internal("failed to list providers", err))
		return
	}

	enabled := make([]Provider, 0, len(providers))
	for _, provider := range providers {
		if provider.Enabled {
			enabled = append(enabled, provider)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"providers": enabled})
}

// ListAllProviders handles GET /api/v1/providers/all, including disabled
// entries so the dashboard can toggle them.
func (h *Handler) ListAllProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.store.ListProviders(r.Context())
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("failed to list providers")
		httputil.WriteServiceError(w, r, errors.Internal("failed to list providers", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"providers": providers})
}

type putProviderRequest struct {
	Enabled     *bool  `json:"enabled"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
}

// PutProvider handles PUT /api/v1/providers/{id}.
func (h *Handler) PutProvider(w http.ResponseWriter, r *http.Request) {
	id := strings.ToLower(strings.TrimSpace(mux.Vars(r)["id"]))
	if id == "" {
		httputil.WriteServiceError(w, r, errors.InvalidInput("provider id is required"))
		return
	}

	var req putProviderRequest
	if err := httputil.DecodeJSONBody(r, &req, maxContentBodyBytes); err != nil {
		httputil.WriteServiceError(w, r, errors.InvalidInput("invalid request body"))
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		httputil.WriteServiceError(w, r, errors.InvalidInput("displayName is required"))
		return
	}

	provider := Provider{
		ID:          id,
		DisplayName: req.DisplayName,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	if req.Enabled != nil {
		provider.Enabled = *req.Enabled
	}

	saved, err := h.store.UpsertProvider(r.Context(), provider)
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("failed to save provider")
		httputil.WriteServiceError(w, r, errors.Internal("failed to save provider", err))
		return
	}

	h.logger.WithContext(r.Context()).WithField("provider", id).Info("provider updated")
	httputil.WriteJSON(w, http.StatusOK, saved)
}
