package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vertexpay/onramp-gateway/internal/database"
)

const (
	pagesTable     = "site_content"
	providersTable = "onramp_providers"
)

// Supabase is a Store backed by the hosted Supabase REST API.
type Supabase struct {
	client *database.Client
}

// NewSupabase creates the store over the given client.
func NewSupabase(client *database.Client) *Supabase {
	return &Supabase{client: client}
}

type pageRow struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

type providerRow struct {
	ID          string `json:"id"`
	Enabled     bool   `json:"enabled"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

// GetPage returns the page for slug.
func (s *Supabase) GetPage(ctx context.Context, slug string) (Page, error) {
	query := "slug=eq." + url.QueryEscape(slug) + "&limit=1"
	body, err := s.client.Select(ctx, pagesTable, query)
	if err != nil {
		return Page{}, fmt.Errorf("select page: %w", err)
	}

	var rows []pageRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return Page{}, fmt.Errorf("decode page: %w", err)
	}
	if len(rows) == 0 {
		return Page{}, ErrNotFound
	}
	return pageFromRow(rows[0]), nil
}

// UpsertPage creates or replaces the page.
func (s *Supabase) UpsertPage(ctx context.Context, page Page) (Page, error) {
	row := pageRow{
		Slug:      page.Slug,
		Title:     page.Title,
		Body:      page.Body,
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: page.UpdatedBy,
	}

	body, err := s.client.Upsert(ctx, pagesTable, []pageRow{row})
	if err != nil {
		return Page{}, fmt.Errorf("upsert page: %w", err)
	}

	var rows []pageRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		// Representation missing; return what we wrote.
		return pageFromRow(row), nil
	}
	return pageFromRow(rows[0]), nil
}

// ListProviders returns the catalogue in sort order.
func (s *Supabase) ListProviders(ctx context.Context) ([]Provider, error) {
	body, err := s.client.Select(ctx, providersTable, "order=sort_order.asc")
	if err != nil {
		return nil, fmt.Errorf("select providers: %w", err)
	}

	var rows []providerRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}

	providers := make([]Provider, 0, len(rows))
	for _, row := range rows {
		providers = append(providers, providerFromRow(row))
	}
	return providers, nil
}

// UpsertProvider creates or replaces a provider entry.
func (s *Supabase) UpsertProvider(ctx context.Context, provider Provider) (Provider, error) {
	row := providerRow{
		ID:          provider.ID,
		Enabled:     provider.Enabled,
		DisplayName: provider.DisplayName,
		Description: provider.Description,
		SortOrder:   provider.SortOrder,
	}

	body, err := s.client.Upsert(ctx, providersTable, []providerRow{row})
	if err != nil {
		return Provider{}, fmt.Errorf("upsert provider: %w", err)
	}

	var rows []providerRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return providerFromRow(row), nil
	}
	return providerFromRow(rows[0]), nil
}

func pageFromRow(row pageRow) Page {
	return Page{
		Slug:      row.Slug,
		Title:     row.Title,
		Body:      row.Body,
		UpdatedAt: row.UpdatedAt,
		UpdatedBy: row.UpdatedBy,
	}
}

func providerFromRow(row providerRow) Provider {
	return Provider{
		ID:          row.ID,
		Enabled:     row.Enabled,
		DisplayName: row.DisplayName,
		Description: row.Description,
		SortOrder:   row.SortOrder,
	}
}
