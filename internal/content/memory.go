package content

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is a thread-safe in-memory Store for tests and local development.
type Memory struct {
	mu        sync.RWMutex
	pages     map[string]Page
	providers map[string]Provider
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		pages:     make(map[string]Page),
		providers: make(map[string]Provider),
	}
}

// GetPage returns the page for slug.
func (m *Memory) GetPage(_ context.Context, slug string) (Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[slug]
	if !ok {
		return Page{}, ErrNotFound
	}
	return page, nil
}

// UpsertPage creates or replaces the page.
func (m *Memory) UpsertPage(_ context.Context, page Page) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page.UpdatedAt = time.Now().UTC()
	m.pages[page.Slug] = page
	return page, nil
}

// ListProviders returns the catalogue in sort order.
func (m *Memory) ListProviders(_ context.Context) ([]Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Provider, 0, len(m.providers))
	for _, p := range m.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpsertProvider creates or replaces a provider entry.
func (m *Memory) UpsertProvider(_ context.Context, provider Provider) (Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[provider.ID] = provider
	return provider, nil
}
