// Package content stores the editable site copy and the onramp provider
// catalogue backing the admin dashboard.
package content

import (
	"context"
	"errors"
	"time"
)

// Page slugs the admin dashboard can edit.
const (
	SlugAbout   = "about"
	SlugFAQ     = "faq"
	SlugContact = "contact"
	SlugTerms   = "terms"
	SlugPrivacy = "privacy"
)

// ErrNotFound reports a missing page or provider.
var ErrNotFound = errors.New("not found")

// Page is one editable block of site copy.
type Page struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// Provider is one onramp provider entry as shown on the buy page and edited
// in the admin dashboard.
type Provider struct {
	ID          string `json:"id"`
	Enabled     bool   `json:"enabled"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sortOrder"`
}

// Store persists pages and providers.
type Store interface {
	GetPage(ctx context.Context, slug string) (Page, error)
	UpsertPage(ctx context.Context, page Page) (Page, error)

	ListProviders(ctx context.Context) ([]Provider, error)
	UpsertProvider(ctx context.Context, provider Provider) (Provider, error)
}

// KnownSlug reports whether a slug belongs to the editable set.
func KnownSlug(slug string) bool {
	switch slug {
	case SlugAbout, SlugFAQ, SlugContact, SlugTerms, SlugPrivacy:
		return true
	}
	return false
}
