package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Postgres is a Store over a direct database connection. Used when the
// gateway talks to the database itself instead of the REST layer.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects with the given DSN and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Close releases the underlying pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// GetPage returns the page for slug.
func (p *Postgres) GetPage(ctx context.Context, slug string) (Page, error) {
	const query = `
		SELECT slug, title, body, updated_at, COALESCE(updated_by, '')
		FROM site_content
		WHERE slug = $1`

	var page Page
	err := p.db.QueryRowContext(ctx, query, slug).Scan(
		&page.Slug, &page.Title, &page.Body, &page.UpdatedAt, &page.UpdatedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, ErrNotFound
	}
	if err != nil {
		return Page{}, fmt.Errorf("query page: %w", err)
	}
	return page, nil
}

// UpsertPage creates or replaces the page.
func (p *Postgres) UpsertPage(ctx context.Context, page Page) (Page, error) {
	const query = `
		INSERT INTO site_content (slug, title, body, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
		RETURNING slug, title, body, updated_at, COALESCE(updated_by, '')`

	now := time.Now().UTC()
	var saved Page
	err := p.db.QueryRowContext(ctx, query, page.Slug, page.Title, page.Body, now, page.UpdatedBy).Scan(
		&saved.Slug, &saved.Title, &saved.Body, &saved.UpdatedAt, &saved.UpdatedBy,
	)
	if err != nil {
		return Page{}, fmt.Errorf("upsert page: %w", err)
	}
	return saved, nil
}

// ListProviders returns the catalogue in sort order.
func (p *Postgres) ListProviders(ctx context.Context) ([]Provider, error) {
	const query = `
		SELECT id, enabled, display_name, COALESCE(description, ''), sort_order
		FROM onramp_providers
		ORDER BY sort_order, id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query providers: %w", err)
	}
	defer rows.Close()

	var providers []Provider
	for rows.Next() {
		var provider Provider
		if err := rows.Scan(&provider.ID, &provider.Enabled, &provider.DisplayName, &provider.Description, &provider.SortOrder); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}
	return providers, nil
}

// UpsertProvider creates or replaces a provider entry.
func (p *Postgres) UpsertProvider(ctx context.Context, provider Provider) (Provider, error) {
	const query = `
		INSERT INTO onramp_providers (id, enabled, display_name, description, sort_order)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			display_name = EXCLUDED.display_name,
			description = EXCLUDED.description,
			sort_order = EXCLUDED.sort_order
		RETURNING id, enabled, display_name, COALESCE(description, ''), sort_order`

	var saved Provider
	err := p.db.QueryRowContext(ctx, query, provider.ID, provider.Enabled, provider.DisplayName, provider.Description, provider.SortOrder).Scan(
		&saved.ID, &saved.Enabled, &saved.DisplayName, &saved.Description, &saved.SortOrder,
	)
	if err != nil {
		return Provider{}, fmt.Errorf("upsert provider: %w", err)
	}
	return saved, nil
}
