package errlog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/vertexpay/onramp-gateway/internal/database"
)

// DefaultSupabaseTable is the table the durable tier writes to.
const DefaultSupabaseTable = "client_error_logs"

// SupabaseBackend is the durable tier. The buffer is stored as one JSONB row
// keyed by buffer ID so writes are a read-append-truncate-replace of the
// whole buffer, matching the tier contract.
type SupabaseBackend struct {
	client   *database.Client
	table    string
	bufferID string
}

type supabaseRow struct {
	ID      string          `json:"id"`
	Records json.RawMessage `json:"records"`
}

// NewSupabaseBackend creates the durable tier over the given client. Empty
// table and bufferID fall back to defaults.
func NewSupabaseBackend(client *database.Client, table, bufferID string) *SupabaseBackend {
	if table == "" {
		table = DefaultSupabaseTable
	}
	if bufferID == "" {
		bufferID = "default"
	}
	return &SupabaseBackend{client: client, table: table, bufferID: bufferID}
}

// Name identifies the tier.
func (b *SupabaseBackend) Name() string { return "supabase" }

// Read returns the stored buffer. A missing row or malformed content decodes
// to an empty buffer.
func (b *SupabaseBackend) Read(ctx context.Context) ([]Record, error) {
	query := "id=eq." + url.QueryEscape(b.bufferID) + "&select=id,records"
	body, err := b.client.Select(ctx, b.table, query)
	if err != nil {
		return nil, fmt.Errorf("select buffer: %w", err)
	}

	var rows []supabaseRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, nil
	}
	return decodeRecords(rows[0].Records), nil
}

// Write bounds the buffer and upserts the row.
func (b *SupabaseBackend) Write(ctx context.Context, records []Record) error {
	encoded, err := json.Marshal(tail(records, DurableCapacity))
	if err != nil {
		return fmt.Errorf("encode buffer: %w", err)
	}
	if _, err := b.client.Upsert(ctx, b.table, supabaseRow{ID: b.bufferID, Records: encoded}); err != nil {
		return fmt.Errorf("upsert buffer: %w", err)
	}
	return nil
}
