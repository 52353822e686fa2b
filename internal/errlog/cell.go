package errlog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cell is a single plain-text storage slot. The transient tier encodes the
// whole buffer into one cell value because the underlying slot only accepts
// text.
type Cell interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
}

// CellBackend stores the buffer as URL-safe base64 of its JSON encoding
// inside a single Cell.
type CellBackend struct {
	name string
	cell Cell
}

// NewCellBackend creates a tier over the given cell.
func NewCellBackend(name string, cell Cell) *CellBackend {
	return &CellBackend{name: name, cell: cell}
}

// Name identifies the tier.
func (b *CellBackend) Name() string { return b.name }

// Read decodes the stored buffer. An empty cell or undecodable content is an
// empty buffer, not an error.
func (b *CellBackend) Read(ctx context.Context) ([]Record, error) {
	value, err := b.cell.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cell: %w", err)
	}
	if value == "" {
		return nil, nil
	}
	decoded, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil, nil
	}
	return decodeRecords(decoded), nil
}

// Write bounds the buffer and stores its encoded form.
func (b *CellBackend) Write(ctx context.Context, records []Record) error {
	encoded, err := json.Marshal(tail(records, DurableCapacity))
	if err != nil {
		return fmt.Errorf("encode buffer: %w", err)
	}
	if err := b.cell.Set(ctx, base64.URLEncoding.EncodeToString(encoded)); err != nil {
		return fmt.Errorf("write cell: %w", err)
	}
	return nil
}

// MemoryCell is an in-process Cell, used for tests and single-node setups.
type MemoryCell struct {
	value string
}

// NewMemoryCell creates an empty in-process cell.
func NewMemoryCell() *MemoryCell { return &MemoryCell{} }

// Get returns the stored value.
func (c *MemoryCell) Get(context.Context) (string, error) { return c.value, nil }

// Set replaces the stored value.
func (c *MemoryCell) Set(_ context.Context, value string) error {
	c.value = value
	return nil
}
