package errlog

import (
	"context"
	"encoding/json"
)

const (
	// DurableCapacity bounds the buffer kept by the durable and transient
	// tiers. Oldest records are evicted first.
	DurableCapacity = 50
	// MemoryCapacity bounds the in-process floor buffer.
	MemoryCapacity = 10
)

// Backend is one storage tier in the fallback chain. Implementations must
// treat malformed or absent stored content as an empty buffer on Read; a
// Read error means the tier could not be reached at all.
type Backend interface {
	// Name identifies the tier in logs and metrics.
	Name() string
	// Read returns the currently stored buffer.
	Read(ctx context.Context) ([]Record, error)
	// Write replaces the stored buffer.
	Write(ctx context.Context, records []Record) error
}

// tail returns the last n records, preserving relative order.
func tail(records []Record, n int) []Record {
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// decodeRecords is the buffer decoder shared by tiers that store
// the buffer as a JSON blob: malformed or non-array content is treated as
// empty rather than raising.
func decodeRecords(data []byte) []Record {
	if len(data) == 0 {
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}
