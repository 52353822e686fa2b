// Package errlog implements the resilient client error-capture pipeline:
// structured error records written through a priority-ordered chain of
// storage tiers with graceful degradation and an in-memory floor.
package errlog

import "time"

// Kind classifies a captured error event.
type Kind string

const (
	// KindError is a synchronous script error.
	KindError Kind = "error"
	// KindUnhandledRejection is an unhandled asynchronous rejection.
	KindUnhandledRejection Kind = "unhandled-rejection"
	// KindResourceError is a failed sub-resource load.
	KindResourceError Kind = "resource-error"
)

// fallbackMessage replaces empty messages at capture time.
const fallbackMessage = "Unknown error"

// Record is one captured error event. Records are immutable once created;
// nothing mutates a record after capture.
type Record struct {
	Timestamp   string `json:"timestamp"`
	Kind        Kind   `json:"kind"`
	Message     string `json:"message"`
	Stack       string `json:"stack,omitempty"`
	SourceFile  string `json:"sourceFile,omitempty"`
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
	PageURL     string `json:"pageUrl,omitempty"`
	ClientAgent string `json:"clientAgent,omitempty"`
}

// normalized returns a copy with capture-time defaults applied: a non-empty
// message, a known kind, and a capture timestamp.
func (r Record) normalized(now time.Time) Record {
	if r.Message == "" {
		r.Message = fallbackMessage
	}
	switch r.Kind {
	case KindError, KindUnhandledRejection, KindResourceError:
	default:
		r.Kind = KindError
	}
	if r.Timestamp == "" {
		r.Timestamp = now.UTC().Format(time.RFC3339)
	}
	return r
}
