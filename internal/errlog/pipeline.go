package errlog

import (
	"context"
	"sync"
	"time"

	"github.com/vertexpay/onramp-gateway/internal/logging"
	"github.com/vertexpay/onramp-gateway/internal/metrics"
)

// Pipeline writes error records through an ordered chain of storage tiers.
// The in-memory ring is always written first and is the guaranteed floor;
// the configured backends are then tried in priority order and the first
// successful write wins. A tier failure degrades to the next tier and is
// never surfaced to the caller: Persist cannot fail and cannot panic.
//
// Tiers are ordered by decreasing reliability, not transient flakiness, so
// a single immediate fallback attempt per persist call is sufficient; there
// are no retries with backoff.
type Pipeline struct {
	mu        sync.Mutex
	installed bool

	ring     *Ring
	backends []Backend
	logger   *logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBackends sets the storage tiers, highest priority first.
func WithBackends(backends ...Backend) Option {
	return func(p *Pipeline) { p.backends = backends }
}

// WithMetrics attaches persistence counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock overrides the capture-time clock (tests).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline. The logger is required; the diagnostic
// output it produces is informational only and not part of the contract.
func NewPipeline(logger *logging.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		ring:   NewRing(MemoryCapacity),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Install activates the tiered capture path. It is idempotent: only the
// first call per pipeline lifetime has any effect, so installing twice
// cannot duplicate records for a single event. There is no teardown.
// Before Install, Persist still writes the in-memory floor.
func (p *Pipeline) Install() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.installed {
		return
	}
	p.installed = true
}

// Installed reports whether the tiered capture path is active.
func (p *Pipeline) Installed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.installed
}

// Persist records an error event. It never returns an error and never
// panics: the memory ring is appended first, then each backend is tried in
// order until one write succeeds. Rapid successive calls are processed in
// strict arrival order.
func (p *Pipeline) Persist(ctx context.Context, rec Record) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithField("panic", r).Error("error log persist recovered")
		}
	}()

	rec = rec.normalized(p.now())
	p.ring.Append(rec)
	p.recordPersist("memory")

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.installed {
		return
	}

	for _, backend := range p.backends {
		existing, err := backend.Read(ctx)
		if err != nil {
			// Unreachable stores still get a write attempt below; reads
			// that fail start from an empty buffer.
			p.logger.WithContext(ctx).WithError(err).WithField("tier", backend.Name()).Debug("error log tier read failed")
			existing = nil
		}

		buffer := tail(append(existing, rec), DurableCapacity)
		if err := backend.Write(ctx, buffer); err != nil {
			p.recordFallback(backend.Name())
			p.logger.WithContext(ctx).WithError(err).WithField("tier", backend.Name()).Warn("error log tier write failed, degrading")
			continue
		}

		p.recordPersist(backend.Name())
		return
	}
	// Every tier failed; the memory floor already holds the record.
}

// Recent returns the most recent records: the first tier that yields any,
// falling back to the in-memory floor.
func (p *Pipeline) Recent(ctx context.Context) []Record {
	p.mu.Lock()
	backends := p.backends
	p.mu.Unlock()

	for _, backend := range backends {
		records, err := backend.Read(ctx)
		if err != nil {
			continue
		}
		if len(records) > 0 {
			return records
		}
	}
	return p.ring.Snapshot()
}

// MemorySnapshot exposes the floor buffer for diagnostics.
func (p *Pipeline) MemorySnapshot() []Record {
	return p.ring.Snapshot()
}

func (p *Pipeline) recordPersist(tier string) {
	if p.metrics != nil {
		p.metrics.RecordErrlogPersist(tier)
	}
}

func (p *Pipeline) recordFallback(tier string) {
	if p.metrics != nil {
		p.metrics.RecordErrlogFallback(tier)
	}
}
