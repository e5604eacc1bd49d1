package rates

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/kestrel/claims-engine/calendar"
)

// =============================================================================
// PROVIDER - Atomic snapshot swap for concurrent readers
// =============================================================================

// Provider publishes the current Table snapshot to concurrent readers.
// Readers call Current() once per computation and use that snapshot
// throughout; a publish replaces the whole table in one atomic swap, so a
// reader never observes a half-applied update.
type Provider struct {
	current atomic.Pointer[Table]

	// Serializes writers only. Readers never take it.
	mu sync.Mutex
}

// NewProvider creates a provider seeded with the given table.
func NewProvider(table *Table) *Provider {
	p := &Provider{}
	p.current.Store(table)
	return p
}

// Current returns the current immutable snapshot.
func (p *Provider) Current() *Table {
	return p.current.Load()
}

// Publish appends a newly published benchmark value and swaps the snapshot.
// Concurrent computations keep reading the previous snapshot until their
// next Current() call.
func (p *Provider) Publish(term Term, from calendar.Date, annualRatePercent decimal.Decimal) (*Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, err := p.Current().Append(term, from, annualRatePercent)
	if err != nil {
		return nil, fmt.Errorf("publish rate: %w", err)
	}
	p.current.Store(next)
	return next, nil
}
