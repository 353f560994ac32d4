package infra

import (
	"sync/atomic"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ordersPlaced    atomic.Uint64
	ordersExecuted  atomic.Uint64
	ordersCancelled atomic.Uint64
	conflicts       atomic.Uint64
	quotesComputed  atomic.Uint64
	errorsTotal     atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordOrderPlaced records a successfully placed order.
func (m *Metrics) RecordOrderPlaced() {
	m.ordersPlaced.Add(1)
}

// RecordOrderExecuted records a successful order execution.
func (m *Metrics) RecordOrderExecuted() {
	m.ordersExecuted.Add(1)
}

// RecordOrderCancelled records a successful order cancellation.
func (m *Metrics) RecordOrderCancelled() {
	m.ordersCancelled.Add(1)
}

// RecordConflict records an execution lost to a concurrent transition.
func (m *Metrics) RecordConflict() {
	m.conflicts.Add(1)
}

// RecordQuote records one price discovery computation.
func (m *Metrics) RecordQuote() {
	m.quotesComputed.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// Snapshot holds a consistent-enough copy of all counters for reporting.
type Snapshot struct {
	OrdersPlaced    uint64 `json:"orders_placed"`
	OrdersExecuted  uint64 `json:"orders_executed"`
	OrdersCancelled uint64 `json:"orders_cancelled"`
	Conflicts       uint64 `json:"conflicts"`
	QuotesComputed  uint64 `json:"quotes_computed"`
	ErrorsTotal     uint64 `json:"errors_total"`
}

// GetSnapshot returns the current counter values.
func (m *Metrics) GetSnapshot() Snapshot {
	return Snapshot{
		OrdersPlaced:    m.ordersPlaced.Load(),
		OrdersExecuted:  m.ordersExecuted.Load(),
		OrdersCancelled: m.ordersCancelled.Load(),
		Conflicts:       m.conflicts.Load(),
		QuotesComputed:  m.quotesComputed.Load(),
		ErrorsTotal:     m.errorsTotal.Load(),
	}
}
