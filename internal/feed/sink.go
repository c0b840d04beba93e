// Package feed writes harvested products to advertising feed files and other
// downstream destinations.
package feed

import (
	"context"

	"tradefeed/crawler/internal/domain"
)

// Sink receives products from the aggregator. Sinks are driven by a single
// consumer and need not be safe for concurrent use.
type Sink interface {
	Name() string
	// Accepts reports whether the product belongs in this sink.
	Accepts(p *domain.Product) bool
	Write(ctx context.Context, p *domain.Product) error
	// Close flushes buffered rows, publishes them and releases the destination.
	Close(ctx context.Context) error
	// Discard releases the destination without publishing buffered rows.
	// A previously published feed stays in place.
	Discard(ctx context.Context) error
}

// Predicate selects the products a sink accepts.
type Predicate func(p *domain.Product) bool

func AllProducts(*domain.Product) bool { return true }

func HasPrice(p *domain.Product) bool { return p.HasPrice }
