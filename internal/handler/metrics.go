package handler

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the ledger's OpenTelemetry counters.
type Metrics struct {
	salesCreated metric.Int64Counter
	salesDeleted metric.Int64Counter
}

// NewMetrics registers the ledger counters on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("sales-ledger")

	created, err := meter.Int64Counter("ledger.sales.created",
		metric.WithDescription("Sales recorded in the ledger"))
	if err != nil {
		return nil, errors.Wrap(err, "create sales counter")
	}
	deleted, err := meter.Int64Counter("ledger.sales.deleted",
		metric.WithDescription("Sales removed from the ledger"))
	if err != nil {
		return nil, errors.Wrap(err, "create deletes counter")
	}
	return &Metrics{salesCreated: created, salesDeleted: deleted}, nil
}

// NopMetrics returns metrics backed by the no-op provider.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// SaleCreated counts one recorded sale.
func (m *Metrics) SaleCreated(ctx context.Context) {
	m.salesCreated.Add(ctx, 1)
}

// SalesDeleted counts n removed sales.
func (m *Metrics) SalesDeleted(ctx context.Context, n int64) {
	m.salesDeleted.Add(ctx, n)
}
