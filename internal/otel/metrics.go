package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "muxboard"

// Metrics holds all OTEL metric instruments for muxboard.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Multiplexer invocation counters (partitioned by command + outcome)
	Invocations metric.Int64Counter

	// Lines dropped by the record parser (wrong field count, bad integer)
	SkippedLines metric.Int64Counter

	// Dashboard refresh counters
	Refreshes      metric.Int64Counter
	StaleRefreshes metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Invocations, err = meter.Int64Counter("mux.invocations",
		metric.WithDescription("Total multiplexer command invocations partitioned by command and outcome"))
	if err != nil {
		return nil, err
	}

	m.SkippedLines, err = meter.Int64Counter("mux.parser.skipped_lines",
		metric.WithDescription("Query-result lines dropped by the record parser"))
	if err != nil {
		return nil, err
	}

	m.Refreshes, err = meter.Int64Counter("dashboard.refreshes",
		metric.WithDescription("Session list refreshes applied by the dashboard"))
	if err != nil {
		return nil, err
	}

	m.StaleRefreshes, err = meter.Int64Counter("dashboard.refreshes_stale",
		metric.WithDescription("Refresh results discarded because a newer request was in flight"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordInvocation records one multiplexer command invocation.
func (m *Metrics) RecordInvocation(ctx context.Context, command string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Invocations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mux.command", command),
		attribute.String("mux.outcome", outcome),
	))
}

// RecordSkippedLines records lines dropped by the record parser.
func (m *Metrics) RecordSkippedLines(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SkippedLines.Add(ctx, int64(n))
}

// RecordRefresh records an applied dashboard refresh.
func (m *Metrics) RecordRefresh(ctx context.Context) {
	if m == nil {
		return
	}
	m.Refreshes.Add(ctx, 1)
}

// RecordStaleRefresh records a refresh result discarded as stale.
func (m *Metrics) RecordStaleRefresh(ctx context.Context) {
	if m == nil {
		return
	}
	m.StaleRefreshes.Add(ctx, 1)
}
