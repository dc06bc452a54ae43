package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	app "github.com/invoicer/backend/internal/application/invoice"
)

const meterName = "invoice-backend/invoice"

// InvoiceMetrics counts saves and exports. It implements app.StatusListener
// so the autosaver reports outcomes without knowing about metrics.
type InvoiceMetrics struct {
	saves          metric.Int64Counter
	saveDuration   metric.Float64Histogram
	exports        metric.Int64Counter
	exportDuration metric.Float64Histogram
	sessions       metric.Int64ObservableGauge

	mu      sync.Mutex
	started map[string]time.Time
	now     func() time.Time
}

// NewInvoiceMetrics registers the instruments on meter.
func NewInvoiceMetrics(meter metric.Meter) (*InvoiceMetrics, error) {
	m := &InvoiceMetrics{started: make(map[string]time.Time), now: time.Now}
	var err error

	if m.saves, err = meter.Int64Counter("invoice.saves",
		metric.WithDescription("Completed snapshot saves by outcome"),
		metric.WithUnit("{save}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create counter invoice.saves: %w", err)
	}
	if m.saveDuration, err = meter.Float64Histogram("invoice.save.duration",
		metric.WithDescription("Time from save start to outcome"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(SaveDurationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create histogram invoice.save.duration: %w", err)
	}
	if m.exports, err = meter.Int64Counter("invoice.exports",
		metric.WithDescription("Exports by format and outcome"),
		metric.WithUnit("{export}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create counter invoice.exports: %w", err)
	}
	if m.exportDuration, err = meter.Float64Histogram("invoice.export.duration",
		metric.WithDescription("Export rendering time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ExportDurationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create histogram invoice.export.duration: %w", err)
	}

	return m, nil
}

// ObserveSessions reports count() as the number of live editing sessions.
func (m *InvoiceMetrics) ObserveSessions(meter metric.Meter, count func() int) error {
	gauge, err := meter.Int64ObservableGauge("invoice.sessions.active",
		metric.WithDescription("Live editing sessions"),
		metric.WithUnit("{session}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(count()))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create gauge invoice.sessions.active: %w", err)
	}
	m.sessions = gauge
	return nil
}

// OnSaveStatus implements app.StatusListener
func (m *InvoiceMetrics) OnSaveStatus(ownerID string, status app.SaveStatus, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch status {
	case app.SaveStatusSaving:
		m.started[ownerID] = m.now()
	case app.SaveStatusSaved, app.SaveStatusFailed:
		ctx := context.Background()
		attrs := metric.WithAttributes(AttrSaveStatus.String(string(status)))
		m.saves.Add(ctx, 1, attrs)
		if start, ok := m.started[ownerID]; ok {
			m.saveDuration.Record(ctx, m.now().Sub(start).Seconds(), attrs)
			delete(m.started, ownerID)
		}
	}
}

// RecordExport records one export attempt
func (m *InvoiceMetrics) RecordExport(ctx context.Context, format app.Format, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(AttrFormat.String(string(format)), AttrOutcome.String(outcome))
	m.exports.Add(ctx, 1, attrs)
	m.exportDuration.Record(ctx, d.Seconds(), attrs)
}

// MeteredExporter traces and counts every export of the wrapped exporter.
type MeteredExporter struct {
	next    app.Exporter
	metrics *InvoiceMetrics
}

// NewMeteredExporter wraps next. metrics may be nil for tracing only.
func NewMeteredExporter(next app.Exporter, metrics *InvoiceMetrics) *MeteredExporter {
	return &MeteredExporter{next: next, metrics: metrics}
}

// Export implements app.Exporter
func (e *MeteredExporter) Export(ctx context.Context, view app.View, format app.Format) (*app.Artifact, error) {
	ctx, span := StartSpan(ctx, "invoice.export",
		AttrFormat.String(string(format)),
		AttrOwnerID.String(view.OwnerID),
	)
	start := time.Now()

	artifact, err := e.next.Export(ctx, view, format)

	if e.metrics != nil {
		e.metrics.RecordExport(ctx, format, time.Since(start), err)
	}
	if artifact != nil && artifact.Overflow {
		span.AddEvent("content overflows one page")
	}
	EndSpan(span, err)
	return artifact, err
}

// Supports reports whether the wrapped exporter offers format.
// Exporters that cannot tell are assumed to support every format.
func (e *MeteredExporter) Supports(format app.Format) bool {
	if s, ok := e.next.(interface{ Supports(app.Format) bool }); ok {
		return s.Supports(format)
	}
	return true
}
