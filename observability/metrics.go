package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricOperationTotal    = "eureka.operation.total"
	MetricOperationDuration = "eureka.operation.duration"
	MetricRequestTotal      = "http.server.request.total"
	MetricRequestDuration   = "http.server.request.duration"
)

// Metrics holds the instruments for registry operations and status-server
// requests. It satisfies eureka.Recorder.
type Metrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	requestTotal      metric.Int64Counter
	requestDuration   metric.Float64Histogram
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	operationTotal, err := meter.Int64Counter(MetricOperationTotal,
		metric.WithDescription("Registry operations by type and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricOperationTotal, err)
	}

	operationDuration, err := meter.Float64Histogram(MetricOperationDuration,
		metric.WithDescription("Duration of registry operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricOperationDuration, err)
	}

	requestTotal, err := meter.Int64Counter(MetricRequestTotal,
		metric.WithDescription("Status server requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequestTotal, err)
	}

	requestDuration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of status server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}

	return &Metrics{
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
	}, nil
}

// RecordOperation counts a registry operation. Cache hits carry no duration.
func (m *Metrics) RecordOperation(ctx context.Context, op, outcome string, elapsed time.Duration) {
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
	if elapsed > 0 {
		m.operationDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
			attribute.String("operation", op),
		))
	}
}

// RecordRequest counts a completed HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	))
	m.requestDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}
