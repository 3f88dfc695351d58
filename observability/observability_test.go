package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("eureka-agent")
	if cfg.ServiceName != "eureka-agent" || cfg.Endpoint != "localhost:4318" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Interval != 15*time.Second || !cfg.Insecure {
		t.Errorf("unexpected interval/insecure %v/%v", cfg.Interval, cfg.Insecure)
	}
}

func TestMetrics_RecordOperation(t *testing.T) {
	m, reader := newManualMetrics(t)
	ctx := context.Background()

	m.RecordOperation(ctx, "heartbeat", "success", 10*time.Millisecond)
	m.RecordOperation(ctx, "heartbeat", "success", 12*time.Millisecond)
	m.RecordOperation(ctx, "heartbeat", "error", 5*time.Millisecond)
	m.RecordOperation(ctx, "fetch", "cached", 0)

	got := collect(t, reader)
	sum, ok := got[MetricOperationTotal].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected int64 sum for %s, got %T", MetricOperationTotal, got[MetricOperationTotal].Data)
	}

	counts := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value(attribute.Key("operation"))
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		counts[op.AsString()+"/"+outcome.AsString()] = dp.Value
	}
	if counts["heartbeat/success"] != 2 || counts["heartbeat/error"] != 1 || counts["fetch/cached"] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}

	hist, ok := got[MetricOperationDuration].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected histogram for %s", MetricOperationDuration)
	}
	var observed uint64
	for _, dp := range hist.DataPoints {
		observed += dp.Count
	}
	if observed != 3 {
		t.Errorf("expected 3 duration observations (cache hit excluded), got %d", observed)
	}
}

func TestMetrics_RecordRequest(t *testing.T) {
	m, reader := newManualMetrics(t)
	m.RecordRequest(context.Background(), "GET", "/apps/:app", 200, time.Millisecond)

	got := collect(t, reader)
	sum, ok := got[MetricRequestTotal].Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Fatalf("unexpected request total %+v", got[MetricRequestTotal].Data)
	}
	status, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("status"))
	if status.AsString() != "200" {
		t.Errorf("expected status attribute 200, got %q", status.AsString())
	}
}

func TestNewMetrics_Noop(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	m.RecordOperation(context.Background(), "register", "success", time.Millisecond)
}

func TestCollector_Resource(t *testing.T) {
	res, err := Collector{ServiceName: "eureka-agent", ServiceVersion: "1.2.3", Environment: "test"}.resource()
	if err != nil {
		t.Fatalf("resource failed: %v", err)
	}
	v, ok := res.Set().Value(attribute.Key("service.name"))
	if !ok || v.AsString() != "eureka-agent" {
		t.Errorf("expected service.name eureka-agent, got %v", v)
	}
}
