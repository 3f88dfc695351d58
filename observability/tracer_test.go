package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("eureka-agent")
	if cfg.ServiceName != "eureka-agent" || cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestCollector_Inherit(t *testing.T) {
	c := Collector{Environment: "staging"}
	c.Inherit("eureka-agent", "2.0.1", "production")
	if c.ServiceName != "eureka-agent" || c.ServiceVersion != "2.0.1" {
		t.Errorf("identity not inherited: %+v", c)
	}
	if c.Environment != "staging" {
		t.Errorf("explicit environment overwritten: %q", c.Environment)
	}
	if c.Endpoint != "localhost:4318" || c.Insecure {
		t.Errorf("unexpected endpoint settings: %+v", c)
	}
}

func TestSampler(t *testing.T) {
	traceID := trace.TraceID{0x4b, 0xf9, 0x2f, 0x35}
	sampledParent := trace.ContextWithRemoteSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))

	tests := []struct {
		name string
		rate float64
		ctx  context.Context
		want sdktrace.SamplingDecision
	}{
		{"always", 1, context.Background(), sdktrace.RecordAndSample},
		{"never", 0, context.Background(), sdktrace.Drop},
		{"sampled parent wins", 0, sampledParent, sdktrace.RecordAndSample},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := sampler(tc.rate).ShouldSample(sdktrace.SamplingParameters{
				ParentContext: tc.ctx,
				TraceID:       traceID,
				Name:          "eureka.register",
			})
			if res.Decision != tc.want {
				t.Errorf("decision = %v, want %v", res.Decision, tc.want)
			}
		})
	}
}

func TestInitTracer_InstallsGlobalProvider(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	cfg := DefaultTracerConfig("eureka-agent")
	cfg.Endpoint = "127.0.0.1:1"
	tp, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitTracer failed: %v", err)
	}
	if otel.GetTracerProvider() != tp {
		t.Error("expected the provider to be installed globally")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown with nothing exported: %v", err)
	}
}
