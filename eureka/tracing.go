package eureka

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span names, one per registry operation.
const (
	SpanRegister       = "eureka.register"
	SpanDeregister     = "eureka.deregister"
	SpanHeartbeat      = "eureka.heartbeat"
	SpanFetchInstances = "eureka.fetch_instances"
)

// Span attribute keys.
const (
	AttrApp           = attribute.Key("eureka.app")
	AttrInstanceID    = attribute.Key("eureka.instance_id")
	AttrOutcome       = attribute.Key("eureka.outcome")
	AttrCacheHit      = attribute.Key("eureka.cache_hit")
	AttrInstanceCount = attribute.Key("eureka.instance_count")
	AttrStatusCode    = attribute.Key("http.response.status_code")
)

// WithTracer records a client span for every register, de-register,
// heartbeat and instance lookup. Without it nothing is recorded.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

func defaultTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("")
}

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// endSpan marks span as failed when err is set, then ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
