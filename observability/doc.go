// Package observability wires OpenTelemetry metrics and traces for the
// registry client and the agent's status server.
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("eureka-agent"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("eureka-agent"))
//	client := eureka.NewClient(cfg, transport, eureka.WithRecorder(metrics))
//
// Tracing follows the same shape:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("eureka-agent"))
//	defer tp.Shutdown(ctx)
//	client := eureka.NewClient(cfg, transport, eureka.WithTracer(observability.Tracer("eureka-agent")))
package observability
