// Package eureka is a client for the Eureka service-registry REST protocol.
//
// A Client registers the local instance described by an InstanceConfig,
// keeps the lease alive with periodic heartbeats, de-registers on shutdown,
// and resolves other applications' instances by name for client-side load
// balancing.
//
// Basic usage:
//
//	cfg := eureka.NewInstanceConfig(eureka.Options{
//		AppName: "ORDERS",
//		IP:      "10.0.0.12",
//		Port:    eureka.NewPort(8080, true),
//	})
//	transport, err := httpclient.New(httpclient.Config{Timeout: 10 * time.Second})
//	client := eureka.NewClient(cfg, transport, eureka.WithLogger(log))
//
//	go client.Start(ctx) // register, then heartbeat until ctx is done
//
//	inst, err := client.FetchInstance(ctx, "BILLING")
//
// Instance lists fetched from the registry are cached per application name
// for the life of the Client. Call Invalidate or ClearCache to force a
// refetch, or Forget to also drop the stored snapshot. When the registry
// cannot answer, the configured InstanceProvider is consulted; its results
// are never cached.
//
// WithRecorder and WithTracer attach OpenTelemetry metrics and spans to
// every registry operation.
package eureka
