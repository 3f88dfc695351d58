package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/eurekaclient/logger"
)

// MeterConfig is the metrics section: where to push and how often.
type MeterConfig struct {
	Collector `mapstructure:",squash"`
	Interval  time.Duration `mapstructure:"interval"`
}

// DefaultMeterConfig pushes to a local collector every 15s.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{Collector: localCollector(serviceName), Interval: 15 * time.Second}
}

// InitMeter installs a global meter provider with a periodic OTLP/HTTP
// reader. The caller shuts the provider down on exit, which flushes it.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName, "endpoint", cfg.Endpoint, "interval", cfg.Interval.String(),
	))
	return mp, nil
}

func Meter(name string) metric.Meter {
	return otel.Meter(name)
}
