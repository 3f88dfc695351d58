// Command eureka-agent registers a service with a Eureka registry, keeps the
// registration alive and serves instance lookups for other applications
// over HTTP.
//
//	eureka-agent -config ./config.yml
//	eureka-agent -version
//
// Every config key can be overridden from the environment, for example
// EUREKA_APP_NAME=orders or REGISTRY_USERNAME=admin.
package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/eurekaclient/bootstrap"
	"github.com/kbukum/eurekaclient/config"
	"github.com/kbukum/eurekaclient/eureka"
	"github.com/kbukum/eurekaclient/httpclient"
	"github.com/kbukum/eurekaclient/logger"
	"github.com/kbukum/eurekaclient/observability"
	"github.com/kbukum/eurekaclient/redis"
	"github.com/kbukum/eurekaclient/server"
	"github.com/kbukum/eurekaclient/server/endpoint"
	"github.com/kbukum/eurekaclient/server/middleware"
	"github.com/kbukum/eurekaclient/util"
	"github.com/kbukum/eurekaclient/version"
)

const serviceName = "eureka-agent"

func main() {
	configFile := flag.String("config", "", "path to config.yml (searched for when empty)")
	envFile := flag.String("env", "", "path to a .env file (searched for when empty)")
	envPrefix := flag.String("env-prefix", "", "only apply environment variables with this prefix")
	showVersion := flag.Bool("version", false, "print the build version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", serviceName, version.Get())
		return
	}

	opts := []config.LoaderOption{config.WithConfigFile(*configFile), config.WithEnvFile(*envFile)}
	if *envPrefix != "" {
		opts = append(opts, config.WithEnvPrefix(*envPrefix))
	}

	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
	cfg.Name = cmp.Or(cfg.Name, serviceName)
	cfg.Version = cmp.Or(cfg.Version, version.Get().String())

	if err := run(context.Background(), &cfg); err != nil {
		logger.Error("eureka-agent failed", logger.Fields(logger.FieldError, err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config) error {
	started := time.Now()
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	log := app.Logger
	log.Debug("configuration loaded", logger.Fields(
		"registry", util.RedactURL(cfg.Eureka.EurekaDefaultURL),
		"registry_user", cfg.Registry.Username,
		"registry_password", util.MaskSecret(cfg.Registry.Password, 0),
		"redis_password", util.MaskSecret(cfg.Fallback.Redis.Password, 0),
		"strategy", cfg.Strategy,
	))

	var tracer trace.Tracer
	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing.TracerConfig)
		if err != nil {
			return err
		}
		app.OnStop(func(ctx context.Context) error { return tp.Shutdown(ctx) })
		tracer = observability.Tracer(serviceName)
	}

	var recorder *observability.Metrics
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, cfg.Metrics.MeterConfig)
		if err != nil {
			return err
		}
		app.OnStop(func(ctx context.Context) error { return mp.Shutdown(ctx) })
		if recorder, err = observability.NewMetrics(observability.Meter(serviceName)); err != nil {
			return err
		}
	}

	transport, err := httpclient.New(cfg.Registry)
	if err != nil {
		return err
	}

	opts := cfg.Eureka
	opts.DiscoveryStrategy = cfg.discoveryStrategy()
	instanceCfg := eureka.NewInstanceConfig(opts)

	clientOpts := []eureka.Option{eureka.WithLogger(log)}
	if recorder != nil {
		clientOpts = append(clientOpts, eureka.WithRecorder(recorder))
	}
	if tracer != nil {
		clientOpts = append(clientOpts, eureka.WithTracer(tracer))
	}

	var providers []eureka.InstanceProvider
	if len(cfg.Fallback.Static) > 0 {
		providers = append(providers, eureka.NewStaticProvider(cfg.Fallback.Static))
	}
	if cfg.Fallback.Redis.Enabled {
		redisComp := redis.NewComponent(cfg.Fallback.Redis, log)
		if err := app.RegisterComponent(redisComp); err != nil {
			return err
		}
		snapshots := newRedisFallback(redisComp, cfg.Fallback.Snapshot)
		providers = append(providers, snapshots)
		clientOpts = append(clientOpts, eureka.WithSnapshotter(snapshots))
	}
	if len(providers) > 0 {
		instanceCfg.SetInstanceProvider(eureka.ChainProvider(providers...))
	}

	client := eureka.NewClient(instanceCfg, transport, clientOpts...)
	eurekaComp := eureka.NewComponent(client, log, eureka.WithRegisterRetry(cfg.RegisterRetry))
	if err := app.RegisterComponent(eurekaComp); err != nil {
		return err
	}

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server, log)
		var rec middleware.RequestRecorder
		if recorder != nil {
			rec = recorder
		}
		srv.ApplyMiddleware(rec, tracer)

		engine := srv.GinEngine()
		checker := app.Components.HealthAll
		engine.GET("/health", endpoint.Health(cfg.Name, checker))
		engine.GET("/ready", endpoint.Readiness(cfg.Name, checker))
		engine.GET("/alive", endpoint.Liveness(cfg.Name, started))
		engine.GET("/version", endpoint.Version(cfg.Name))
		endpoint.RegisterRoutes(engine, client, client)

		if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
			return err
		}
	}

	app.OnReady(func(context.Context) error {
		log.Info("registered with eureka", logger.Fields(
			logger.FieldApp, instanceCfg.AppName(),
			logger.FieldInstanceID, instanceCfg.InstanceID(),
			"registry", util.RedactURL(instanceCfg.EurekaDefaultURL()),
		))
		return nil
	})

	return app.Run(ctx)
}
