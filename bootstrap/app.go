package bootstrap

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/eurekaclient/component"
	"github.com/kbukum/eurekaclient/logger"
)

const defaultGracefulTimeout = 15 * time.Second

// App owns the process lifecycle: start components, wait for a signal,
// stop them again.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(eureka.NewComponent(client, app.Logger))
//	err = app.Run(ctx)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	hooks           [len(phaseNames)][]Hook
}

// NewApp defaults and validates cfg before anything else is built.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	if o.logger == nil {
		logger.Init(&base.Logging)
	} else {
		logger.SetGlobalLogger(o.logger)
	}
	log := logger.GetGlobalLogger()

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Logger:          log,
		Components:      component.NewRegistry(log),
		Summary:         NewSummary(base.Name, base.Version, o.summaryOut),
		gracefulTimeout: cmp.Or(o.gracefulTimeout, defaultGracefulTimeout),
	}, nil
}

// RegisterComponent appends c; registration order is start order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck fails listing every component that is not healthy, as
// name=status(message).
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		entry := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			entry += "(" + h.Message + ")"
		}
		bad = append(bad, entry)
	}
	if len(bad) == 0 {
		return nil
	}
	return fmt.Errorf("unhealthy components: [%s]", strings.Join(bad, " "))
}

// Run blocks until SIGINT, SIGTERM or ctx is done, then shuts down. When
// startup fails, whatever did start is stopped and the startup error wins.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		if stopErr := a.stop(); stopErr != nil {
			a.Logger.WithError(stopErr).Warn("Cleanup after failed startup reported errors")
		}
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.stop()
}

func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := a.runHooks(ctx, phaseStart); err != nil {
		return err
	}
	// A degraded component does not block startup; the fallback chain
	// covers a registry that is down.
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.WithError(err).Warn("Ready check reported issues")
	}
	if err := a.runHooks(ctx, phaseReady); err != nil {
		return err
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Display(ctx, a.Components)
	return nil
}

// WaitForSignal returns the signal received, or nil when ctx ended first.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	select {
	case s := <-ch:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", s.String()))
		return s
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// stop works on a fresh context bounded by the graceful timeout, so it still
// runs after the caller's ctx is cancelled.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var err error
	if hookErr := a.runHooks(ctx, phaseStop); hookErr != nil {
		a.Logger.WithError(hookErr).Error("OnStop hook error")
		err = hookErr
	}
	if stopErr := a.Components.StopAll(ctx); stopErr != nil {
		a.Logger.WithError(stopErr).Error("Shutdown completed with errors")
		err = stopErr
	}
	a.Logger.Info("Application shutdown complete")
	return err
}
