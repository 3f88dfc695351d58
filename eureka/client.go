package eureka

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/eurekaclient/errors"
	"github.com/kbukum/eurekaclient/httpclient"
	"github.com/kbukum/eurekaclient/logger"
)

// Operation names passed to a Recorder.
const (
	OpRegister   = "register"
	OpDeregister = "deregister"
	OpHeartbeat  = "heartbeat"
	OpFetch      = "fetch"
)

// Outcomes passed to a Recorder.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
	OutcomeCached   = "cached"
)

// Recorder observes registry operations. observability.Metrics implements it.
type Recorder interface {
	RecordOperation(ctx context.Context, op, outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(context.Context, string, string, time.Duration) {}

// Snapshotter receives every instance list fetched from the registry, so a
// fallback InstanceProvider can serve it later.
type Snapshotter interface {
	Store(ctx context.Context, appName string, instances []Instance) error
}

// SnapshotRemover is implemented by Snapshotters that can drop a stored list.
type SnapshotRemover interface {
	Remove(ctx context.Context, appName string) error
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log.WithComponent("eureka")
		}
	}
}

// WithConsole replaces the terminal detection: progress lines go to w when
// enabled is true and are dropped otherwise.
func WithConsole(w io.Writer, enabled bool) Option {
	return func(c *Client) {
		c.console = &Console{w: w, enabled: enabled, now: time.Now}
	}
}

// WithRecorder sets the operation recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.metrics = r
		}
	}
}

// WithSnapshotter writes registry results through to s.
func WithSnapshotter(s Snapshotter) Option {
	return func(c *Client) {
		c.snapshot = s
	}
}

// Client talks to a Eureka registry on behalf of one instance.
type Client struct {
	cfg       *InstanceConfig
	transport Transport
	cache     *instanceCache
	log       *logger.Logger
	console   *Console
	metrics   Recorder
	snapshot  Snapshotter
	tracer    trace.Tracer

	beats    atomic.Uint64
	lastBeat atomic.Pointer[HeartbeatResult]
	after    func(time.Duration) <-chan time.Time
}

// NewClient returns a Client for cfg. The config is referenced, not copied,
// so later setter calls are seen by the Client.
func NewClient(cfg *InstanceConfig, transport Transport, opts ...Option) *Client {
	c := &Client{
		cfg:       cfg,
		transport: transport,
		cache:     newInstanceCache(),
		log:       logger.Nop(),
		metrics:   nopRecorder{},
		tracer:    defaultTracer(),
		after:     time.After,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.console == nil {
		c.console = NewConsole()
	}
	return c
}

// Config returns the instance config the Client was built with.
func (c *Client) Config() *InstanceConfig { return c.cfg }

// Register announces the instance. Only 204 No Content counts as success.
func (c *Client) Register(ctx context.Context) (err error) {
	app := c.cfg.AppName()
	ctx, span := c.startSpan(ctx, SpanRegister, AttrApp.String(app), AttrInstanceID.String(c.cfg.InstanceID()))
	defer func() { endSpan(span, err) }()
	start := time.Now()
	c.console.Printf("Registering...")

	body, err := json.Marshal(c.cfg.RegistrationPayload())
	if err != nil {
		return errors.RegisterFailed(app, 0).WithCause(err)
	}

	resp, err := c.send(ctx, http.MethodPost, c.appPath(app), body)
	if err != nil {
		c.log.WithError(err).Warn("eureka register failed", logger.Fields(logger.FieldApp, app))
		c.metrics.RecordOperation(ctx, OpRegister, OutcomeError, time.Since(start))
		return errors.RegisterFailed(app, 0).WithCause(err)
	}
	span.SetAttributes(AttrStatusCode.Int(resp.StatusCode))
	if resp.StatusCode != http.StatusNoContent {
		c.log.Warn("eureka register rejected", logger.Fields(
			logger.FieldApp, app, logger.FieldStatus, resp.StatusCode,
			"body", resp.Snippet(rejectionSnippet),
		))
		c.metrics.RecordOperation(ctx, OpRegister, OutcomeRejected, time.Since(start))
		return errors.RegisterFailed(app, resp.StatusCode)
	}

	c.log.Info("registered with eureka", logger.Fields(
		logger.FieldApp, app, logger.FieldInstanceID, c.cfg.InstanceID(),
	))
	c.metrics.RecordOperation(ctx, OpRegister, OutcomeSuccess, time.Since(start))
	return nil
}

// IsRegistered reports whether the registry knows this instance. Any
// failure, including a transport error, reads as false.
func (c *Client) IsRegistered(ctx context.Context) bool {
	resp, err := c.send(ctx, http.MethodGet, c.instancePath(), nil)
	if err != nil {
		c.log.Debug("eureka registration check failed", logger.ErrorFields("is_registered", err))
		return false
	}
	return resp.StatusCode == http.StatusOK
}

// DeRegister removes the instance. Only 200 OK counts as success.
func (c *Client) DeRegister(ctx context.Context) (err error) {
	app := c.cfg.AppName()
	ctx, span := c.startSpan(ctx, SpanDeregister, AttrApp.String(app), AttrInstanceID.String(c.cfg.InstanceID()))
	defer func() { endSpan(span, err) }()
	start := time.Now()
	c.console.Printf("De-registering...")

	resp, err := c.send(ctx, http.MethodDelete, c.instancePath(), nil)
	if err != nil {
		c.log.WithError(err).Warn("eureka de-register failed", logger.Fields(logger.FieldApp, app))
		c.metrics.RecordOperation(ctx, OpDeregister, OutcomeError, time.Since(start))
		return errors.DeregisterFailed(app, 0).WithCause(err)
	}
	span.SetAttributes(AttrStatusCode.Int(resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("eureka de-register rejected", logger.Fields(
			logger.FieldApp, app, logger.FieldStatus, resp.StatusCode,
			"body", resp.Snippet(rejectionSnippet),
		))
		c.metrics.RecordOperation(ctx, OpDeregister, OutcomeRejected, time.Since(start))
		return errors.DeregisterFailed(app, resp.StatusCode)
	}

	c.log.Info("de-registered from eureka", logger.Fields(
		logger.FieldApp, app, logger.FieldInstanceID, c.cfg.InstanceID(),
	))
	c.metrics.RecordOperation(ctx, OpDeregister, OutcomeSuccess, time.Since(start))
	return nil
}

// FetchInstance resolves appName and picks one instance with the configured
// DiscoveryStrategy.
func (c *Client) FetchInstance(ctx context.Context, appName string) (Instance, error) {
	instances, err := c.FetchInstances(ctx, appName)
	if err != nil {
		return Instance{}, err
	}
	return c.cfg.DiscoveryStrategy().Select(instances)
}

// FetchInstances returns the instances of appName. A cached registry result
// is returned without a network call. When the registry fails or has no
// instances, the InstanceProvider is consulted; without one, the error
// matches ErrInstanceFailure. A caller whose ctx ends while the registry
// call is in flight gets ctx.Err(); the call itself finishes for the
// callers still waiting on it.
func (c *Client) FetchInstances(ctx context.Context, appName string) (instances []Instance, err error) {
	ctx, span := c.startSpan(ctx, SpanFetchInstances, AttrApp.String(appName))
	defer func() {
		span.SetAttributes(AttrInstanceCount.Int(len(instances)))
		endSpan(span, err)
	}()

	if cached := c.cache.get(appName); len(cached) > 0 {
		span.SetAttributes(AttrCacheHit.Bool(true))
		c.metrics.RecordOperation(ctx, OpFetch, OutcomeCached, 0)
		return cached, nil
	}
	span.SetAttributes(AttrCacheHit.Bool(false))
	return c.cache.resolve(ctx, appName, func(ctx context.Context) ([]Instance, bool, error) {
		return c.fetchFromRegistry(ctx, appName)
	})
}

// Invalidate drops the cached instances of appName.
func (c *Client) Invalidate(appName string) {
	c.cache.invalidate(appName)
}

// Forget drops the cached instances of appName and, when the Snapshotter
// implements SnapshotRemover, its stored snapshot too. The cache entry is
// gone even if removing the snapshot fails.
func (c *Client) Forget(ctx context.Context, appName string) error {
	c.cache.invalidate(appName)
	if r, ok := c.snapshot.(SnapshotRemover); ok {
		if err := r.Remove(ctx, appName); err != nil {
			c.log.WithError(err).Warn("failed to remove instance snapshot", logger.Fields(logger.FieldApp, appName))
			return err
		}
	}
	return nil
}

// ClearCache drops every cached application.
func (c *Client) ClearCache() {
	c.cache.clear()
}

func (c *Client) fetchFromRegistry(ctx context.Context, appName string) ([]Instance, bool, error) {
	start := time.Now()
	resp, err := c.send(ctx, http.MethodGet, c.appPath(appName), nil)
	if err != nil {
		c.log.WithError(err).Warn("eureka fetch failed", logger.Fields(logger.FieldApp, appName))
		instances, ferr := c.fallback(ctx, appName, "could not get instances for "+appName+" from eureka", start)
		return instances, false, ferr
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("eureka fetch rejected", logger.Fields(
			logger.FieldApp, appName, logger.FieldStatus, resp.StatusCode,
		))
		instances, ferr := c.fallback(ctx, appName, "could not get instances from eureka", start)
		return instances, false, ferr
	}

	instances := decodeInstances(resp.Body)
	if len(instances) == 0 {
		instances, ferr := c.fallback(ctx, appName, "no instance found for "+appName, start)
		return instances, false, ferr
	}

	c.log.Debug("fetched instances from eureka", logger.Fields(
		logger.FieldApp, appName, "count", len(instances),
	))
	c.metrics.RecordOperation(ctx, OpFetch, OutcomeSuccess, time.Since(start))

	if c.snapshot != nil {
		if err := c.snapshot.Store(ctx, appName, instances); err != nil {
			c.log.WithError(err).Warn("failed to snapshot instances", logger.Fields(logger.FieldApp, appName))
		}
	}
	return instances, true, nil
}

func (c *Client) fallback(ctx context.Context, appName, message string, start time.Time) ([]Instance, error) {
	provider := c.cfg.InstanceProvider()
	if provider == nil {
		c.metrics.RecordOperation(ctx, OpFetch, OutcomeError, time.Since(start))
		return nil, errors.InstanceNotFound(appName, message)
	}
	instances, err := provider.Instances(ctx, appName)
	if err != nil {
		c.metrics.RecordOperation(ctx, OpFetch, OutcomeError, time.Since(start))
		return nil, errors.InstanceNotFound(appName, message).WithCause(err)
	}
	c.log.Debug("using fallback instance provider", logger.Fields(
		logger.FieldApp, appName, "count", len(instances),
	))
	c.metrics.RecordOperation(ctx, OpFetch, OutcomeFallback, time.Since(start))
	return instances, nil
}

// send performs one registry request. A transport that returns no response
// and no error is reported as a connection failure.
func (c *Client) send(ctx context.Context, method, path string, body []byte) (*httpclient.Response, error) {
	resp, err := c.transport.Do(ctx, httpclient.JSON(method, path, body))
	if err == nil && resp == nil {
		return nil, httpclient.NewConnectionError(httpclient.ErrNoResponse)
	}
	return resp, err
}

func (c *Client) appPath(appName string) string {
	return strings.TrimRight(c.cfg.EurekaDefaultURL(), "/") + "/eureka/apps/" + url.PathEscape(appName)
}

func (c *Client) instancePath() string {
	return c.appPath(c.cfg.AppName()) + "/" + url.PathEscape(c.cfg.InstanceID())
}
