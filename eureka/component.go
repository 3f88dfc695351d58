package eureka

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kbukum/eurekaclient/component"
	"github.com/kbukum/eurekaclient/errors"
	"github.com/kbukum/eurekaclient/httpclient"
	"github.com/kbukum/eurekaclient/logger"
	"github.com/kbukum/eurekaclient/resilience"
	"github.com/kbukum/eurekaclient/util"
)

// Component runs a Client under a component.Registry: Start registers and
// launches the heartbeat loop, Stop ends the loop and de-registers.
type Component struct {
	client *Client
	log    *logger.Logger
	retry  *resilience.RetryConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// ComponentOption configures a Component.
type ComponentOption func(*Component)

// WithRegisterRetry retries the startup registration while the registry is
// unreachable or answers 5xx. Other rejections fail Start at once. A RetryIf
// in cfg can narrow this further.
func WithRegisterRetry(cfg resilience.RetryConfig) ComponentOption {
	return func(c *Component) {
		narrow := cfg.RetryIf
		cfg.RetryIf = func(err error) bool {
			return registerRetryable(err) && (narrow == nil || narrow(err))
		}
		c.retry = &cfg
	}
}

// NewComponent wraps client for lifecycle management.
func NewComponent(client *Client, log *logger.Logger, opts ...ComponentOption) *Component {
	if log == nil {
		log = logger.Nop()
	}
	c := &Component{client: client, log: log.WithComponent("eureka")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ensure Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "eureka" }

// Client returns the wrapped Client.
func (c *Component) Client() *Client { return c.client }

// Start registers the instance and starts heartbeating in the background.
// The heartbeat loop is not bound to ctx; it runs until Stop.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	if err := c.register(ctx); err != nil {
		return fmt.Errorf("eureka start: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.client.heartbeatLoop(loopCtx)
	}()
	c.cancel, c.done, c.running = cancel, done, true

	c.log.Info("eureka component started", logger.Fields(
		logger.FieldApp, c.client.cfg.AppName(),
		logger.FieldInstanceID, c.client.cfg.InstanceID(),
		"heartbeat_interval", c.client.cfg.HeartbeatInterval(),
	))
	return nil
}

func (c *Component) register(ctx context.Context) error {
	if c.retry == nil {
		return c.client.Register(ctx)
	}
	cfg := *c.retry
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		c.log.Warn("eureka registration will be retried", map[string]interface{}{
			"attempt": attempt,
			"backoff": wait.String(),
			"error":   err.Error(),
		})
	}
	return resilience.RetryFunc(ctx, cfg, func() error {
		return c.client.Register(ctx)
	})
}

// registerRetryable accepts transport failures and 5xx answers.
func registerRetryable(err error) bool {
	if httpclient.IsRetryable(err) {
		return true
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return false
	}
	status, _ := appErr.Details["status"].(int)
	return status >= 500
}

// Stop ends the heartbeat loop and de-registers. A de-registration failure
// is logged, not returned.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	c.log.Info("eureka component stopping")

	c.cancel()
	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.running = false

	if err := c.client.DeRegister(ctx); err != nil {
		c.log.Warn("failed to de-register on stop", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

// Health reports healthy after a successful heartbeat, degraded after a
// failed one and unhealthy when not running.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()

	if !running {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "not registered",
		}
	}

	last, ok := c.client.LastHeartbeat()
	switch {
	case !ok:
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "registered"}
	case last.OK():
		return component.Health{Name: c.Name(), Status: component.StatusHealthy}
	case last.Outcome == HeartbeatRejected:
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusDegraded,
			Message: "heartbeat rejected with status " + strconv.Itoa(last.StatusCode),
		}
	default:
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusDegraded,
			Message: "registry unreachable: " + last.TransportCode.String(),
		}
	}
}

// Describe returns summary info for the startup display.
func (c *Component) Describe() component.Description {
	cfg := c.client.cfg
	port, _ := strconv.Atoi(cfg.Port().Value)
	return component.Description{
		Name:    "Eureka",
		Type:    "discovery",
		Details: fmt.Sprintf("registry=%s app=%s id=%s", util.RedactURL(cfg.EurekaDefaultURL()), cfg.AppName(), cfg.InstanceID()),
		Port:    port,
	}
}
