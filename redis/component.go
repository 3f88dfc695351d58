package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/eurekaclient/component"
	"github.com/kbukum/eurekaclient/logger"
)

const componentName = "redis"

var _ component.Component = (*Component)(nil)

// Component owns the Client for the lifetime of the agent. The snapshot
// store reaches the client through Client once Start has run.
type Component struct {
	cfg    Config
	log    *logger.Logger
	client *Client
}

func NewComponent(cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	return &Component{cfg: cfg, log: log.WithComponent(componentName)}
}

// Client is nil until Start succeeds.
func (c *Component) Client() *Client { return c.client }

func (c *Component) Name() string { return componentName }

// Start fails when the server does not answer a ping.
func (c *Component) Start(ctx context.Context) error {
	client, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("redis start: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis start ping: %w", err)
	}
	c.client = client
	c.log.Info("Redis component started", logger.Fields("addr", c.cfg.Addr))
	return nil
}

func (c *Component) Stop(context.Context) error {
	if c.client == nil {
		return nil
	}
	c.log.Info("Redis component stopping")
	return c.client.Close()
}

// Health reports degraded, not unhealthy, on a failed ping: lookups still
// have the static list behind the snapshot store.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.client == nil {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "redis not initialized"}
	}
	if err := c.client.Ping(ctx); err != nil {
		return component.Health{Name: componentName, Status: component.StatusDegraded, Message: "ping failed: " + err.Error()}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Redis",
		Type:    "redis",
		Details: fmt.Sprintf("%s db=%d", c.cfg.Addr, c.cfg.DB),
	}
}
