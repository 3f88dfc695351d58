package main

import (
	"cmp"
	"fmt"
	"time"

	"github.com/kbukum/eurekaclient/config"
	"github.com/kbukum/eurekaclient/eureka"
	"github.com/kbukum/eurekaclient/eureka/redisprovider"
	"github.com/kbukum/eurekaclient/httpclient"
	"github.com/kbukum/eurekaclient/observability"
	"github.com/kbukum/eurekaclient/redis"
	"github.com/kbukum/eurekaclient/resilience"
	"github.com/kbukum/eurekaclient/server"
	"github.com/kbukum/eurekaclient/validation"
)

// strategies are the accepted values of Config.Strategy.
var strategies = []string{"random", "round_robin"}

// Config is the agent's configuration, loaded from config.yml and the
// environment.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash" validate:"-"`

	Eureka        eureka.Options         `yaml:"eureka" mapstructure:"eureka"`
	Strategy      string                 `yaml:"strategy" mapstructure:"strategy"`
	RegisterRetry resilience.RetryConfig `yaml:"register_retry" mapstructure:"register_retry"`
	Registry      httpclient.Config      `yaml:"registry" mapstructure:"registry" validate:"-"`
	Server        server.Config          `yaml:"server" mapstructure:"server"`
	Metrics       MetricsConfig          `yaml:"metrics" mapstructure:"metrics"`
	Tracing       TracingConfig          `yaml:"tracing" mapstructure:"tracing"`
	Fallback      FallbackConfig         `yaml:"fallback" mapstructure:"fallback"`
}

// MetricsConfig enables OTLP metric export.
type MetricsConfig struct {
	Enabled                   bool `yaml:"enabled" mapstructure:"enabled"`
	observability.MeterConfig `yaml:",inline" mapstructure:",squash"`
}

// TracingConfig enables OTLP trace export. A sample_rate of 0 means the
// default of 1, keeping every trace; disable tracing with enabled: false.
type TracingConfig struct {
	Enabled                    bool `yaml:"enabled" mapstructure:"enabled"`
	observability.TracerConfig `yaml:",inline" mapstructure:",squash"`
}

// FallbackConfig lists where instances come from when the registry cannot
// answer: static endpoints first, then Redis snapshots of earlier answers.
type FallbackConfig struct {
	Static   []eureka.StaticEndpoint `yaml:"static" mapstructure:"static"`
	Redis    redis.Config            `yaml:"redis" mapstructure:"redis" validate:"-"`
	Snapshot redisprovider.Config    `yaml:"snapshot" mapstructure:"snapshot"`
}

// ApplyDefaults fills every section's defaults.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Strategy == "" {
		c.Strategy = "random"
	}
	c.RegisterRetry.ApplyDefaults()
	c.Registry.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Fallback.Redis.Enabled {
		c.Fallback.Redis.ApplyDefaults()
	}
	if c.Fallback.Snapshot.TTL == 0 {
		c.Fallback.Snapshot.TTL = 24 * time.Hour
	}

	c.Tracing.Inherit(c.Name, c.Version, c.Environment)
	c.Tracing.SampleRate = cmp.Or(c.Tracing.SampleRate, 1)

	c.Metrics.Inherit(c.Name, c.Version, c.Environment)
	c.Metrics.Interval = cmp.Or(c.Metrics.Interval, observability.DefaultMeterConfig(c.Name).Interval)
}

// Validate checks every section. Struct tags cover field formats; the rest
// is checked here.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}

	v := validation.New().
		Pattern("eureka.app_name", c.Eureka.AppName, eureka.AppNamePattern).
		OneOf("strategy", c.Strategy, strategies).
		Port("eureka.port.value", c.Eureka.Port.Value).
		Custom(c.Fallback.Snapshot.TTL > 0, "fallback.snapshot.ttl", "must be positive").
		Custom(c.RegisterRetry.MaxBackoff >= c.RegisterRetry.InitialBackoff,
			"register_retry.max_backoff", "must not be less than initial_backoff")
	if c.Eureka.SecurePort != nil {
		v.Port("eureka.secure_port.value", c.Eureka.SecurePort.Value)
	}
	for i, ep := range c.Fallback.Static {
		field := fmt.Sprintf("fallback.static[%d]", i)
		v.Required(field+".app", ep.App)
		v.Required(field+".ip", ep.IP)
		v.Range(field+".port", ep.Port, 1, 65535)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}

	if err := c.Registry.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if err := c.Fallback.Redis.Validate(); err != nil {
		return fmt.Errorf("fallback.redis: %w", err)
	}
	return nil
}

// discoveryStrategy maps the configured name to a strategy.
func (c *Config) discoveryStrategy() eureka.DiscoveryStrategy {
	if c.Strategy == "round_robin" {
		return eureka.NewRoundRobinStrategy()
	}
	return eureka.NewRandomStrategy()
}
