package main

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/eurekaclient/config"
	"github.com/kbukum/eurekaclient/eureka"
)

func loadSample(t *testing.T) Config {
	t.Helper()
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, config.WithConfigFile("config.yml"), config.WithEnvPrefix("AGENTTEST")); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestSampleConfigLoadsAndValidates(t *testing.T) {
	cfg := loadSample(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}

	if cfg.Eureka.AppName != "ORDERS" || cfg.Eureka.Port.Value != "8080" || !cfg.Eureka.Port.Enabled {
		t.Errorf("unexpected eureka section %+v", cfg.Eureka)
	}
	if cfg.Registry.Timeout.Seconds() != 10 {
		t.Errorf("registry timeout = %s", cfg.Registry.Timeout)
	}
	if len(cfg.Fallback.Static) != 1 || cfg.Fallback.Static[0].App != "BILLING" || cfg.Fallback.Static[0].Port != 9000 {
		t.Errorf("unexpected static fallback %+v", cfg.Fallback.Static)
	}
	if cfg.Metrics.ServiceName != "eureka-agent" || cfg.Metrics.Environment != "development" {
		t.Errorf("metrics defaults not derived: %+v", cfg.Metrics.MeterConfig)
	}
	if cfg.Tracing.Enabled || cfg.Tracing.ServiceName != "eureka-agent" || cfg.Tracing.SampleRate != 1 {
		t.Errorf("unexpected tracing section %+v", cfg.Tracing)
	}
	if cfg.RegisterRetry.MaxAttempts != 5 || cfg.RegisterRetry.InitialBackoff != 500*time.Millisecond {
		t.Errorf("unexpected register retry %+v", cfg.RegisterRetry)
	}
	if cfg.Fallback.Snapshot.TTL.Hours() != 24 {
		t.Errorf("snapshot ttl = %s", cfg.Fallback.Snapshot.TTL)
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("AGENTTEST_EUREKA_APP_NAME", "SHIPPING")
	t.Setenv("AGENTTEST_REGISTRY_USERNAME", "admin")
	cfg := loadSample(t)

	if cfg.Eureka.AppName != "SHIPPING" {
		t.Errorf("AppName = %q", cfg.Eureka.AppName)
	}
	if cfg.Registry.Auth == nil {
		t.Error("expected basic auth from username")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing app name", func(c *Config) { c.Eureka.AppName = "" }, "eureka.app_name: is required"},
		{"missing ip", func(c *Config) { c.Eureka.IP = "" }, "eureka.ip: is required"},
		{"bad registry url", func(c *Config) { c.Eureka.EurekaDefaultURL = "not a url" }, "eureka.default_url: must be a valid URL"},
		{"sample rate above one", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "sample_rate"},
		{"bad strategy", func(c *Config) { c.Strategy = "weighted" }, "strategy: must be one of: random, round_robin"},
		{"app name with slash", func(c *Config) { c.Eureka.AppName = "orders/v2" }, "eureka.app_name: does not match required format"},
		{"negative snapshot ttl", func(c *Config) { c.Fallback.Snapshot.TTL = -time.Minute }, "fallback.snapshot.ttl: must be positive"},
		{"backoff bounds", func(c *Config) {
			c.RegisterRetry.InitialBackoff = 5 * time.Second
			c.RegisterRetry.MaxBackoff = time.Second
		}, "register_retry.max_backoff"},
		{"bad port", func(c *Config) { c.Eureka.Port.Value = "http" }, "eureka.port.value"},
		{"bad server port", func(c *Config) { c.Server.Port = 99999 }, "server.port"},
		{"static without ip", func(c *Config) { c.Fallback.Static[0].IP = "" }, "fallback.static[0].ip: is required"},
		{"redis without addr", func(c *Config) {
			c.Fallback.Redis.Enabled = true
			c.Fallback.Redis.Addr = ""
		}, "fallback.redis"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := loadSample(t)
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestDiscoveryStrategy(t *testing.T) {
	instances := []eureka.Instance{{InstanceID: "a"}, {InstanceID: "b"}}

	cfg := Config{Strategy: "round_robin"}
	s := cfg.discoveryStrategy()
	first, _ := s.Select(instances)
	second, _ := s.Select(instances)
	if first.InstanceID == second.InstanceID {
		t.Errorf("round robin returned %s twice", first.InstanceID)
	}

	cfg.Strategy = "random"
	if _, ok := cfg.discoveryStrategy().(*eureka.RandomStrategy); !ok {
		t.Error("expected random strategy")
	}
}
