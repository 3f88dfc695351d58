package redis

import (
	"cmp"
	"errors"
	"fmt"
	"time"
)

// Config is the fallback.redis section. Nothing is dialled unless Enabled.
type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ApplyDefaults sizes a small pool; snapshots are read once per lookup miss,
// not on the hot path.
func (c *Config) ApplyDefaults() {
	c.PoolSize = cmp.Or(max(c.PoolSize, 0), 10)
	c.MinIdleConns = cmp.Or(max(c.MinIdleConns, 0), 2)
	c.MaxRetries = cmp.Or(max(c.MaxRetries, 0), 3)
	c.DialTimeout = cmp.Or(c.DialTimeout, 5*time.Second)
	c.ReadTimeout = cmp.Or(c.ReadTimeout, 3*time.Second)
	c.WriteTimeout = cmp.Or(c.WriteTimeout, 3*time.Second)
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return errors.New("redis addr is required")
	}
	if c.PoolSize <= 0 {
		return errors.New("pool_size must be > 0")
	}
	for name, d := range map[string]time.Duration{
		"dial_timeout":  c.DialTimeout,
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	return nil
}
