package httpclient

import (
	"errors"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config describes how to reach one registry.
type Config struct {
	// BaseURL is joined with relative request paths; absolute paths bypass it.
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Username and Password switch on Basic auth when Auth is unset.
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	Auth Authenticator `yaml:"-" mapstructure:"-"`
	TLS  *TLSConfig    `yaml:"tls" mapstructure:"tls"`

	// Headers go on every request; per-request headers win on conflict.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// RequestID stamps a fresh X-Request-Id on requests that lack one.
	RequestID bool `yaml:"request_id" mapstructure:"request_id"`
}

// ApplyDefaults sets a 30s timeout and derives Basic auth from the credentials.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Auth == nil && c.Username != "" {
		c.Auth = BasicAuth(c.Username, c.Password)
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("httpclient: timeout must be positive")
	}
	return c.TLS.Validate()
}
