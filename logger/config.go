package logger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

var (
	formats = []string{"json", "console", FormatPretty}
	outputs = []string{"stdout", "stderr"}
)

// Config is the logging section of a service config.
type Config struct {
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// Level is any zerolog level name: trace, debug, info, warn, error, fatal.
	Level string `yaml:"level" mapstructure:"level"`
	// Format is json, console or pretty. Console and pretty are the same.
	Format string `yaml:"format" mapstructure:"format"`
	// Output is stdout or stderr.
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults logs at info level to stderr in console format. Records
// always carry a timestamp.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = zerolog.LevelInfoValue
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	c.Timestamp = true
}

// Validate rejects levels zerolog cannot parse and unknown formats or
// outputs. Matching is case-insensitive.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if !slices.Contains(formats, strings.ToLower(c.Format)) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", formats, c.Format)
	}
	if !slices.Contains(outputs, strings.ToLower(c.Output)) {
		return fmt.Errorf("logging.output must be one of %v (got: %s)", outputs, c.Output)
	}
	return nil
}
