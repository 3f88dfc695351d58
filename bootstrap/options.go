package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/eurekaclient/logger"
)

// Option adjusts NewApp.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	summaryOut      io.Writer
}

func resolveOptions(opts []Option) appOptions {
	var o appOptions
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// WithLogger sets a custom logger and installs it as the global logger.
// Without it the logger is initialized from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds shutdown; zero keeps the 15s default.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = d }
}

// WithSummaryOutput redirects the startup summary; io.Discard disables it.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) { o.summaryOut = w }
}
