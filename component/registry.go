package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/eurekaclient/logger"
)

// DefaultStopTimeout bounds each component's Stop call in StopAll.
const DefaultStopTimeout = 10 * time.Second

type slot struct {
	Component
	running bool
}

// Registry owns the agent's components. They start in registration order
// and stop in reverse, so a component may rely on anything registered
// before it (the Eureka client on the Redis fallback, the server on both).
type Registry struct {
	mu          sync.RWMutex
	slots       []*slot
	log         *logger.Logger
	stopTimeout time.Duration
}

// NewRegistry logs through log, or the global logger when log is nil.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Registry{log: log.WithComponent("registry"), stopTimeout: DefaultStopTimeout}
}

func (r *Registry) find(name string) *slot {
	for _, s := range r.slots {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Register rejects a second component with the same name.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(c.Name()) != nil {
		return fmt.Errorf("component %s already registered", c.Name())
	}
	r.slots = append(r.slots, &slot{Component: c})
	r.log.Debug("Component registered", logger.Fields(logger.FieldComponent, c.Name()))
	return nil
}

// StartAll stops at the first failure. Components already running stay
// running until StopAll unwinds them.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Starting all components", logger.Fields("count", len(r.slots)))
	for _, s := range r.slots {
		if s.running {
			continue
		}
		if err := s.Start(ctx); err != nil {
			r.log.WithError(err).Error("Component start failed", logger.Fields(logger.FieldComponent, s.Name()))
			return fmt.Errorf("failed to start %s: %w", s.Name(), err)
		}
		s.running = true
		r.log.Debug("Component started", logger.Fields(logger.FieldComponent, s.Name()))
	}
	r.log.Info("All components started successfully")
	return nil
}

// StopAll stops running components newest first, giving each stopTimeout.
// Every component gets its Stop call even when an earlier one fails.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Stopping all components")
	var errs []error
	for i := len(r.slots) - 1; i >= 0; i-- {
		s := r.slots[i]
		if !s.running {
			continue
		}
		if err := r.stopOne(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutdown errors: %w", err)
	}
	r.log.Info("All components stopped successfully")
	return nil
}

func (r *Registry) stopOne(ctx context.Context, s *slot) error {
	ctx, cancel := context.WithTimeout(ctx, r.stopTimeout)
	defer cancel()
	s.running = false

	fields := logger.Fields(logger.FieldComponent, s.Name())
	if err := s.Stop(ctx); err != nil {
		r.log.WithError(err).Error("Component stop failed", fields)
		return fmt.Errorf("failed to stop %s: %w", s.Name(), err)
	}
	r.log.Info("Component stopped", fields)
	return nil
}

// HealthAll asks every component, in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Health, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.Health(ctx)
	}
	return out
}

// Describe skips components that do not implement Describable and fills a
// blank Name from the component.
func (r *Registry) Describe() []Description {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Description
	for _, s := range r.slots {
		if d, ok := s.Component.(Describable); ok {
			desc := d.Describe()
			if desc.Name == "" {
				desc.Name = s.Name()
			}
			out = append(out, desc)
		}
	}
	return out
}

// Get returns nil for unknown names.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s := r.find(name); s != nil {
		return s.Component
	}
	return nil
}

func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.Component
	}
	return out
}
