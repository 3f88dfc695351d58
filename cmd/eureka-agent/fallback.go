package main

import (
	"context"
	"errors"
	"sync"

	"github.com/kbukum/eurekaclient/eureka"
	"github.com/kbukum/eurekaclient/eureka/redisprovider"
	"github.com/kbukum/eurekaclient/redis"
)

var errRedisNotStarted = errors.New("redis fallback not started")

// redisFallback reads and writes instance snapshots through the redis
// component. The component creates its client on Start, so the provider is
// built on first use.
type redisFallback struct {
	comp *redis.Component
	cfg  redisprovider.Config

	mu       sync.Mutex
	provider *redisprovider.Provider
}

var (
	_ eureka.InstanceProvider = (*redisFallback)(nil)
	_ eureka.Snapshotter      = (*redisFallback)(nil)
	_ eureka.SnapshotRemover  = (*redisFallback)(nil)
)

func newRedisFallback(comp *redis.Component, cfg redisprovider.Config) *redisFallback {
	return &redisFallback{comp: comp, cfg: cfg}
}

func (f *redisFallback) get() *redisprovider.Provider {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.provider == nil {
		if client := f.comp.Client(); client != nil {
			f.provider = redisprovider.New(client, f.cfg)
		}
	}
	return f.provider
}

func (f *redisFallback) Instances(ctx context.Context, appName string) ([]eureka.Instance, error) {
	p := f.get()
	if p == nil {
		return nil, errRedisNotStarted
	}
	return p.Instances(ctx, appName)
}

// Store is a no-op until redis has started.
func (f *redisFallback) Store(ctx context.Context, appName string, instances []eureka.Instance) error {
	p := f.get()
	if p == nil {
		return nil
	}
	return p.Store(ctx, appName, instances)
}

func (f *redisFallback) Remove(ctx context.Context, appName string) error {
	p := f.get()
	if p == nil {
		return errRedisNotStarted
	}
	return p.Remove(ctx, appName)
}
