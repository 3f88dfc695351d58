package eureka

import (
	"context"
	"sync"
)

// instanceCache memoizes registry results per application name. Entries
// never expire. Concurrent misses for the same name share one fetch.
type instanceCache struct {
	mu       sync.RWMutex
	entries  map[string][]Instance
	inflight map[string]*flight
}

type flight struct {
	done      chan struct{}
	instances []Instance
	err       error
}

// fetchFunc resolves an application. cacheable reports whether the result
// came from the registry and may be stored.
type fetchFunc func(ctx context.Context) (instances []Instance, cacheable bool, err error)

func newInstanceCache() *instanceCache {
	return &instanceCache{
		entries:  make(map[string][]Instance),
		inflight: make(map[string]*flight),
	}
}

func (c *instanceCache) get(appName string) []Instance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[appName]
}

// resolve returns the cached list for appName, or joins the fetch for it,
// starting one when none is running. The fetch runs on a context detached
// from any single caller, so a caller that gives up returns ctx.Err() while
// the others still get the result.
func (c *instanceCache) resolve(ctx context.Context, appName string, fetch fetchFunc) ([]Instance, error) {
	if cached := c.get(appName); len(cached) > 0 {
		return cached, nil
	}

	c.mu.Lock()
	if cached := c.entries[appName]; len(cached) > 0 {
		c.mu.Unlock()
		return cached, nil
	}
	f, ok := c.inflight[appName]
	if !ok {
		f = &flight{done: make(chan struct{})}
		c.inflight[appName] = f
		go c.run(context.WithoutCancel(ctx), appName, f, fetch)
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		return f.instances, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *instanceCache) run(ctx context.Context, appName string, f *flight, fetch fetchFunc) {
	instances, cacheable, err := fetch(ctx)

	c.mu.Lock()
	if err == nil && cacheable && len(instances) > 0 {
		c.entries[appName] = instances
	}
	delete(c.inflight, appName)
	c.mu.Unlock()

	f.instances, f.err = instances, err
	close(f.done)
}

func (c *instanceCache) invalidate(appName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, appName)
}

func (c *instanceCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]Instance)
}
