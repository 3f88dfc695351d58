// Package redisprovider serves Eureka instance lists from snapshots kept in
// Redis, so a process can resolve peers while the registry is unreachable.
package redisprovider

import (
	"context"
	"time"

	"github.com/kbukum/eurekaclient/eureka"
	"github.com/kbukum/eurekaclient/redis"
)

// DefaultKeyPrefix is prepended to application names to form keys.
const DefaultKeyPrefix = "eureka:instances"

// Config controls key layout and snapshot lifetime.
type Config struct {
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// Provider implements eureka.InstanceProvider on top of a redis.JSONStore.
type Provider struct {
	store *redis.JSONStore[[]eureka.Instance]
	ttl   time.Duration
}

var _ eureka.InstanceProvider = (*Provider)(nil)

// New creates a Provider reading and writing through client.
func New(client *redis.Client, cfg Config) *Provider {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Provider{
		store: redis.NewJSONStore[[]eureka.Instance](client, prefix),
		ttl:   cfg.TTL,
	}
}

// Instances returns the snapshot for appName. A missing key is an empty
// list, not an error.
func (p *Provider) Instances(ctx context.Context, appName string) ([]eureka.Instance, error) {
	list, _, err := p.store.Get(ctx, appName)
	return list, err
}

// Store replaces the snapshot for appName.
func (p *Provider) Store(ctx context.Context, appName string, instances []eureka.Instance) error {
	return p.store.Put(ctx, appName, instances, p.ttl)
}

// Remove deletes the snapshot for appName.
func (p *Provider) Remove(ctx context.Context, appName string) error {
	return p.store.Delete(ctx, appName)
}
