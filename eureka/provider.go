package eureka

import (
	"context"
	"strconv"
	"sync"
)

// InstanceProvider supplies instances when the registry cannot. Results are
// returned to callers as-is and never cached.
type InstanceProvider interface {
	Instances(ctx context.Context, appName string) ([]Instance, error)
}

// ProviderFunc adapts a function to InstanceProvider.
type ProviderFunc func(ctx context.Context, appName string) ([]Instance, error)

// Instances calls f.
func (f ProviderFunc) Instances(ctx context.Context, appName string) ([]Instance, error) {
	return f(ctx, appName)
}

// StaticEndpoint is a fixed instance declared in configuration.
type StaticEndpoint struct {
	App      string         `mapstructure:"app" json:"app"`
	HostName string         `mapstructure:"host_name" json:"hostName"`
	IP       string         `mapstructure:"ip" json:"ip"`
	Port     int            `mapstructure:"port" json:"port"`
	Secure   bool           `mapstructure:"secure" json:"secure"`
	Metadata map[string]any `mapstructure:"metadata" json:"metadata"`
}

// StaticProvider serves instances from an in-memory list. Useful for local
// development and as a last-resort fallback.
type StaticProvider struct {
	mu        sync.RWMutex
	instances map[string][]Instance
}

// NewStaticProvider builds a StaticProvider from endpoints, grouped by App
// in the order given.
func NewStaticProvider(endpoints []StaticEndpoint) *StaticProvider {
	p := &StaticProvider{instances: make(map[string][]Instance)}
	for _, ep := range endpoints {
		p.Add(ep.App, ep.instance())
	}
	return p
}

// Add appends an instance for appName.
func (p *StaticProvider) Add(appName string, inst Instance) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.instances[appName] = append(p.instances[appName], inst)
}

// Instances returns a copy of the instances for appName. An unknown name
// yields an empty list and no error.
func (p *StaticProvider) Instances(_ context.Context, appName string) ([]Instance, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	list := p.instances[appName]
	out := make([]Instance, len(list))
	copy(out, list)
	return out, nil
}

func (ep StaticEndpoint) instance() Instance {
	host := ep.HostName
	if host == "" {
		host = ep.IP
	}
	port := &InstancePort{Value: strconv.Itoa(ep.Port), Enabled: !ep.Secure}
	inst := Instance{
		InstanceID: host + ":" + ep.App + ":" + port.Value,
		HostName:   host,
		App:        ep.App,
		IPAddr:     ep.IP,
		Status:     DefaultStatus,
		VipAddress: ep.App,
		Metadata:   ep.Metadata,
	}
	if ep.Secure {
		inst.SecurePort = &InstancePort{Value: port.Value, Enabled: true}
		port.Enabled = false
	}
	inst.Port = port
	return inst
}

// ChainProvider asks each provider in turn and returns the first non-empty
// result. Errors are skipped; if every provider fails, the last error is
// returned.
func ChainProvider(providers ...InstanceProvider) InstanceProvider {
	return ProviderFunc(func(ctx context.Context, appName string) ([]Instance, error) {
		var lastErr error
		for _, p := range providers {
			if p == nil {
				continue
			}
			instances, err := p.Instances(ctx, appName)
			if err != nil {
				lastErr = err
				continue
			}
			if len(instances) > 0 {
				return instances, nil
			}
		}
		return nil, lastErr
	})
}
