package eureka

import (
	"math/rand/v2"
	"sync/atomic"
)

// DiscoveryStrategy picks one instance from a resolved list.
type DiscoveryStrategy interface {
	Select(instances []Instance) (Instance, error)
}

// StrategyFunc adapts a function to DiscoveryStrategy.
type StrategyFunc func(instances []Instance) (Instance, error)

// Select calls f.
func (f StrategyFunc) Select(instances []Instance) (Instance, error) {
	return f(instances)
}

// RandomStrategy picks uniformly at random from the runtime-seeded global
// source, which is safe for concurrent use. It is the default.
type RandomStrategy struct{}

// NewRandomStrategy returns a RandomStrategy.
func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{}
}

// Select returns a uniformly chosen element, or ErrNoInstances.
func (s *RandomStrategy) Select(instances []Instance) (Instance, error) {
	if len(instances) == 0 {
		return Instance{}, ErrNoInstances
	}
	return instances[rand.IntN(len(instances))], nil
}

// RoundRobinStrategy cycles through the list in order. One counter is shared
// across all applications.
type RoundRobinStrategy struct {
	next atomic.Uint64
}

// NewRoundRobinStrategy returns a RoundRobinStrategy starting at index 0.
func NewRoundRobinStrategy() *RoundRobinStrategy {
	return &RoundRobinStrategy{}
}

// Select returns the next element in rotation, or ErrNoInstances.
func (s *RoundRobinStrategy) Select(instances []Instance) (Instance, error) {
	if len(instances) == 0 {
		return Instance{}, ErrNoInstances
	}
	n := s.next.Add(1) - 1
	return instances[n%uint64(len(instances))], nil
}
