package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// JSONStore keeps values of type V as JSON strings under "<prefix>:<name>".
// An empty prefix stores bare names.
type JSONStore[V any] struct {
	client *Client
	prefix string
}

// NewJSONStore binds a store to client and prefix.
func NewJSONStore[V any](client *Client, prefix string) *JSONStore[V] {
	return &JSONStore[V]{client: client, prefix: prefix}
}

// Key returns the Redis key used for name.
func (s *JSONStore[V]) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + ":" + name
}

// Get decodes the value stored for name. ok is false when nothing is stored.
func (s *JSONStore[V]) Get(ctx context.Context, name string) (v V, ok bool, err error) {
	raw, err := s.client.Get(ctx, s.Key(name))
	switch {
	case errors.Is(err, ErrNotFound):
		return v, false, nil
	case err != nil:
		return v, false, fmt.Errorf("redis get %s: %w", s.Key(name), err)
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, false, fmt.Errorf("redis decode %s: %w", s.Key(name), err)
	}
	return v, true, nil
}

// Put replaces the value for name. A zero ttl keeps it until deleted.
func (s *JSONStore[V]) Put(ctx context.Context, name string, v V, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", s.Key(name), err)
	}
	if err := s.client.Set(ctx, s.Key(name), data, ttl); err != nil {
		return fmt.Errorf("redis put %s: %w", s.Key(name), err)
	}
	return nil
}

// Delete removes the value for name. Deleting a missing name is not an error.
func (s *JSONStore[V]) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.Key(name)); err != nil {
		return fmt.Errorf("redis delete %s: %w", s.Key(name), err)
	}
	return nil
}
