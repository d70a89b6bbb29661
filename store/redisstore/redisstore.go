// Package redisstore adapts a Redis client to the synchronous key-value
// contract the credential store expects. Useful for kiosk and companion-app
// deployments where the session must survive process restarts and live on a
// shared host.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a Redis-backed key-value store. Keys are namespaced with a
// prefix so one Redis instance can serve several clients.
type Store struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// Option customizes Store construction.
type Option func(*Store)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL expires stored values after the given duration. Zero means no
// expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithTimeout bounds each Redis round trip. The key-value contract is
// synchronous, so every call runs under its own deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// New returns a store over the given client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client:  client,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the value for key, reporting presence. redis.Nil maps to
// absent; transport errors also read as absent so a flaky Redis degrades to
// an anonymous session rather than an error.
func (s *Store) Get(key string) (string, bool) {
	ctx, cancel := s.operationContext()
	defer cancel()

	result, err := s.client.Get(ctx, s.prefixed(key)).Result()
	if err != nil {
		return "", false
	}
	return result, true
}

// Set stores value under key.
func (s *Store) Set(key, value string) {
	ctx, cancel := s.operationContext()
	defer cancel()

	s.client.Set(ctx, s.prefixed(key), value, s.ttl)
}

// Remove deletes key.
func (s *Store) Remove(key string) {
	ctx, cancel := s.operationContext()
	defer cancel()

	s.client.Del(ctx, s.prefixed(key))
}

// Health checks the Redis connection.
func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// IsAbsent reports whether err is the Redis missing-key reply.
func IsAbsent(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) prefixed(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *Store) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
