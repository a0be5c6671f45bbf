// Package ratelimit limits the rate of write requests per caller with token buckets.
package ratelimit

import (
	"context"

	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
)

// Store holds one token bucket per key.
type Store interface {
	// Allow takes one token from key's bucket and reports whether there was one.
	Allow(ctx context.Context, key string) (bool, error)
}

// New returns the store selected by conf.RateLimit.Store.
func New(conf *core.Config) (Store, error) {
	switch conf.RateLimit.Store {
	case "", "memory":
		return NewMemoryStore(conf.RateLimit.RPS, conf.RateLimit.Burst), nil
	case "redis":
		return NewRedisStore(conf.Redis, conf.RateLimit.RPS, conf.RateLimit.Burst), nil
	}
	return nil, errors.Errorf("unknown rate limit store %q", conf.RateLimit.Store)
}
