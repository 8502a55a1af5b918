// Package cache stores resolved token attributes (symbols, seen pools)
// between RPC lookups.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a string key/value cache. A miss is ("", false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// DefaultSize is the default LRU capacity.
const DefaultSize = 10000

// LRU is an in-process cache with a bounded size and optional TTL.
type LRU struct {
	lru *expirable.LRU[string, string]
}

var _ Cache = (*LRU)(nil)

// NewLRU creates an LRU cache. size <= 0 uses DefaultSize; ttl 0 disables expiry.
func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = DefaultSize
	}
	return &LRU{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

// Get returns the cached value for key.
func (c *LRU) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.lru.Get(key)
	return v, ok, nil
}

// Set stores value under key.
func (c *LRU) Set(_ context.Context, key, value string) error {
	c.lru.Add(key, value)
	return nil
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	return c.lru.Len()
}
