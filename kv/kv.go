// Package kv is the small key-value layer the session state persists through.
// It is the storefront's equivalent of browser localStorage: a handful of
// short string values that must survive a restart when a durable backend is
// configured.
package kv

import (
	"context"
	"time"
)

// Store reads and writes string values by key.
//
// Get on a key that does not exist (or has expired) returns ("", nil);
// callers treat absence as a normal condition, not an error. Delete removes
// every named key in one call so paired keys can be cleared together.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
