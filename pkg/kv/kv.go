// Package kv exposes the small key/value primitive surface the content
// repositories are written against: hashes, sets, sorted sets and scalar
// keys. Two implementations are provided: a durable Pebble-backed client
// and an in-process memory client used by tests and tooling.
package kv

import (
	"context"
	"errors"
	"time"

	"foliodb/pkg/logger"
)

// ErrNotConfigured is returned by callers that were handed a nil client and
// ignored the sentinel. It is the only error the storage layer is expected
// to raise for configuration absence.
var ErrNotConfigured = errors.New("kv store not configured")

// PingTimeout bounds the connectivity probe; callers must not hang on a
// down store.
const PingTimeout = 3 * time.Second

// Client is the primitive surface shared by all repositories.
type Client interface {
	// Hash operations: field -> string value under one hash key.
	HGet(key, field string) (string, bool, error)
	HGetAll(key string) (map[string]string, error)
	HSet(key, field, value string) error
	HDel(key string, fields ...string) error

	// Set operations: unordered unique string members.
	SAdd(key string, members ...string) error
	SRem(key string, members ...string) error
	SMembers(key string) ([]string, error)
	SIsMember(key, member string) (bool, error)

	// Sorted-set operations: members ordered by an int64 score.
	ZAdd(key string, score int64, member string) error
	ZRem(key string, members ...string) error
	// ZRevRange returns members in descending score order for the inclusive
	// index window [start, stop]; stop == -1 means "through the end".
	ZRevRange(key string, start, stop int) ([]string, error)

	// Scalar operations.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Del(keys ...string) error
	Expire(key string, ttl time.Duration) error

	// Keys returns all scalar keys with the given prefix.
	Keys(prefix string) ([]string, error)
	// SetKeys returns all set keys with the given prefix.
	SetKeys(prefix string) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}

// FromConfig constructs the process-wide client from a store path. It never
// panics: a missing path or a failed open yields a nil sentinel, and every
// repository call on a nil client reports ErrNotConfigured.
func FromConfig(path string) Client {
	if path == "" {
		logger.Warn("kv_not_configured")
		return nil
	}
	c, err := OpenPebble(path)
	if err != nil {
		logger.Error("kv_open_failed", "path", path, "error", err)
		return nil
	}
	return c
}
