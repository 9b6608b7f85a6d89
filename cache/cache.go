// Package cache stores successful insight and lookup responses so repeated
// questions skip the language model.
//
// Entries are opaque byte slices grouped by namespace. Two stores exist: an
// RWMutex-guarded map for a single process and a SQLite file for reuse
// across runs.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when no live entry exists.
var ErrNotFound = errors.New("cache: entry not found")

// Namespaces used by the insight client.
const (
	NamespaceContext = "context"
	NamespaceLookup  = "lookup"
)

// Store is the cache contract shared by every backend.
type Store interface {
	// Get returns the value stored under (namespace, key) or ErrNotFound.
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	// Put stores value, replacing any previous entry.
	Put(ctx context.Context, namespace, key string, value []byte) error
	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, namespace, key string) error
	// Close releases backend resources.
	Close() error
}

// Options configure every store.
type Options struct {
	// TTL bounds entry age. Zero keeps entries forever.
	TTL time.Duration
	// Now is the clock used for expiry; tests replace it.
	Now func() time.Time
}

func defaultOptions() Options {
	return Options{Now: time.Now}
}

func (o Options) expired(created time.Time) bool {
	return o.TTL > 0 && o.Now().Sub(created) > o.TTL
}

// Key joins parts into a normalized cache key: trimmed, lower-cased and
// separated by "|".
func Key(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(norm, "|")
}

// Open builds a store for driver: "memory", "sqlite" (path required) or
// "none"/"" which yields a nil Store and no error.
func Open(driver, path string, optFns ...func(o *Options)) (Store, error) {
	switch driver {
	case "", "none":
		return nil, nil
	case "memory":
		return NewInMemoryStore(optFns...), nil
	case "sqlite":
		if path == "" {
			return nil, fmt.Errorf("cache: sqlite driver requires a path")
		}
		return NewSQLiteStore(path, optFns...)
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", driver)
	}
}
