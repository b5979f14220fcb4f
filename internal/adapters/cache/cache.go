// Package cache stores model-generated narratives so identical requests are
// answered without another model round trip.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is a string key/value store with per-entry TTL.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value for ttl; a non-positive ttl keeps it until evicted.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

const keyPrefix = "hackwreck:"

// Key derives a stable cache key from a namespace and case-folded parts.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		h.Write([]byte{0})
	}
	return keyPrefix + namespace + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}
