// Package dedupe guards repository ingestion so the same repository is never
// analyzed twice concurrently.
package dedupe

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrBusy is returned when the guard is at capacity.
var ErrBusy = errors.New("too many ingestions in flight")

// Guard tracks keys that are currently being processed.
type Guard interface {
	// SeenAndRecord atomically checks whether key is in flight and claims it if not.
	// Returns true when key was already claimed. ErrBusy is returned when the
	// guard is full and key could not be claimed.
	SeenAndRecord(ctx context.Context, key string) (bool, error)

	// Unrecord releases key once processing finished or failed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inFlightGuard implements Guard with a map.
// For bounded mode (maxSize > 0) claims beyond maxSize are refused.
// For unbounded mode (maxSize <= 0) every new key is accepted.
type inFlightGuard struct {
	mu      sync.Mutex
	claimed map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewGuard creates an in-flight guard with configuration options.
func NewGuard(opts ...Option) Guard {
	g := &inFlightGuard{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.claimed = make(map[string]struct{})
	return g
}

func (g *inFlightGuard) SeenAndRecord(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.claimed[key]; ok {
		return true, nil
	}
	if g.maxSize > 0 && len(g.claimed) >= g.maxSize {
		return false, ErrBusy
	}
	g.claimed[key] = struct{}{}
	g.size.Add(1)
	return false, nil
}

func (g *inFlightGuard) Unrecord(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.claimed[key]; ok {
		delete(g.claimed, key)
		g.size.Add(-1)
	}
}

// Size returns the number of keys currently claimed.
func (g *inFlightGuard) Size() int64 {
	return g.size.Load()
}
