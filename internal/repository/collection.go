package repository

import (
	"context"
	"sync"

	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

// collection caches one record collection in memory and mirrors every
// mutation to the record store. The in-memory state keeps a mutation even
// when the durable save fails; the caller surfaces the error once and the
// next successful save writes the merged state.
type collection[T any] struct {
	store *recordstore.Store
	key   string
	seed  []T

	mu      sync.Mutex
	records []T
	loaded  bool
}

func newCollection[T any](store *recordstore.Store, key string, seed []T) *collection[T] {
	return &collection[T]{store: store, key: key, seed: seed}
}

// ensureLoaded must be called with the lock held.
func (c *collection[T]) ensureLoaded(ctx context.Context) {
	if c.loaded {
		return
	}
	c.records = recordstore.Load(ctx, c.store, c.key, c.seed)
	c.loaded = true
}

// snapshot returns a copy of the current records.
func (c *collection[T]) snapshot(ctx context.Context) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)
	out := make([]T, len(c.records))
	copy(out, c.records)
	return out
}

// update applies fn to the collection and persists the result wholesale.
func (c *collection[T]) update(ctx context.Context, fn func([]T) []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)
	c.records = fn(c.records)
	return recordstore.Save(ctx, c.store, c.key, c.records)
}

// Collection keys; the store prepends the deployment namespace.
const (
	keyAttendance    = "attendance"
	keyNotes         = "notes"
	keyMetrics       = "metrics"
	keyRequests      = "requests"
	keyReports       = "reports"
	keyExports       = "exports"
	keyConfig        = "config"
	keyStudents      = "students"
	keyClasses       = "classes"
	keySessions      = "sessions"
	keyPhotos        = "photos"
	keyUsers         = "users"
	keyRefreshTokens = "refresh_tokens"
)
