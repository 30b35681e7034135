// Package recordstore persists whole record collections as JSON documents
// under namespaced keys. Collections are replaced wholesale on save; merging
// happens in memory through Upsert before the caller saves.
package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned by backends when a key has never been written.
var ErrNotFound = errors.New("recordstore: key not found")

// Backend abstracts durable storage of raw collection payloads.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// SaveObserver receives the un-namespaced key and elapsed time of every
// backend save attempt, successful or not.
type SaveObserver func(key string, elapsed time.Duration)

// Store namespaces keys and handles serialization on top of a backend.
type Store struct {
	backend   Backend
	namespace string
	logger    *zap.Logger
	observer  SaveObserver
}

// New constructs a store over the given backend.
func New(backend Backend, namespace string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, namespace: namespace, logger: logger}
}

// SetSaveObserver installs a hook for save timings, typically a metrics
// collector. Passing nil removes it.
func (s *Store) SetSaveObserver(observer SaveObserver) {
	s.observer = observer
}

func (s *Store) fullKey(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

// Load returns the persisted collection under key, or fallback when the key
// was never written or its payload cannot be decoded. It never fails the
// caller; load and parse problems are logged and treated as absence.
func Load[T any](ctx context.Context, s *Store, key string, fallback []T) []T {
	raw, err := s.backend.Load(ctx, s.fullKey(key))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("record load failed, using fallback",
				zap.String("key", key), zap.Error(err))
		}
		return fallback
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		s.logger.Warn("record payload unparseable, using fallback",
			zap.String("key", key), zap.Error(err))
		return fallback
	}
	return records
}

// Save serializes the full collection and replaces any prior value under key.
func Save[T any](ctx context.Context, s *Store, key string, records []T) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", key, err)
	}
	start := time.Now()
	err = s.backend.Save(ctx, s.fullKey(key), payload)
	if s.observer != nil {
		s.observer(key, time.Since(start))
	}
	if err != nil {
		s.logger.Error("record save failed",
			zap.String("key", key), zap.Int("records", len(records)), zap.Error(err))
		return fmt.Errorf("save collection %s: %w", key, err)
	}
	return nil
}

// Upsert merges incoming records into the collection: a record whose key
// matches an existing one (per match) replaces it in place, otherwise it is
// appended. The result preserves at most one record per key.
func Upsert[T any](records []T, incoming []T, match func(a, b T) bool) []T {
	for _, in := range incoming {
		replaced := false
		for i := range records {
			if match(records[i], in) {
				records[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			records = append(records, in)
		}
	}
	return records
}
