/*
Package legacy moves data between the old whole-collection key/value store
and the per-entity repositories.

PURPOSE:
  The previous back office kept one JSON blob per collection under a fixed
  key ("employees", "wallet", ...) and rewrote the whole blob on every
  change. Money was a floating point number, sometimes a typed string.
  This package reads those blobs into payroll and finance records, and can
  write the current repositories back in the same shape.

KEY CONCEPTS:
  - BlobStore: load(key) / save(key, value) over whole collections
  - RedisBlobStore: the production key/value store (go-redis)
  - MemoryBlobStore: in-process blobs for tests and dry runs
  - Importer: blob -> repositories, repositories -> blob

LAST WRITE WINS:
  Save overwrites the entire collection. Nothing is merged.

SEE ALSO:
  - records.go: legacy JSON shapes and conversions
  - importer.go: Import / Export
*/
package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// BlobStore persists whole collections as single serialized values.
type BlobStore interface {
	// Load decodes the blob under key into dst. found is false when the key
	// does not exist, in which case dst is left untouched.
	Load(ctx context.Context, key string, dst any) (found bool, err error)
	// Save replaces the blob under key.
	Save(ctx context.Context, key string, v any) error
}

// =============================================================================
// REDIS
// =============================================================================

// RedisBlobStore keeps each collection as a JSON string value.
type RedisBlobStore struct {
	client *redis.Client
	prefix string
}

// NewRedisBlobStore wraps client. prefix is prepended to every key.
func NewRedisBlobStore(client *redis.Client, prefix string) *RedisBlobStore {
	return &RedisBlobStore{client: client, prefix: prefix}
}

func (s *RedisBlobStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisBlobStore) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// =============================================================================
// MEMORY
// =============================================================================

// MemoryBlobStore keeps encoded blobs in a map, so values round-trip
// through JSON exactly as they would through Redis.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

// Put stores a raw JSON document, as the old application would have.
func (s *MemoryBlobStore) Put(key, rawJSON string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = []byte(rawJSON)
}

// Raw returns the stored document under key.
func (s *MemoryBlobStore) Raw(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.blobs[key]
	return string(raw), ok
}

func (s *MemoryBlobStore) Load(_ context.Context, key string, dst any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *MemoryBlobStore) Save(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = raw
	return nil
}

var (
	_ BlobStore = (*RedisBlobStore)(nil)
	_ BlobStore = (*MemoryBlobStore)(nil)
)
