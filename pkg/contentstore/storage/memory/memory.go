package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/edupath/content-store/pkg/contentstore"
)

type blob struct {
	data []byte
	opts contentstore.PutOptions
}

// Store is an in-memory implementation of the contentstore.BlobStore
// interface, used in tests and local development.
type Store struct {
	mu         sync.RWMutex
	containers map[string]map[string]blob

	// FailPut, when set, is consulted before every Put and lets tests
	// inject per-key write failures.
	FailPut func(container, key string) error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{containers: make(map[string]map[string]blob)}
}

func (s *Store) EnsureContainer(ctx context.Context, container string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.containers[container]; !ok {
		s.containers[container] = make(map[string]blob)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, container, key string, data []byte, opts contentstore.PutOptions) error {
	if s.FailPut != nil {
		if err := s.FailPut(container, key); err != nil {
			return &contentstore.StoreError{Container: container, Key: key, Op: "put", Err: err}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.containers[container]
	if !ok {
		c = make(map[string]blob)
		s.containers[container] = c
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	c[key] = blob{data: copied, opts: opts}
	return nil
}

func (s *Store) Get(ctx context.Context, container, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.containers[container][key]
	if !ok {
		return nil, &contentstore.StoreError{Container: container, Key: key, Op: "get", Err: contentstore.ErrNotFound}
	}
	copied := make([]byte, len(b.data))
	copy(copied, b.data)
	return copied, nil
}

func (s *Store) Delete(ctx context.Context, container, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.containers[container][key]; !ok {
		return false, nil
	}
	delete(s.containers[container], key)
	return true, nil
}

func (s *Store) ListKeys(ctx context.Context, container, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.containers[container] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Options returns the write-time options recorded for a blob, for asserting
// cache-control and metadata in tests.
func (s *Store) Options(container, key string) (contentstore.PutOptions, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.containers[container][key]
	return b.opts, ok
}
