package pdata

import (
	"context"
	"sync"
	"time"
)

// Store persists the data of holders between sessions.
// Stores bridge pdata with external storage (databases, files, services).
type Store interface {
	// Name returns a unique identifier for this store (for logging/debugging).
	Name() string

	// Load returns the container saved under id.
	// Returns nil (not error) if nothing is saved under id.
	Load(ctx context.Context, id string) (Container, error)

	// Save stores c under id, replacing any previous container.
	Save(ctx context.Context, id string, c Container) error

	// Delete removes the container saved under id. Deleting a missing id is
	// not an error.
	Delete(ctx context.Context, id string) error
}

// StoreOptions configures how the manager uses a store.
type StoreOptions struct {
	// Timeout is the maximum time to wait for a Load or Save call.
	// Default: 5 seconds.
	Timeout time.Duration

	// Required indicates the store must succeed for session creation.
	// If true, NewSession returns an error if loading fails.
	// If false, failures are logged but session creation continues.
	// Default: false.
	Required bool
}

// defaultStoreOptions returns sensible defaults.
func defaultStoreOptions() StoreOptions {
	return StoreOptions{
		Timeout: 5 * time.Second,
	}
}

// StoreOption configures a store.
type StoreOption func(*StoreOptions)

// WithTimeout sets the timeout of store calls.
func WithTimeout(d time.Duration) StoreOption {
	return func(o *StoreOptions) {
		o.Timeout = d
	}
}

// WithRequired marks the store as required for session creation.
// If loading from a required store fails during NewSession, the session creation fails.
func WithRequired(required bool) StoreOption {
	return func(o *StoreOptions) {
		o.Required = required
	}
}

// MemoryStore is a Store keeping NBT-encoded containers in memory. It is
// useful for tests and servers that do not need data to outlive the process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// Name implements Store.
func (s *MemoryStore) Name() string { return "memory" }

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, id string) (Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	b, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return DecodeNBT(b)
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, id string, c Container) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := c.EncodeNBT()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[id] = b
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of saved containers.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
