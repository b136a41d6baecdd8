package kvstore

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Memory is a process-local Store. Updates are serialized; readers see the
// last committed state.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// View implements Store.
func (m *Memory) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memoryTx{committed: m.data})
}

// Update implements Store.
func (m *Memory) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{committed: m.data, staged: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	maps.Copy(m.data, tx.staged)
	return nil
}

type memoryTx struct {
	committed map[string][]byte
	staged    map[string][]byte // nil for read-only transactions
}

func (tx *memoryTx) Get(key string) ([]byte, error) {
	if v, ok := tx.staged[key]; ok {
		return slices.Clone(v), nil
	}
	if v, ok := tx.committed[key]; ok {
		return slices.Clone(v), nil
	}
	return nil, nil
}

func (tx *memoryTx) Put(key string, value []byte) error {
	if tx.staged == nil {
		return ErrReadOnly
	}
	tx.staged[key] = slices.Clone(value)
	return nil
}
