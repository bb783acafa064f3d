// Package store persists budgets, the last rate selection and the last form
// inputs as JSON blobs in a key-value backend.
package store

import (
	"context"
	"sync"
)

// Keys of the three independent records.
const (
	KeyBudgets    = "pixOuParcela_orcamentos"
	KeyConfig     = "pixOuParcela_configuracao"
	KeyLastInputs = "pixOuParcela_ultimosInputs"
)

// KV is a durable mapping from string keys to string values.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Memory is an in-process KV. Data is lost when the process exits.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set replaces the value stored under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
