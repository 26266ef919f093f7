package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/cartstore-demo/internal/port"
)

// memoryRepository keeps entries in process memory; nothing survives a restart.
type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemory() port.KeyValueStore {
	return &memoryRepository{
		entries: make(map[string]string),
	}
}

func (r *memoryRepository) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.entries[key]

	return value, ok, nil
}

func (r *memoryRepository) Set(_ context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = value

	return nil
}

func (r *memoryRepository) Delete(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[key]
	delete(r.entries, key)

	return ok, nil
}

func (r *memoryRepository) Ping(context.Context) error {
	return nil
}
