// Package storage persists the task collection in a single string-keyed slot.
//
// A Slot is the key-value contract of browser local storage: one string value
// per key, overwritten whole on every write. Backends differ only in where the
// string lives.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"taskflow/internal/config"
)

// ErrWrite marks a failed save. There is no alternate path, so callers
// surface it as a failure of the operation that triggered the save.
var ErrWrite = errors.New("persistence write failed")

type Slot interface {
	// Get returns the value under key. ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// MemorySlot keeps values in process memory.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: map[string]string{}}
}

func (s *MemorySlot) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemorySlot) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemorySlot) Close() error { return nil }

// Open builds the slot selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case config.BackendMemory:
		return NewMemorySlot(), nil
	case config.BackendFile, "":
		fs, err := NewFileSlot(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.BackendSQLite:
		db, err := OpenSQLite(ctx, filepath.Join(cfg.DataDir, "taskflow.db"))
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.BackendPostgres:
		db, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
