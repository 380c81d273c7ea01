package repository

import (
	"context"
	"errors"
	"sync"
)

// TokenKey is the storage key of the persisted bearer token.
const TokenKey = "access_token"

var ErrStorageClosed = errors.New("storage is closed")

// LocalStorage is the persisted client state: a flat string key/value space.
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Close() error
}

// MemoryStorage keeps items for the lifetime of the process.
type MemoryStorage struct {
	mu     sync.RWMutex
	items  map[string]string
	closed bool
}

var _ LocalStorage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (s *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrStorageClosed
	}
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStorageClosed
	}
	s.items[key] = value
	return nil
}

func (s *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStorageClosed
	}
	delete(s.items, key)
	return nil
}

func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
