// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package kv

import "sync"

// MemoryStore is an in-memory Store for tests. It does not survive restarts.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailGet and FailSet, when set, force the corresponding operation to
	// return the error. Used to exercise storage-failure paths in tests.
	FailGet error
	FailSet error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns the value for key, or ErrKeyNotFound.
func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailGet != nil {
		return nil, s.FailGet
	}
	value, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSet != nil {
		return s.FailSet
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
