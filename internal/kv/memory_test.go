// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package kv

import (
	"errors"
	"testing"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	s := NewMemoryStore()

	if _, err := s.Get("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrKeyNotFound", err)
	}

	if err := s.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get("k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want %q", got, "v")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get("k"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	in := []byte("original")
	if err := s.Set("k", in); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Mutating the caller's slice or the returned slice must not change
	// the stored value.
	in[0] = 'X'
	out, _ := s.Get("k")
	out[0] = 'Y'

	got, _ := s.Get("k")
	if string(got) != "original" {
		t.Errorf("stored value mutated to %q", got)
	}
}

func TestMemoryStore_ErrorInjection(t *testing.T) {
	s := NewMemoryStore()
	boom := errors.New("boom")

	s.FailSet = boom
	if err := s.Set("k", []byte("v")); !errors.Is(err, boom) {
		t.Errorf("Set() error = %v, want injected", err)
	}
	s.FailSet = nil

	s.FailGet = boom
	if _, err := s.Get("k"); !errors.Is(err, boom) {
		t.Errorf("Get() error = %v, want injected", err)
	}
}
