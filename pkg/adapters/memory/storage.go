// Package memory provides a map-backed core.Storage.
// It is the in-memory fake used by tests and by read-only previews.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/capsule/pkg/core"
)

// Storage keeps slots in a map. Failures can be injected per operation.
type Storage struct {
	mu     sync.RWMutex
	slots  map[string]string
	writes int

	getErr error
	setErr error
}

// New creates an empty Storage.
func New() *Storage {
	return &Storage{slots: make(map[string]string)}
}

// NewWithSlot creates a Storage with one pre-populated slot.
func NewWithSlot(key, value string) *Storage {
	s := New()
	s.slots[key] = value
	return s
}

func (s *Storage) Initialize(ctx context.Context) error { return nil }

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.slots[key]
	return v, ok, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.slots[key] = value
	s.writes++
	return nil
}

// FailGet makes every Get return err. Pass nil to clear.
func (s *Storage) FailGet(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// FailSet makes every Set return err. Pass nil to clear.
func (s *Storage) FailSet(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
}

// Raw returns the stored text of a slot without going through Get failures.
func (s *Storage) Raw(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.slots[key]
	return v, ok
}

// Writes returns the number of successful Set calls.
func (s *Storage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{"slots": len(s.slots), "writes": s.writes}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "memory"
}

var _ core.Storage = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
