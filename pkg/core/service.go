package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service is the capsule list manager. It owns the in-memory collection and
// writes it through to its Persister after every successful mutation.
type Service struct {
	mu        sync.RWMutex
	persister Persister
	items     Collection
	logger    *slog.Logger
	clock     func() time.Time
	newID     func() string

	lastPersistErr error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock replaces time.Now as the source of creation timestamps.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithServiceLogger sets the logger used for swallowed persistence errors.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator replaces the UUID generator for in-memory capsule IDs.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a Service and loads the collection once from p.
func NewService(ctx context.Context, p Persister, opts ...ServiceOption) *Service {
	s := &Service{
		persister: p,
		logger:    slog.Default(),
		clock:     time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.withIDs(p.Load(ctx))
	return s
}

// Add validates the input, appends a new capsule and persists the collection.
// The message is kept as typed; the unlock date is trimmed.
func (s *Service) Add(ctx context.Context, message, unlockDate string) (Capsule, error) {
	if strings.TrimSpace(message) == "" {
		return Capsule{}, &ValidationError{Field: "message"}
	}
	if strings.TrimSpace(unlockDate) == "" {
		return Capsule{}, &ValidationError{Field: "unlockDate"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := Capsule{
		ID:         s.newID(),
		Message:    message,
		UnlockDate: strings.TrimSpace(unlockDate),
		CreatedAt:  s.clock().UTC().Format(CreatedAtLayout),
	}

	updated := make(Collection, 0, len(s.items)+1)
	updated = append(updated, s.items...)
	s.items = append(updated, c)
	s.persist(ctx)

	return c, nil
}

// DeleteAt removes the capsule at the 0-based display position.
// An out-of-range position returns ErrOutOfRange and changes nothing.
func (s *Service) DeleteAt(ctx context.Context, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 0 || position >= len(s.items) {
		return fmt.Errorf("%w: %d (have %d)", ErrOutOfRange, position, len(s.items))
	}
	s.removeLocked(ctx, position)
	return nil
}

// DeleteByID removes the capsule with the given in-memory ID.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.items {
		if c.ID == id {
			s.removeLocked(ctx, i)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Service) removeLocked(ctx context.Context, position int) {
	updated := make(Collection, 0, len(s.items)-1)
	updated = append(updated, s.items[:position]...)
	updated = append(updated, s.items[position+1:]...)
	s.items = updated
	s.persist(ctx)
}

// persist writes the collection through. Failures are logged and recorded,
// never returned: the in-memory collection stays authoritative.
func (s *Service) persist(ctx context.Context) {
	if err := s.persister.Save(ctx, s.items); err != nil {
		s.logger.Error("error saving capsules", "error", err)
		s.lastPersistErr = err
		return
	}
	s.lastPersistErr = nil
}

// List returns a copy of the collection in display order.
func (s *Service) List() Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Clone()
}

// Len returns the number of capsules.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// LastPersistError returns the error of the most recent failed save,
// or nil if the last save succeeded.
func (s *Service) LastPersistError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPersistErr
}

// Reload replaces the in-memory collection with the persisted one.
// It is used when the slot was changed outside of this Service.
//
// The lock is held across the load; mutations never interleave with it.
func (s *Service) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.withIDs(s.persister.Load(ctx))
}

// Watch observes external changes of the slot if the storage supports it.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	a, ok := s.persister.(*Adapter)
	if !ok {
		return nil, fmt.Errorf("persister does not support watching")
	}
	w, ok := a.Storage().(Watchable)
	if !ok {
		return nil, fmt.Errorf("storage does not support watching")
	}
	return w.Watch(ctx, a.Key())
}

func (s *Service) withIDs(c Collection) Collection {
	out := make(Collection, len(c))
	for i, capsule := range c {
		if capsule.ID == "" {
			capsule.ID = s.newID()
		}
		out[i] = capsule
	}
	return out
}

// Close releases the storage connection, if the storage holds one.
func (s *Service) Close() error {
	a, ok := s.persister.(*Adapter)
	if !ok {
		return nil
	}
	if c, ok := a.Storage().(Closer); ok {
		return c.Close()
	}
	return nil
}
