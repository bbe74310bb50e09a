package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Capsules         int    `json:"capsules"`
	Slot             string `json:"slot"`
	StorageType      string `json:"storage_type"`
	LastPersistError string `json:"last_persist_error,omitempty"`
	Storage          any    `json:"storage,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := ServiceState{
		Capsules:    len(s.items),
		StorageType: "unknown",
	}
	if a, ok := s.persister.(*Adapter); ok {
		state.Slot = a.Key()
		// Try to get component type if storage implements introspection.Component
		if comp, ok := a.Storage().(introspection.Component); ok {
			state.StorageType = comp.ComponentType()
		}
		if in, ok := a.Storage().(introspection.Introspectable); ok {
			state.Storage = in.State()
		}
	}
	if s.lastPersistErr != nil {
		state.LastPersistError = s.lastPersistErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
