package core

import "context"

// DefaultSlot is the key under which the collection is stored.
const DefaultSlot = "capsules"

// Storage defines the contract for a local key-value store holding text slots.
// Adhering to this interface keeps the core independent of the underlying
// storage mechanism (filesystem, SQLite, Redis, memory).
type Storage interface {
	// Get reads a slot. found is false when the slot has never been written.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set replaces the value of a slot.
	Set(ctx context.Context, key, value string) error

	// Initialize ensures the underlying storage is ready (e.g., create directories, schema migration).
	Initialize(ctx context.Context) error
}

// Watchable defines an interface for storages that can report external changes to a slot.
type Watchable interface {
	// Watch returns a channel of events for the slot. The channel is closed when ctx is done.
	Watch(ctx context.Context, key string) (<-chan Event, error)
}

// Closer is implemented by storages holding connections (SQLite, Redis).
type Closer interface {
	Close() error
}

// Persister is the Persistence Adapter contract: it maps a whole Collection
// to and from a single slot.
type Persister interface {
	// Load never fails: absent, unreadable or malformed data yields an empty collection.
	Load(ctx context.Context) Collection

	// Save rewrites the whole slot.
	Save(ctx context.Context, c Collection) error
}
