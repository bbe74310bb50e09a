package capsule

import (
	"log/slog"
	"time"

	"github.com/aretw0/capsule/internal/platform"
	"github.com/aretw0/capsule/pkg/core"
)

// --- Types ---

// Capsule is a public alias for the core capsule record.
type Capsule = core.Capsule

// Service is a public alias for the capsule list manager.
type Service = core.Service

// --- Configuration ---

// Option defines a functional option for configuring the store.
type Option = platform.Option

// WithLogger sets the logger for the service and its storage.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage allows injecting a custom storage backend.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithBackend selects a storage backend by name ("fs", "sqlite", "redis", "memory").
func WithBackend(name string) Option {
	return platform.WithBackend(name)
}

// WithSlot sets the storage key of the collection.
func WithSlot(key string) Option {
	return platform.WithSlot(key)
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// WithMustExist ensures the store directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly blocks writes to the storage.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety toggles the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithSQLitePath overrides the database file of the sqlite backend.
func WithSQLitePath(path string) Option {
	return platform.WithSQLitePath(path)
}

// WithRedis configures the redis backend.
func WithRedis(addr string, db int, prefix string) Option {
	return platform.WithRedis(addr, db, prefix)
}

// --- Factory ---

// New opens the store at dir and loads its capsules.
func New(dir string, opts ...Option) (*core.Service, error) {
	return platform.New(dir, opts...)
}

// --- Utils ---

// IsUnlocked reports whether c may be shown at now.
func IsUnlocked(c Capsule, now time.Time) bool {
	return core.IsUnlocked(c, now)
}

// FindStoreRoot looks upwards from startDir for a .capsule directory.
func FindStoreRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// DefaultDir returns the per-user store directory.
func DefaultDir() string {
	return platform.DefaultDir()
}
