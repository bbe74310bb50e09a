package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/capsule/pkg/core"
)

// Backend names accepted by WithBackend.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// options holds the internal configuration for the capsule store.
type options struct {
	storage core.Storage
	logger  *slog.Logger
	backend string
	slot    string
	clock   func() time.Time
	config  map[string]interface{}
}

// Option defines a functional option for configuring the capsule store.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		backend: BackendFS,
		slot:    core.DefaultSlot,
		config:  make(map[string]interface{}),
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithLogger sets the logger for the store and its storage backend.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage allows injecting a custom storage (e.g. memory fake).
// If provided, the backend selection is skipped.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithBackend selects the storage backend by name ("fs", "sqlite", "redis", "memory").
// Defaults to "fs".
func WithBackend(name string) Option {
	return func(o *options) {
		if name != "" {
			o.backend = name
		}
	}
}

// WithSlot sets the key under which the collection is stored.
func WithSlot(key string) Option {
	return func(o *options) {
		if key != "" {
			o.slot = key
		}
	}
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithMustExist ensures the store directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithReadOnly makes every write fail with core.ErrReadOnly (fs backend).
// The dev sandbox is bypassed since nothing can be modified.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true), store paths outside the temp dir are re-rooted into it.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithSQLitePath overrides the database file of the sqlite backend.
// Relative paths are resolved against the store directory.
func WithSQLitePath(path string) Option {
	return func(o *options) {
		o.config["sqlite_path"] = path
	}
}

// WithRedis configures the redis backend.
func WithRedis(addr string, db int, prefix string) Option {
	return func(o *options) {
		o.config["redis_addr"] = addr
		o.config["redis_db"] = db
		o.config["redis_prefix"] = prefix
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures,
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}
