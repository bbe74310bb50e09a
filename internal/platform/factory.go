package platform

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aretw0/capsule/pkg/adapters/fs"
	"github.com/aretw0/capsule/pkg/adapters/memory"
	"github.com/aretw0/capsule/pkg/adapters/redis"
	"github.com/aretw0/capsule/pkg/adapters/sqlite"
	"github.com/aretw0/capsule/pkg/core"
)

// New opens the storage at dir and returns a Service with the collection loaded.
//
//	svc, err := capsule.New("./.capsule", capsule.WithBackend("sqlite"))
func New(dir string, opts ...Option) (*core.Service, error) {
	o := apply(opts)

	storage, err := initStorage(dir, o)
	if err != nil {
		return nil, err
	}

	svcOpts := []core.ServiceOption{core.WithServiceLogger(o.logger)}
	if o.clock != nil {
		svcOpts = append(svcOpts, core.WithClock(o.clock))
	}

	adapter := core.NewAdapter(storage, o.slot, o.logger)
	return core.NewService(context.Background(), adapter, svcOpts...), nil
}

// Init builds and initializes the configured storage without loading any slot.
func Init(dir string, opts ...Option) (core.Storage, error) {
	return initStorage(dir, apply(opts))
}

func initStorage(dir string, o *options) (core.Storage, error) {
	// 1. Check for injected storage
	if o.storage != nil {
		return o.storage, nil
	}

	// 2. Build based on backend
	var (
		storage core.Storage
		err     error
	)
	switch o.backend {
	case BackendFS:
		storage, err = initFS(dir, o)
	case BackendSQLite:
		storage, err = initSQLite(dir, o)
	case BackendRedis:
		storage = initRedis(o)
	case BackendMemory:
		storage = memory.New()
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownBackend, o.backend)
	}
	if err != nil {
		return nil, err
	}

	// 3. Run Initialization
	if err := storage.Initialize(context.Background()); err != nil {
		if c, ok := storage.(core.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}
	return storage, nil
}

// resolveDir applies the dev sandbox to dir.
func resolveDir(dir string, o *options) string {
	tempDir, _ := o.config["temp_dir"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	bypassSafety := isReadOnly || !devSafety
	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolved := ResolveStorePath(dir, useTemp)

	if useTemp && resolved != filepath.Clean(dir) {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", dir, "resolved_path", resolved)
	}
	return resolved
}

// initFS handles the initialization logic for the filesystem backend.
func initFS(dir string, o *options) (core.Storage, error) {
	mustExist, _ := o.config["must_exist"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	return fs.NewStorage(fs.Config{
		Path:         resolveDir(dir, o),
		MustExist:    mustExist,
		ReadOnly:     isReadOnly,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	}), nil
}

func initSQLite(dir string, o *options) (core.Storage, error) {
	path, _ := o.config["sqlite_path"].(string)
	if path == "" {
		path = sqlite.DefaultFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(resolveDir(dir, o), path)
	}
	return sqlite.Open(path, o.logger)
}

func initRedis(o *options) core.Storage {
	addr, _ := o.config["redis_addr"].(string)
	if addr == "" {
		addr = "localhost:6379"
	}
	db, _ := o.config["redis_db"].(int)
	prefix, _ := o.config["redis_prefix"].(string)

	return redis.New(redis.Config{
		Addr:   addr,
		DB:     db,
		Prefix: prefix,
		Logger: o.logger,
	})
}
