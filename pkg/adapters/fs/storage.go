// Package fs implements core.Storage on the local filesystem.
// Each slot is one JSON file in the store directory, replaced atomically on write.
package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/capsule/pkg/core"
)

// SlotExtension is appended to the slot key to build its file name.
const SlotExtension = ".json"

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path      string
	MustExist bool
	ReadOnly  bool
	Perm      os.FileMode // file mode of slot files, 0600 when zero
	Logger    *slog.Logger

	// ErrorHandler receives runtime watcher failures. They are logged otherwise.
	ErrorHandler func(error)
}

// Storage implements core.Storage using one file per slot.
type Storage struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     *time.Time
	writes        int
}

// NewStorage creates a new filesystem-backed storage.
func NewStorage(config Config) *Storage {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Perm == 0 {
		config.Perm = 0600
	}
	return &Storage{
		Path:   config.Path,
		config: config,
	}
}

// Initialize creates the store directory unless MustExist or ReadOnly is set,
// in which case it only checks that the directory is there.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("store path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", s.Path)
		}
		return nil
	}

	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

// SlotPath returns the file backing a slot.
func (s *Storage) SlotPath(key string) string {
	return filepath.Join(s.Path, key+SlotExtension)
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("slot key is empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid slot key %q", key)
	}
	// These names are reserved for scratch files and are never watched.
	if strings.HasPrefix(key, ".") || strings.HasPrefix(key, TempFilePrefix) || strings.HasSuffix(key, "~") {
		return fmt.Errorf("reserved slot key %q", key)
	}
	return nil
}

// Get reads a slot file. A missing file is reported as not found.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.SlotPath(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set replaces a slot file atomically.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.SlotPath(key)
	if err := writeFileAtomic(path, []byte(value), s.config.Perm); err != nil {
		return err
	}
	s.config.Logger.Debug("slot written", "path", path, "bytes", len(value))
	s.recordWrite()
	return nil
}

var _ core.Storage = (*Storage)(nil)
var _ core.Watchable = (*Storage)(nil)
