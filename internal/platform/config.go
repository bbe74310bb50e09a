package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/capsule/pkg/core"
)

// FileConfig is the optional capsule.yaml found in the store directory.
//
//	backend: sqlite
//	slot: capsules
//	date_layout: 2006-01-02
//	sqlite:
//	  path: capsule.db
//	redis:
//	  addr: localhost:6379
//	  db: 0
//	  prefix: "capsule:"
type FileConfig struct {
	Backend    string `yaml:"backend,omitempty"`
	Slot       string `yaml:"slot,omitempty"`
	DateLayout string `yaml:"date_layout,omitempty"`
	ReadOnly   bool   `yaml:"read_only,omitempty"`

	SQLite struct {
		Path string `yaml:"path,omitempty"`
	} `yaml:"sqlite,omitempty"`

	Redis struct {
		Addr   string `yaml:"addr,omitempty"`
		DB     int    `yaml:"db,omitempty"`
		Prefix string `yaml:"prefix,omitempty"`
	} `yaml:"redis,omitempty"`
}

// DefaultFileConfig returns the configuration used when no file exists.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Backend:    BackendFS,
		Slot:       core.DefaultSlot,
		DateLayout: core.DefaultDateLayout,
	}
}

// LoadConfig reads capsule.yaml from dir. A missing file yields the defaults.
func LoadConfig(dir string) (FileConfig, error) {
	cfg := DefaultFileConfig()

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultFileConfig(), fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	switch cfg.Backend {
	case BackendFS, BackendSQLite, BackendRedis, BackendMemory:
	default:
		return DefaultFileConfig(), fmt.Errorf("%w: %q in %s", core.ErrUnknownBackend, cfg.Backend, ConfigFileName)
	}
	return cfg, nil
}

// SaveConfig writes cfg as capsule.yaml into dir.
func SaveConfig(dir string, cfg FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0644)
}

// Options converts the file settings into store options.
func (c FileConfig) Options() []Option {
	opts := []Option{
		WithBackend(c.Backend),
		WithSlot(c.Slot),
	}
	if c.ReadOnly {
		opts = append(opts, WithReadOnly(true))
	}
	if c.SQLite.Path != "" {
		opts = append(opts, WithSQLitePath(c.SQLite.Path))
	}
	if c.Redis.Addr != "" || c.Redis.Prefix != "" || c.Redis.DB != 0 {
		opts = append(opts, WithRedis(c.Redis.Addr, c.Redis.DB, c.Redis.Prefix))
	}
	return opts
}
