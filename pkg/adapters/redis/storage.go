// Package redis implements core.Storage on a Redis server, one string key per slot.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/introspection"
	"github.com/go-redis/redis/v8"

	"github.com/aretw0/capsule/pkg/core"
)

// DefaultPrefix namespaces slot keys.
const DefaultPrefix = "capsule:"

// Config holds the connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Logger   *slog.Logger
}

// Storage provides slot persistence in Redis.
type Storage struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// New creates a Storage with its own client.
func New(cfg Config) *Storage {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewWithClient(client, cfg.Prefix, cfg.Logger)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string, logger *slog.Logger) *Storage {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{client: client, prefix: prefix, logger: logger}
}

func (s *Storage) key(slot string) string {
	return s.prefix + slot
}

// Initialize checks connectivity.
func (s *Storage) Initialize(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, slot string) (string, bool, error) {
	data, err := s.client.Get(ctx, s.key(slot)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return data, true, nil
}

func (s *Storage) Set(ctx context.Context, slot, value string) error {
	if err := s.client.Set(ctx, s.key(slot), value, 0).Err(); err != nil {
		return err
	}
	s.logger.Debug("slot written", "key", s.key(slot), "bytes", len(value))
	return nil
}

// Delete removes a slot. Used to clean up test namespaces.
func (s *Storage) Delete(ctx context.Context, slot string) error {
	return s.client.Del(ctx, s.key(slot)).Err()
}

// Close closes the client.
func (s *Storage) Close() error {
	return s.client.Close()
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	opts := s.client.Options()
	return map[string]any{
		"addr":   opts.Addr,
		"db":     opts.DB,
		"prefix": s.prefix,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "redis"
}

var _ core.Storage = (*Storage)(nil)
var _ core.Closer = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
