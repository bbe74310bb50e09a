package redis_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/capsule/pkg/adapters/redis"
	"github.com/aretw0/capsule/pkg/core"
)

// newStorage connects to CAPSULE_REDIS_ADDR. The suite is skipped without it.
func newStorage(t *testing.T) *redis.Storage {
	t.Helper()
	addr := os.Getenv("CAPSULE_REDIS_ADDR")
	if addr == "" {
		t.Skip("CAPSULE_REDIS_ADDR not set")
	}

	prefix := fmt.Sprintf("capsule-test:%d:", time.Now().UnixNano())
	s := redis.New(redis.Config{Addr: addr, Prefix: prefix})
	require.NoError(t, s.Initialize(context.TODO()))
	t.Cleanup(func() {
		_ = s.Delete(context.Background(), core.DefaultSlot)
		_ = s.Close()
	})
	return s
}

func TestStorage_SetGet(t *testing.T) {
	s := newStorage(t)
	ctx := context.TODO()

	_, found, err := s.Get(ctx, core.DefaultSlot)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, core.DefaultSlot, "[]"))
	v, found, err := s.Get(ctx, core.DefaultSlot)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", v)
}

func TestStorage_WithService(t *testing.T) {
	s := newStorage(t)
	ctx := context.TODO()

	svc := core.NewService(ctx, core.NewAdapter(s, "", nil))
	_, err := svc.Add(ctx, "in redis", "2000-01-01")
	require.NoError(t, err)

	reopened := core.NewService(ctx, core.NewAdapter(s, "", nil))
	require.Equal(t, 1, reopened.Len())
	assert.Equal(t, "in redis", reopened.List()[0].Message)
}

func TestStorage_Unreachable(t *testing.T) {
	s := redis.New(redis.Config{Addr: "127.0.0.1:1"})
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, s.Initialize(ctx))
	assert.Equal(t, "redis", s.ComponentType())

	// Load recovers from the read error with an empty collection.
	svc := core.NewService(ctx, core.NewAdapter(s, "", nil))
	assert.Equal(t, 0, svc.Len())
}
