package core_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/capsule/pkg/adapters/memory"
	"github.com/aretw0/capsule/pkg/core"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T, opts ...core.ServiceOption) (*core.Service, *memory.Storage) {
	t.Helper()
	mem := memory.New()
	svc := core.NewService(context.TODO(), core.NewAdapter(mem, "", nil), opts...)
	return svc, mem
}

func TestService_Add(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.TODO()

	start := time.Now().UTC().Truncate(time.Millisecond)
	c, err := svc.Add(ctx, "Hello future", "2099-01-01")
	end := time.Now().UTC()
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Len())
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Hello future", c.Message)
	assert.Equal(t, "2099-01-01", c.UnlockDate)

	created := c.CreatedTime()
	assert.False(t, created.Before(start), "createdAt %s before start %s", created, start)
	assert.False(t, created.After(end), "createdAt %s after end %s", created, end)
	assert.True(t, strings.HasSuffix(c.CreatedAt, "Z"), "createdAt should be UTC: %s", c.CreatedAt)

	assert.Equal(t, 1, mem.Writes())
}

func TestService_Add_Appends(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.TODO()

	for i := 0; i < 3; i++ {
		_, err := svc.Add(ctx, fmt.Sprintf("msg-%d", i), "2000-01-01")
		require.NoError(t, err)
	}
	// Duplicates are allowed.
	_, err := svc.Add(ctx, "msg-0", "2000-01-01")
	require.NoError(t, err)

	list := svc.List()
	require.Len(t, list, 4)
	assert.Equal(t, "msg-0", list[0].Message)
	assert.Equal(t, "msg-2", list[2].Message)
	assert.Equal(t, "msg-0", list[3].Message)
	assert.NotEqual(t, list[0].ID, list[3].ID)
}

func TestService_Add_Validation(t *testing.T) {
	tests := []struct {
		name    string
		message string
		date    string
		field   string
	}{
		{"Empty Message", "", "2099-01-01", "message"},
		{"Whitespace Message", " \t\n", "2099-01-01", "message"},
		{"Empty Date", "hello", "", "unlockDate"},
		{"Whitespace Date", "hello", "   ", "unlockDate"},
		{"Both Empty", "", "", "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mem := newTestService(t)
			_, err := svc.Add(context.TODO(), "kept", "2000-01-01")
			require.NoError(t, err)

			_, err = svc.Add(context.TODO(), tt.message, tt.date)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrValidation), "expected ErrValidation, got %v", err)

			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)

			assert.Equal(t, 1, svc.Len())
			assert.Equal(t, 1, mem.Writes(), "failed add must not persist")
		})
	}
}

func TestService_Add_KeepsMessageTrimsDate(t *testing.T) {
	svc, _ := newTestService(t)
	c, err := svc.Add(context.TODO(), "  spaced  ", " 2000-01-01 ")
	require.NoError(t, err)
	assert.Equal(t, "  spaced  ", c.Message)
	assert.Equal(t, "2000-01-01", c.UnlockDate)
}

func TestService_DeleteAt(t *testing.T) {
	ctx := context.TODO()
	for n := 1; n <= 4; n++ {
		for i := 0; i < n; i++ {
			t.Run(fmt.Sprintf("N=%d/i=%d", n, i), func(t *testing.T) {
				svc, _ := newTestService(t)
				for k := 0; k < n; k++ {
					_, err := svc.Add(ctx, fmt.Sprintf("m%d", k), "2000-01-01")
					require.NoError(t, err)
				}
				before := svc.List()

				require.NoError(t, svc.DeleteAt(ctx, i))

				after := svc.List()
				require.Len(t, after, n-1)

				want := append(before[:i:i], before[i+1:]...)
				assert.Equal(t, want, after)
			})
		}
	}
}

func TestService_DeleteAt_OutOfRange(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.TODO()
	_, err := svc.Add(ctx, "a", "2000-01-01")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "b", "2000-01-01")
	require.NoError(t, err)
	before := svc.List()
	raw, _ := mem.Raw(core.DefaultSlot)

	for _, pos := range []int{-1, 2, 3, 100} {
		err := svc.DeleteAt(ctx, pos)
		assert.True(t, errors.Is(err, core.ErrOutOfRange), "pos %d: expected ErrOutOfRange, got %v", pos, err)
	}

	assert.Equal(t, before, svc.List())
	rawAfter, _ := mem.Raw(core.DefaultSlot)
	assert.Equal(t, raw, rawAfter)
	assert.Equal(t, 2, mem.Writes())
}

func TestService_DeleteByID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.TODO()
	a, err := svc.Add(ctx, "a", "2000-01-01")
	require.NoError(t, err)
	b, err := svc.Add(ctx, "b", "2000-01-01")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByID(ctx, a.ID))
	list := svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	err = svc.DeleteByID(ctx, a.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestService_WriteThrough(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.TODO()

	check := func() {
		t.Helper()
		want, err := core.Encode(svc.List())
		require.NoError(t, err)
		got, ok := mem.Raw(core.DefaultSlot)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, err := svc.Add(ctx, "<b>Hello</b> & goodbye", "2000-01-01")
	require.NoError(t, err)
	check()

	_, err = svc.Add(ctx, "second", "2099-01-01")
	require.NoError(t, err)
	check()

	require.NoError(t, svc.DeleteAt(ctx, 0))
	check()

	require.NoError(t, svc.DeleteAt(ctx, 0))
	check()

	got, _ := mem.Raw(core.DefaultSlot)
	assert.Equal(t, "[]", got)
}

func TestService_PersistFailureIsSwallowed(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.TODO()

	mem.FailSet(errors.New("quota exceeded"))
	_, err := svc.Add(ctx, "kept in memory", "2000-01-01")
	require.NoError(t, err, "persist failures must not surface from Add")
	assert.Equal(t, 1, svc.Len())

	perr := svc.LastPersistError()
	require.Error(t, perr)
	assert.True(t, errors.Is(perr, core.ErrPersist))
	_, ok := mem.Raw(core.DefaultSlot)
	assert.False(t, ok)

	mem.FailSet(nil)
	_, err = svc.Add(ctx, "second", "2000-01-01")
	require.NoError(t, err)
	assert.NoError(t, svc.LastPersistError())

	raw, ok := mem.Raw(core.DefaultSlot)
	require.True(t, ok)
	c, _, err := core.Decode(raw)
	require.NoError(t, err)
	assert.Len(t, c, 2, "next successful save rewrites the whole collection")
}

func TestService_LoadsOnStart(t *testing.T) {
	mem := memory.NewWithSlot(core.DefaultSlot,
		`[{"message":"a","unlockDate":"2000-01-01","createdAt":"2020-01-01T00:00:00.000Z"},`+
			`{"message":"b","unlockDate":"2099-01-01","createdAt":"2020-01-02T00:00:00.000Z"}]`)
	svc := core.NewService(context.TODO(), core.NewAdapter(mem, "", nil))

	list := svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Message)
	assert.Equal(t, "b", list[1].Message)
	assert.NotEmpty(t, list[0].ID)
	assert.NotEqual(t, list[0].ID, list[1].ID)
}

func TestService_LoadFailureStartsEmpty(t *testing.T) {
	mem := memory.NewWithSlot(core.DefaultSlot, `[{"message":"a","unlockDate":"2000-01-01","createdAt":""}]`)
	mem.FailGet(errors.New("disk on fire"))

	svc := core.NewService(context.TODO(), core.NewAdapter(mem, "", nil))
	assert.Equal(t, 0, svc.Len())
}

func TestService_Reload(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.TODO()
	_, err := svc.Add(ctx, "a", "2000-01-01")
	require.NoError(t, err)

	require.NoError(t, mem.Set(ctx, core.DefaultSlot, `[]`))
	svc.Reload(ctx)
	assert.Equal(t, 0, svc.Len())
}

func TestService_ListIsACopy(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Add(context.TODO(), "original", "2000-01-01")
	require.NoError(t, err)

	list := svc.List()
	list[0].Message = "mutated"
	assert.Equal(t, "original", svc.List()[0].Message)
}

func TestService_CustomClockAndIDs(t *testing.T) {
	n := 0
	svc, _ := newTestService(t,
		core.WithClock(fixedClock(time.Date(2026, 10, 18, 9, 30, 0, 123456789, time.UTC))),
		core.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	c, err := svc.Add(context.TODO(), "m", "2000-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18T09:30:00.123Z", c.CreatedAt)
	assert.Equal(t, "id-1", c.ID)
}

func TestService_Watch_Unsupported(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Watch(context.TODO())
	require.Error(t, err)
	assert.Equal(t, "storage does not support watching", err.Error())
}

func TestService_State(t *testing.T) {
	svc, mem := newTestService(t)
	_, err := svc.Add(context.TODO(), "a", "2000-01-01")
	require.NoError(t, err)

	state, ok := svc.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, 1, state.Capsules)
	assert.Equal(t, core.DefaultSlot, state.Slot)
	assert.Equal(t, "memory", state.StorageType)
	assert.Empty(t, state.LastPersistError)
	assert.NotNil(t, state.Storage)

	mem.FailSet(errors.New("boom"))
	require.NoError(t, svc.DeleteAt(context.TODO(), 0))
	state = svc.State().(core.ServiceState)
	assert.Contains(t, state.LastPersistError, "boom")
}

// gatedPersister blocks every Load after the first until release is closed.
type gatedPersister struct {
	mu      sync.Mutex
	saved   core.Collection
	loads   int
	entered chan struct{}
	release chan struct{}
}

func (p *gatedPersister) Load(ctx context.Context) core.Collection {
	p.mu.Lock()
	p.loads++
	first := p.loads == 1
	out := p.saved.Clone()
	p.mu.Unlock()

	if !first {
		close(p.entered)
		<-p.release
	}
	return out
}

func (p *gatedPersister) Save(ctx context.Context, c core.Collection) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = c.Clone()
	return nil
}

func TestService_ReloadDoesNotLoseConcurrentAdd(t *testing.T) {
	p := &gatedPersister{entered: make(chan struct{}), release: make(chan struct{})}
	svc := core.NewService(context.TODO(), p)
	ctx := context.TODO()

	reloaded := make(chan struct{})
	go func() {
		svc.Reload(ctx)
		close(reloaded)
	}()
	<-p.entered

	added := make(chan error, 1)
	go func() {
		_, err := svc.Add(ctx, "typed during reload", "2000-01-01")
		added <- err
	}()

	// The add waits for the reload to finish.
	select {
	case <-added:
		t.Fatal("add completed while reload held the collection")
	case <-time.After(50 * time.Millisecond):
	}

	close(p.release)
	<-reloaded
	require.NoError(t, <-added)

	list := svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, "typed during reload", list[0].Message)

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Len(t, p.saved, 1)
	assert.Equal(t, list[0].Message, p.saved[0].Message)
}
