package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Adapter is the default Persister. It stores the whole collection as a
// compact JSON array in one slot of a Storage.
type Adapter struct {
	storage Storage
	key     string
	logger  *slog.Logger
}

// NewAdapter creates an Adapter bound to the given slot key.
// An empty key selects DefaultSlot; a nil logger selects slog.Default().
func NewAdapter(storage Storage, key string, logger *slog.Logger) *Adapter {
	if key == "" {
		key = DefaultSlot
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{storage: storage, key: key, logger: logger}
}

// Key returns the slot name.
func (a *Adapter) Key() string { return a.key }

// Storage returns the underlying slot store.
func (a *Adapter) Storage() Storage { return a.storage }

// Load reads the slot and decodes it. Any failure is logged and recovered
// with an empty collection.
func (a *Adapter) Load(ctx context.Context) Collection {
	value, found, err := a.storage.Get(ctx, a.key)
	if err != nil {
		a.logger.Error("error loading capsules", "slot", a.key, "error", fmt.Errorf("%w: %w", ErrLoad, err))
		return Collection{}
	}
	if !found {
		a.logger.Debug("capsule slot is empty", "slot", a.key)
		return Collection{}
	}

	c, skipped, err := Decode(value)
	if err != nil {
		a.logger.Warn("error loading capsules", "slot", a.key, "error", err)
		return Collection{}
	}
	if skipped > 0 {
		a.logger.Warn("skipped malformed capsules", "slot", a.key, "skipped", skipped)
	}
	return c
}

// Save encodes the whole collection and replaces the slot value.
func (a *Adapter) Save(ctx context.Context, c Collection) error {
	text, err := Encode(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := a.storage.Set(ctx, a.key, text); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Encode serializes a collection as a compact JSON array.
// HTML characters are not escaped, so messages are stored as typed.
func Encode(c Collection) (string, error) {
	if c == nil {
		c = Collection{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Decode parses slot text. It fails with ErrLoad when the text is not JSON
// or not a JSON array. Array elements that are not objects with string
// fields are dropped and counted in skipped.
func Decode(text string) (c Collection, skipped int, err error) {
	data := bytes.TrimSpace([]byte(text))
	if bytes.Equal(data, []byte("null")) {
		return nil, 0, fmt.Errorf("%w: stored value is not an array", ErrLoad)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: invalid json: %w", ErrLoad, err)
	}

	c = make(Collection, 0, len(raw))
	for _, item := range raw {
		if len(item) == 0 || item[0] != '{' {
			skipped++
			continue
		}
		var capsule Capsule
		if err := json.Unmarshal(item, &capsule); err != nil {
			skipped++
			continue
		}
		c = append(c, capsule)
	}
	return c, skipped, nil
}
