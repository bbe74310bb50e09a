// Capsule is the central entity of the domain.
package core

import "time"

// CreatedAtLayout is the textual form of Capsule.CreatedAt: ISO-8601 in UTC
// with millisecond precision (e.g. 2026-10-18T09:30:00.000Z).
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Capsule is a message bound to an unlock date.
// It is a value record: once created it is never updated in place.
type Capsule struct {
	// ID is an opaque handle assigned in memory on add and on load.
	// It is not part of the persisted layout.
	ID string `json:"-"`

	Message    string `json:"message"`
	UnlockDate string `json:"unlockDate"`
	CreatedAt  string `json:"createdAt"`
}

// CreatedTime parses CreatedAt. The zero time is returned when the stored
// value is not a valid timestamp.
func (c Capsule) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, c.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Collection is the ordered sequence of capsules. Insertion order is display order.
type Collection []Capsule

// Clone returns a copy that shares no backing array with c.
func (c Collection) Clone() Collection {
	if c == nil {
		return Collection{}
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// EventType represents the type of change observed on a storage slot.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a storage slot made outside of the Service.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return string(e.Type) + " " + e.Key
}
