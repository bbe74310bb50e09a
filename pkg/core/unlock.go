package core

import (
	"fmt"
	"strings"
	"time"
)

// UnlockDateLayout is the canonical form of Capsule.UnlockDate.
const UnlockDateLayout = "2006-01-02"

// State is the display state of a capsule relative to the current date.
type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// ParseUnlockDate returns the calendar date of s as midnight UTC.
// Both YYYY-MM-DD and RFC 3339 timestamps are accepted; for the latter only
// the date part, in the timestamp's own offset, is kept.
func ParseUnlockDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(UnlockDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid unlock date %q", s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// IsUnlocked reports whether the calendar date of now, in now's location,
// is on or after the capsule's unlock date. Time of day is ignored.
// An unparseable unlock date never unlocks.
//
// The result depends on now and must not be cached across calls.
func IsUnlocked(c Capsule, now time.Time) bool {
	unlock, err := ParseUnlockDate(c.UnlockDate)
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !today.Before(unlock)
}

// StateOf returns the display state of c at now.
func StateOf(c Capsule, now time.Time) State {
	if IsUnlocked(c, now) {
		return Unlocked
	}
	return Locked
}
