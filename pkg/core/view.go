package core

import "time"

// Display strings shared by every front end.
const (
	TitleText         = "Time Capsule"
	ListHeadingText   = "Your Capsule List:"
	EmptyStateText    = "No capsules yet. Add one above!"
	LockedPlaceholder = "🔒 Locked"
	ValidationAlert   = "Please fill in both fields."
)

// DefaultDateLayout renders dates the way a US locale short date does.
const DefaultDateLayout = "1/2/2006"

// View is the render model of one capsule at a given instant.
// A locked View never carries the message.
type View struct {
	Index      int
	ID         string
	State      State
	Message    string
	UnlockDate string
	CreatedAt  string
	Deletable  bool
}

// Views evaluates every capsule against now. It is meant to be called on
// each render pass; the result goes stale as now advances.
func (s *Service) Views(now time.Time) []View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]View, 0, len(s.items))
	for i, c := range s.items {
		views = append(views, NewView(i, c, now))
	}
	return views
}

// NewView builds the View of c at position i.
func NewView(i int, c Capsule, now time.Time) View {
	v := View{
		Index:      i,
		ID:         c.ID,
		State:      StateOf(c, now),
		UnlockDate: c.UnlockDate,
		CreatedAt:  c.CreatedAt,
	}
	if v.State == Unlocked {
		v.Message = c.Message
		v.Deletable = true
	}
	return v
}

// FormatUnlockDate renders the unlock date with layout, falling back to the
// raw value when it cannot be parsed.
func FormatUnlockDate(v View, layout string) string {
	if layout == "" {
		layout = DefaultDateLayout
	}
	t, err := ParseUnlockDate(v.UnlockDate)
	if err != nil {
		return v.UnlockDate
	}
	return t.Format(layout)
}

// FormatCreatedAt renders the creation timestamp in loc with layout.
func FormatCreatedAt(v View, layout string, loc *time.Location) string {
	if layout == "" {
		layout = DefaultDateLayout
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse(time.RFC3339Nano, v.CreatedAt)
	if err != nil {
		return v.CreatedAt
	}
	return t.In(loc).Format(layout)
}
