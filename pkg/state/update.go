package state

import (
	"fmt"
	"time"
)

// Update is a partial change to a session. Nil fields are left untouched.
// Append adds events to the end of the history; history is never rewritten.
type Update struct {
	Append    []Event
	Health    *int
	Location  *string
	Inventory []string
	Stats     []Attribute
}

// IsEmpty reports whether the update would change nothing.
func (u Update) IsEmpty() bool {
	return len(u.Append) == 0 && u.Health == nil && u.Location == nil &&
		u.Inventory == nil && u.Stats == nil
}

// Apply mutates s in place and bumps UpdatedAt.
func (s *Session) Apply(u Update) error {
	for i, ev := range u.Append {
		if !ev.Valid() {
			return fmt.Errorf("event %d has mismatched payload for type %q", i, ev.Type)
		}
	}

	s.History = append(s.History, u.Append...)
	if u.Health != nil {
		s.Health = *u.Health
	}
	if u.Location != nil {
		s.Location = *u.Location
	}
	if u.Inventory != nil {
		s.Inventory = append([]string(nil), u.Inventory...)
	}
	for _, a := range u.Stats {
		s.SetScore(a.Name, a.Score)
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}
