// Package history records the origin/destination pairs users searched for.
package history

import (
	"context"
	"sync"
	"time"

	"route-finder/internal/route"
)

// Entry is one search. ID and Timestamp are filled in by the store when
// left empty.
type Entry struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"userId" db:"user_id"`
	Origin      string     `json:"origin" db:"origin"`
	Destination string     `json:"destination" db:"destination"`
	Mode        route.Mode `json:"mode,omitempty" db:"mode"`
	Timestamp   time.Time  `json:"timestamp" db:"created_at"`
}

type Store interface {
	Add(ctx context.Context, e Entry) (Entry, error)
	// Recent returns the user's searches, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// Nop discards writes and has no history.
type Nop struct{}

func (Nop) Add(_ context.Context, e Entry) (Entry, error) { return e, nil }

func (Nop) Recent(context.Context, string, int) ([]Entry, error) { return nil, nil }

// Memory keeps history in process. It backs tests and local runs.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
	newID   func() string
}

func NewMemory() *Memory {
	return &Memory{now: time.Now, newID: newID}
}

func (m *Memory) Add(_ context.Context, e Entry) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e = fill(e, m.now, m.newID)
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *Memory) Recent(_ context.Context, userID string, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for i := len(m.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.entries[i].UserID == userID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func fill(e Entry, now func() time.Time, id func() string) Entry {
	if e.ID == "" {
		e.ID = id()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now().UTC()
	}
	return e
}
