package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-finder/internal/route"
)

func TestMemoryRecentIsNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	m.now = func() time.Time { n++; return base.Add(time.Duration(n) * time.Minute) }

	for i := 0; i < 12; i++ {
		_, err := m.Add(ctx, Entry{UserID: "u1", Origin: fmt.Sprintf("o%d", i), Destination: "d"})
		require.NoError(t, err)
	}
	_, err := m.Add(ctx, Entry{UserID: "u2", Origin: "other", Destination: "d"})
	require.NoError(t, err)

	got, err := m.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "o11", got[0].Origin)
	assert.Equal(t, "o2", got[9].Origin)
	for _, e := range got {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, "u1", e.UserID)
	}

	all, err := m.Recent(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}

func TestMemoryKeepsGivenFields(t *testing.T) {
	m := NewMemory()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e, err := m.Add(context.Background(), Entry{ID: "fixed", UserID: "u", Timestamp: at})
	require.NoError(t, err)
	assert.Equal(t, "fixed", e.ID)
	assert.Equal(t, at, e.Timestamp)
}

func TestNop(t *testing.T) {
	var s Store = Nop{}
	e, err := s.Add(context.Background(), Entry{UserID: "u"})
	require.NoError(t, err)
	assert.Equal(t, "u", e.UserID)
	got, err := s.Recent(context.Background(), "u", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFirestoreConverters(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	m := entryToFirestore(&Entry{UserID: "u", Origin: "Cairo", Destination: "Giza", Mode: route.ModeBus, Timestamp: at})
	assert.Equal(t, "u", m["userId"])
	assert.Equal(t, "bus", m["mode"])

	e := firestoreToEntry(map[string]interface{}{
		"userId":      "u",
		"origin":      "Cairo",
		"destination": "Giza",
		"timestamp":   at,
		"unexpected":  42,
	})
	assert.Equal(t, Entry{UserID: "u", Origin: "Cairo", Destination: "Giza", Timestamp: at}, *e)

	// documents written by older clients have no mode
	assert.NotContains(t, entryToFirestore(&Entry{UserID: "u"}), "mode")
}
