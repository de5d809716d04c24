package history

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-finder/internal/db"
)

func TestFirestoreStoreEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "demo-route-finder")
	require.NoError(t, err)
	defer client.Close()

	s := NewFirestoreStore(client)
	user := "user-" + uuid.NewString()
	for _, o := range []string{"first", "second"} {
		_, err := s.Add(ctx, Entry{UserID: user, Origin: o, Destination: "there"})
		require.NoError(t, err)
	}

	got, err := s.Recent(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Origin)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	conn, err := db.Open(dsn)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.Ping(ctx, conn))
	require.NoError(t, db.Migrate(ctx, conn))

	s := NewPostgresStore(conn)
	user := "user-" + uuid.NewString()
	first, err := s.Add(ctx, Entry{UserID: user, Origin: "a", Destination: "b"})
	require.NoError(t, err)
	second, err := s.Add(ctx, Entry{UserID: user, Origin: "c", Destination: "d", Mode: "bus", Timestamp: first.Timestamp.Add(1e9)})
	require.NoError(t, err)

	got, err := s.Recent(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}
