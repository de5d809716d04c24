package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Add(ctx context.Context, e Entry) (Entry, error) {
	e = fill(e, time.Now, newID)
	const q = `
		INSERT INTO search_history (id, user_id, origin, destination, mode, created_at)
		VALUES (:id, :user_id, :origin, :destination, :mode, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, q, e); err != nil {
		return Entry{}, fmt.Errorf("insert history: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
		SELECT id, user_id, origin, destination, mode, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	var out []Entry
	if err := s.db.SelectContext(ctx, &out, q, userID, limit); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return out, nil
}
