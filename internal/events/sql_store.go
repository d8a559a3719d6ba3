package events

import (
	"context"
	"database/sql"
	"fmt"
)

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLStore appends events to the events table.
type SQLStore struct {
	db sqlExecer
}

// NewSQLStore wraps a database/sql handle opened with the pgx stdlib driver.
func NewSQLStore(db *sql.DB) *SQLStore {
	if db == nil {
		panic("events: sql db required")
	}
	return &SQLStore{db: db}
}

func newSQLStoreWithExec(exec sqlExecer) *SQLStore {
	if exec == nil {
		panic("events: exec required")
	}
	return &SQLStore{db: exec}
}

func (s *SQLStore) Record(ctx context.Context, evt Event) error {
	query := `
		INSERT INTO events (id, name, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, query, evt.ID.String(), evt.Name, []byte(evt.Payload), evt.CreatedAt); err != nil {
		return fmt.Errorf("events: insert %s: %w", evt.Name, err)
	}
	return nil
}
