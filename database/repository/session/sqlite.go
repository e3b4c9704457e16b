package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vetclinic/database"
)

// SQLStore keeps session slots in the local SQLite database, one row per (namespace, slot).
type SQLStore struct {
	db        *sql.DB
	namespace string
	now       func() time.Time
}

func NewSQLStore(db *database.DB, namespace string) *SQLStore {
	return &SQLStore{db: db.SQL, namespace: namespace, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, slot string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_slots WHERE namespace = ? AND slot = ?`,
		s.namespace, slot,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session slot %s: %w", slot, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, slot, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_slots (namespace, slot, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, slot, value, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write session slot %s: %w", slot, err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context, slot string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_slots WHERE namespace = ? AND slot = ?`, s.namespace, slot)
	if err != nil {
		return fmt.Errorf("failed to clear session slot %s: %w", slot, err)
	}
	return nil
}

func (s *SQLStore) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_slots WHERE namespace = ?`, s.namespace); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// PurgeOlderThan removes slots in every namespace not written since cutoff.
func (s *SQLStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_slots WHERE updated_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge session slots: %w", err)
	}
	return res.RowsAffected()
}
