package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Client preferences (financial goals, alert thresholds) are opaque blobs
// keyed by name. They read derived statistics but never write back, so
// they sit outside the ledger's consistency domain on purpose.

// GetPreference returns the stored value for key.
func (s *Store) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: preference %q", ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("loading preference %q: %w", key, err)
	}
	return value, nil
}

// SetPreference stores value under key, replacing any previous value.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: preference key is required", ErrValidation)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	); err != nil {
		return fmt.Errorf("saving preference %q: %w", key, err)
	}
	return nil
}

// DeletePreference removes a preference. Deleting a missing key is a no-op.
func (s *Store) DeletePreference(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting preference %q: %w", key, err)
	}
	return nil
}
