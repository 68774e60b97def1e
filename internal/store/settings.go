package store

import (
	"context"
	"fmt"
)

func (s *Store) GetSetting(ctx context.Context, profileID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE profile_id = ? AND key = ?`, profileID, key,
	).Scan(&value)
	if err != nil {
		return "", notFound(err, "get setting %q", key)
	}
	return value, nil
}

func (s *Store) SetSetting(ctx context.Context, profileID int64, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (profile_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(profile_id, key) DO UPDATE SET value = excluded.value`,
		profileID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// DeleteSetting removes key; a missing key is not an error.
func (s *Store) DeleteSetting(ctx context.Context, profileID int64, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE profile_id = ? AND key = ?`, profileID, key,
	)
	if err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings(ctx context.Context, profileID int64) ([]Setting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM settings WHERE profile_id = ? ORDER BY key`, profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
