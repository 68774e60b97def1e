package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateProfile inserts a profile and seeds its default settings.
func (s *Store) CreateProfile(ctx context.Context, name string) (*Profile, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	var id int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO profiles (name, created_at, updated_at) VALUES (?, ?, ?)`,
			name, now, now,
		)
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		id, _ = res.LastInsertId()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO settings (profile_id, key, value) VALUES (?, ?, ?), (?, ?, ?)`,
			id, SettingTheme, DefaultTheme,
			id, SettingDailyTarget, DefaultDailyTarget,
		)
		if err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}

func (s *Store) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM profiles WHERE id = ?`, id,
	))
	if err != nil {
		return nil, notFound(err, "get profile %d", id)
	}
	return p, nil
}

func (s *Store) GetProfileByName(ctx context.Context, name string) (*Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM profiles WHERE name = ?`, name,
	))
	if err != nil {
		return nil, notFound(err, "get profile %q", name)
	}
	return p, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM profiles ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *Store) RenameProfile(ctx context.Context, id int64, name string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET name = ?, updated_at = ? WHERE id = ?`, name, now, id,
	)
	if err != nil {
		return fmt.Errorf("rename profile %d: %w", id, err)
	}
	return requireRow(res, "rename profile %d", id)
}

// DeleteProfile removes a profile together with its entries and settings.
func (s *Store) DeleteProfile(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile %d: %w", id, err)
	}
	return requireRow(res, "delete profile %d", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	p := &Profile{}
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

func requireRow(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
	if n == 0 {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return nil
}
