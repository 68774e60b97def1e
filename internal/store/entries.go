package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

const entryColumns = `id, profile_id, date, start_time, end_time, break_minutes, day_type, notes, created_at, updated_at`

// UpsertEntry inserts the entry or replaces the existing one for the same
// (profile, date). The stored row is returned.
func (s *Store) UpsertEntry(ctx context.Context, e WorkEntry) (*WorkEntry, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO work_entries (profile_id, date, start_time, end_time, break_minutes, day_type, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(profile_id, date) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			break_minutes = excluded.break_minutes,
			day_type = excluded.day_type,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		e.ProfileID, e.Date, nullString(e.StartTime), nullString(e.EndTime),
		e.BreakMinutes, e.DayType, e.Notes, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert entry %s: %w", e.Date, err)
	}
	return s.GetEntry(ctx, e.ProfileID, e.Date)
}

func (s *Store) GetEntry(ctx context.Context, profileID int64, date string) (*WorkEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM work_entries WHERE profile_id = ? AND date = ?`,
		profileID, date,
	))
	if err != nil {
		return nil, notFound(err, "get entry %s", date)
	}
	return e, nil
}

// ListRange returns entries with from <= date <= to, ordered by date.
func (s *Store) ListRange(ctx context.Context, profileID int64, from, to string) ([]WorkEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM work_entries
		 WHERE profile_id = ? AND date >= ? AND date <= ?
		 ORDER BY date`,
		profileID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries %s..%s: %w", from, to, err)
	}
	defer rows.Close()

	var entries []WorkEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *Store) ListMonth(ctx context.Context, profileID int64, year, month int) ([]WorkEntry, error) {
	from, to := monthBounds(year, month)
	return s.ListRange(ctx, profileID, from, to)
}

func (s *Store) ListYear(ctx context.Context, profileID int64, year int) ([]WorkEntry, error) {
	return s.ListRange(ctx, profileID, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
}

// ListWeek returns the Monday-to-Sunday week containing day.
func (s *Store) ListWeek(ctx context.Context, profileID int64, day time.Time) ([]WorkEntry, error) {
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return s.ListRange(ctx, profileID, monday.Format(dateLayout), sunday.Format(dateLayout))
}

// RecentEntries returns the latest entries, newest first.
func (s *Store) RecentEntries(ctx context.Context, profileID int64, limit int) ([]WorkEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM work_entries WHERE profile_id = ? ORDER BY date DESC LIMIT ?`,
		profileID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent entries: %w", err)
	}
	defer rows.Close()

	var entries []WorkEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteEntry(ctx context.Context, profileID int64, date string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM work_entries WHERE profile_id = ? AND date = ?`, profileID, date,
	)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", date, err)
	}
	return requireRow(res, "delete entry %s", date)
}

// DeleteMonth removes every entry of the month and reports how many went.
func (s *Store) DeleteMonth(ctx context.Context, profileID int64, year, month int) (int64, error) {
	from, to := monthBounds(year, month)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM work_entries WHERE profile_id = ? AND date >= ? AND date <= ?`,
		profileID, from, to,
	)
	if err != nil {
		return 0, fmt.Errorf("delete month %04d-%02d: %w", year, month, err)
	}
	return res.RowsAffected()
}

func monthBounds(year, month int) (from, to string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(dateLayout), last.Format(dateLayout)
}

func scanEntry(row rowScanner) (*WorkEntry, error) {
	e := &WorkEntry{}
	var start, end sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.ProfileID, &e.Date, &start, &end,
		&e.BreakMinutes, &e.DayType, &e.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.StartTime = start.String
	e.EndTime = end.String
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
