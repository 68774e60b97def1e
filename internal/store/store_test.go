package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func defaultProfile(t *testing.T, s *Store) *Profile {
	t.Helper()
	p, err := s.GetProfileByName(context.Background(), DefaultProfileName)
	if err != nil {
		t.Fatalf("default profile: %v", err)
	}
	return p
}

// putEntry is a test helper that upserts a work day.
func putEntry(t *testing.T, s *Store, profileID int64, date, start, end string) *WorkEntry {
	t.Helper()
	e, err := s.UpsertEntry(context.Background(), WorkEntry{
		ProfileID: profileID, Date: date, StartTime: start, EndTime: end, DayType: "work_day",
	})
	if err != nil {
		t.Fatalf("upsert %s: %v", date, err)
	}
	return e
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/workhours.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: should succeed without re-seeding.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	profiles, err := s2.ListProfiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile after reopen, got %d", len(profiles))
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Profiles
// ============================================================

func TestDefaultProfileSeeded(t *testing.T) {
	s := newTestStore(t)
	p := defaultProfile(t, s)
	if p.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	theme, err := s.GetSetting(context.Background(), p.ID, SettingTheme)
	if err != nil {
		t.Fatal(err)
	}
	if theme != DefaultTheme {
		t.Fatalf("theme = %q, want %q", theme, DefaultTheme)
	}
}

func TestCreateAndGetProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, "Anna Nowak")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Anna Nowak" || p.ID == 0 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.CreatedAt.IsZero() {
		t.Fatal("expected created_at")
	}

	got, err := s.GetProfile(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != p.Name {
		t.Fatalf("got %q, want %q", got.Name, p.Name)
	}

	target, err := s.GetSetting(ctx, p.ID, SettingDailyTarget)
	if err != nil {
		t.Fatal(err)
	}
	if target != DefaultDailyTarget {
		t.Fatalf("daily target = %q, want %q", target, DefaultDailyTarget)
	}
}

func TestCreateProfileDuplicateName(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateProfile(context.Background(), DefaultProfileName)
	if err == nil {
		t.Fatal("expected unique constraint error")
	}
}

func TestGetProfileNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProfile(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = s.GetProfileByName(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListProfilesSorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.CreateProfile(ctx, "Zofia")
	s.CreateProfile(ctx, "Adam")

	profiles, err := s.ListProfiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}
	if profiles[0].Name != "Adam" || profiles[2].Name != "Zofia" {
		t.Fatalf("not sorted by name: %+v", profiles)
	}
}

func TestRenameProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, _ := s.CreateProfile(ctx, "Old")

	if err := s.RenameProfile(ctx, p.ID, "New"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetProfile(ctx, p.ID)
	if got.Name != "New" {
		t.Fatalf("expected New, got %s", got.Name)
	}
	if err := s.RenameProfile(ctx, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteProfileCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, _ := s.CreateProfile(ctx, "Temp")
	putEntry(t, s, p.ID, "2025-01-15", "09:00", "17:00")

	if err := s.DeleteProfile(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	var n int
	s.db.QueryRow(`SELECT COUNT(*) FROM work_entries WHERE profile_id = ?`, p.ID).Scan(&n)
	if n != 0 {
		t.Fatalf("expected entries removed, got %d", n)
	}
	s.db.QueryRow(`SELECT COUNT(*) FROM settings WHERE profile_id = ?`, p.ID).Scan(&n)
	if n != 0 {
		t.Fatalf("expected settings removed, got %d", n)
	}
	if err := s.DeleteProfile(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

// ============================================================
// Entries
// ============================================================

func TestUpsertAndGetEntry(t *testing.T) {
	s := newTestStore(t)
	p := defaultProfile(t, s)

	e, err := s.UpsertEntry(context.Background(), WorkEntry{
		ProfileID: p.ID, Date: "2025-01-15", StartTime: "09:00", EndTime: "17:00",
		BreakMinutes: 30, DayType: "work_day", Notes: "release",
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.ID == 0 || e.StartTime != "09:00" || e.EndTime != "17:00" || e.BreakMinutes != 30 || e.Notes != "release" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestUpsertEntryReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := defaultProfile(t, s)

	first := putEntry(t, s, p.ID, "2025-01-15", "09:00", "17:00")
	second, err := s.UpsertEntry(ctx, WorkEntry{ProfileID: p.ID, Date: "2025-01-15", DayType: "sick_day"})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, got ids %d and %d", first.ID, second.ID)
	}
	if second.DayType != "sick_day" || second.StartTime != "" || second.EndTime != "" {
		t.Fatalf("entry not replaced: %+v", second)
	}

	var n int
	s.db.QueryRow(`SELECT COUNT(*) FROM work_entries`).Scan(&n)
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestEntriesIsolatedByProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := defaultProfile(t, s)
	b, _ := s.CreateProfile(ctx, "Second")

	putEntry(t, s, a.ID, "2025-01-15", "09:00", "17:00")
	putEntry(t, s, b.ID, "2025-01-15", "10:00", "12:00")

	got, err := s.GetEntry(ctx, b.ID, "2025-01-15")
	if err != nil {
		t.Fatal(err)
	}
	if got.StartTime != "10:00" {
		t.Fatalf("expected profile b's entry, got %+v", got)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetEntry(context.Background(), defaultProfile(t, s).ID, "2025-01-01")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListMonth(t *testing.T) {
	s := newTestStore(t)
	p := defaultProfile(t, s)
	putEntry(t, s, p.ID, "2025-02-10", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-01-31", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-01-02", "09:00", "17:00")
	putEntry(t, s, p.ID, "2024-01-15", "09:00", "17:00")

	entries, err := s.ListMonth(context.Background(), p.ID, 2025, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Date != "2025-01-02" || entries[1].Date != "2025-01-31" {
		t.Fatalf("unexpected order: %s, %s", entries[0].Date, entries[1].Date)
	}
}

func TestListMonthEmpty(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.ListMonth(context.Background(), defaultProfile(t, s).ID, 2025, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries, got %d", len(entries))
	}
}

func TestListYear(t *testing.T) {
	s := newTestStore(t)
	p := defaultProfile(t, s)
	putEntry(t, s, p.ID, "2024-12-31", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-01-01", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-12-31", "09:00", "17:00")

	entries, err := s.ListYear(context.Background(), p.ID, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestListWeek(t *testing.T) {
	s := newTestStore(t)
	p := defaultProfile(t, s)
	// 2025-01-13 is a Monday.
	putEntry(t, s, p.ID, "2025-01-12", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-01-13", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-01-19", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-01-20", "09:00", "17:00")

	wed := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	entries, err := s.ListWeek(context.Background(), p.ID, wed)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Date != "2025-01-13" || entries[1].Date != "2025-01-19" {
		t.Fatalf("unexpected week: %s..%s", entries[0].Date, entries[1].Date)
	}

	sun := time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC)
	entries, _ = s.ListWeek(context.Background(), p.ID, sun)
	if len(entries) != 2 {
		t.Fatalf("sunday belongs to the week before: got %d entries", len(entries))
	}
}

func TestRecentEntries(t *testing.T) {
	s := newTestStore(t)
	p := defaultProfile(t, s)
	putEntry(t, s, p.ID, "2025-01-10", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-01-12", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-01-11", "09:00", "17:00")

	entries, err := s.RecentEntries(context.Background(), p.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Date != "2025-01-12" || entries[1].Date != "2025-01-11" {
		t.Fatalf("unexpected recent entries: %+v", entries)
	}
}

func TestDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := defaultProfile(t, s)
	putEntry(t, s, p.ID, "2025-01-15", "09:00", "17:00")

	if err := s.DeleteEntry(ctx, p.ID, "2025-01-15"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetEntry(ctx, p.ID, "2025-01-15"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected entry gone, got %v", err)
	}
	if err := s.DeleteEntry(ctx, p.ID, "2025-01-15"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMonth(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := defaultProfile(t, s)
	putEntry(t, s, p.ID, "2025-01-01", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-01-31", "09:00", "17:00")
	putEntry(t, s, p.ID, "2025-02-01", "09:00", "17:00")

	n, err := s.DeleteMonth(ctx, p.ID, 2025, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	left, _ := s.ListYear(ctx, p.ID, 2025)
	if len(left) != 1 || left[0].Date != "2025-02-01" {
		t.Fatalf("unexpected remaining entries: %+v", left)
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		year, month int
		from, to    string
	}{
		{2025, 1, "2025-01-01", "2025-01-31"},
		{2024, 2, "2024-02-01", "2024-02-29"},
		{2025, 2, "2025-02-01", "2025-02-28"},
		{2025, 12, "2025-12-01", "2025-12-31"},
	}
	for _, tt := range tests {
		from, to := monthBounds(tt.year, tt.month)
		if from != tt.from || to != tt.to {
			t.Errorf("monthBounds(%d, %d) = %s..%s, want %s..%s", tt.year, tt.month, from, to, tt.from, tt.to)
		}
	}
}

// ============================================================
// Settings
// ============================================================

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := defaultProfile(t, s)

	s.SetSetting(ctx, p.ID, SettingTheme, "5")
	s.SetSetting(ctx, p.ID, SettingTheme, "7")
	val, _ := s.GetSetting(ctx, p.ID, SettingTheme)
	if val != "7" {
		t.Fatalf("expected 7, got %s", val)
	}
}

func TestSettingsScopedToProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := defaultProfile(t, s)
	b, _ := s.CreateProfile(ctx, "Other")

	s.SetSetting(ctx, a.ID, SettingTheme, "9")
	val, _ := s.GetSetting(ctx, b.ID, SettingTheme)
	if val != DefaultTheme {
		t.Fatalf("profile b should keep default theme, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting(context.Background(), defaultProfile(t, s).ID, "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := defaultProfile(t, s)
	s.SetSetting(ctx, p.ID, "custom", "x")

	all, err := s.GetAllSettings(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestDeleteSetting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := defaultProfile(t, s)

	if err := s.SetSetting(ctx, p.ID, SettingCustomPrimary, "#1E88E5"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSetting(ctx, p.ID, SettingCustomPrimary); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSetting(ctx, p.ID, SettingCustomPrimary); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteSetting(ctx, p.ID, SettingCustomPrimary); err != nil {
		t.Fatalf("deleting a missing setting: %v", err)
	}
}

// ============================================================
// Foreign key constraints
// ============================================================

func TestForeignKeyEntriesProfile(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpsertEntry(context.Background(), WorkEntry{ProfileID: 999, Date: "2025-01-01", DayType: "day_off"})
	if err == nil {
		t.Fatal("expected foreign key error")
	}
}

func TestForeignKeySettingsProfile(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting(context.Background(), 999, SettingTheme, "1"); err == nil {
		t.Fatal("expected foreign key error")
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
}
