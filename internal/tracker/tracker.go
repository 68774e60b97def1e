// Package tracker ties the SQLite store to the calculation engine. It is
// the only layer that knows both how entries are stored and how they are
// computed.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/store"
)

// ErrInvalidEntry marks entries the engine or the date rule rejected.
var ErrInvalidEntry = errors.New("invalid entry")

// EntryError carries the rejected Day so callers can show Day.Error verbatim.
type EntryError struct {
	Day calc.Day
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Day.Date, e.Day.Error)
}

func (e *EntryError) Unwrap() error { return ErrInvalidEntry }

// Store is the persistence the service needs. *store.Store satisfies it.
type Store interface {
	GetProfile(ctx context.Context, id int64) (*store.Profile, error)
	GetProfileByName(ctx context.Context, name string) (*store.Profile, error)
	ListProfiles(ctx context.Context) ([]store.Profile, error)
	CreateProfile(ctx context.Context, name string) (*store.Profile, error)
	RenameProfile(ctx context.Context, id int64, name string) error
	DeleteProfile(ctx context.Context, id int64) error

	UpsertEntry(ctx context.Context, e store.WorkEntry) (*store.WorkEntry, error)
	GetEntry(ctx context.Context, profileID int64, date string) (*store.WorkEntry, error)
	ListMonth(ctx context.Context, profileID int64, year, month int) ([]store.WorkEntry, error)
	ListYear(ctx context.Context, profileID int64, year int) ([]store.WorkEntry, error)
	ListWeek(ctx context.Context, profileID int64, day time.Time) ([]store.WorkEntry, error)
	RecentEntries(ctx context.Context, profileID int64, limit int) ([]store.WorkEntry, error)
	DeleteEntry(ctx context.Context, profileID int64, date string) error
	DeleteMonth(ctx context.Context, profileID int64, year, month int) (int64, error)

	GetSetting(ctx context.Context, profileID int64, key string) (string, error)
	SetSetting(ctx context.Context, profileID int64, key, value string) error
	DeleteSetting(ctx context.Context, profileID int64, key string) error
	GetAllSettings(ctx context.Context, profileID int64) ([]store.Setting, error)
}

const (
	monthCacheSize = 64
	monthCacheTTL  = 30 * time.Minute
)

type monthKey struct {
	profileID   int64
	year, month int
}

// Month is one profile's computed calendar month.
type Month struct {
	Year    int
	Month   int
	Days    []calc.Day
	Summary calc.Summary
}

// Label returns "January 2025".
func (m Month) Label() string { return calc.MonthYear(m.Year, m.Month) }

type Service struct {
	store  Store
	engine *calc.Engine
	logger *slog.Logger
	months *expirable.LRU[monthKey, Month]

	defaults Preferences
}

func New(st Store, engine *calc.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:  st,
		engine: engine,
		logger: logger,
		months: expirable.NewLRU[monthKey, Month](monthCacheSize, nil, monthCacheTTL),

		defaults: Preferences{ThemeID: 2, DailyTargetHours: 8},
	}
}

func (s *Service) Engine() *calc.Engine { return s.engine }

// SaveDay validates and computes e, then stores it. Rejected entries are
// returned as *EntryError and nothing is written.
func (s *Service) SaveDay(ctx context.Context, profileID int64, e calc.Entry) (calc.Day, error) {
	if err := s.engine.ValidateDate(e.Date); err != nil {
		day := calc.Rejected(e, err.Error())
		return day, &EntryError{Day: day}
	}

	day := s.engine.CalculateDay(e)
	if !day.Valid {
		s.logger.Debug("entry rejected", "profile", profileID, "date", e.Date, "reason", day.Error)
		return day, &EntryError{Day: day}
	}

	_, err := s.store.UpsertEntry(ctx, store.WorkEntry{
		ProfileID:    profileID,
		Date:         day.Date,
		StartTime:    day.StartTime,
		EndTime:      day.EndTime,
		BreakMinutes: day.BreakMinutes,
		DayType:      string(day.Type),
		Notes:        day.Notes,
	})
	if err != nil {
		return day, fmt.Errorf("save day: %w", err)
	}
	s.invalidate(profileID, day.Date)
	s.logger.Info("day saved", "profile", profileID, "date", day.Date, "type", day.Type, "net", day.NetHoursHM)
	return day, nil
}

// Day returns the computed stored entry for date.
func (s *Service) Day(ctx context.Context, profileID int64, date string) (calc.Day, error) {
	w, err := s.store.GetEntry(ctx, profileID, date)
	if err != nil {
		return calc.Day{}, err
	}
	return s.engine.CalculateDay(toEntry(*w)), nil
}

// StoredEntry returns the raw stored input for date, for editing.
func (s *Service) StoredEntry(ctx context.Context, profileID int64, date string) (calc.Entry, error) {
	w, err := s.store.GetEntry(ctx, profileID, date)
	if err != nil {
		return calc.Entry{}, err
	}
	return toEntry(*w), nil
}

func (s *Service) DeleteDay(ctx context.Context, profileID int64, date string) error {
	if err := s.store.DeleteEntry(ctx, profileID, date); err != nil {
		return err
	}
	s.invalidate(profileID, date)
	s.logger.Info("day deleted", "profile", profileID, "date", date)
	return nil
}

// ClearMonth deletes every entry of the month.
func (s *Service) ClearMonth(ctx context.Context, profileID int64, year, month int) (int64, error) {
	n, err := s.store.DeleteMonth(ctx, profileID, year, month)
	if err != nil {
		return 0, err
	}
	s.months.Remove(monthKey{profileID, year, month})
	s.logger.Info("month cleared", "profile", profileID, "year", year, "month", month, "deleted", n)
	return n, nil
}

// Month returns the computed days of a month in date order with their
// summary. An empty month has a zero summary with Year/Month set. Days is
// a copy, the cached month is never handed out.
func (s *Service) Month(ctx context.Context, profileID int64, year, month int) (Month, error) {
	key := monthKey{profileID, year, month}
	if m, ok := s.months.Get(key); ok {
		m.Days = slices.Clone(m.Days)
		return m, nil
	}
	entries, err := s.store.ListMonth(ctx, profileID, year, month)
	if err != nil {
		return Month{}, fmt.Errorf("load month %04d-%02d: %w", year, month, err)
	}
	m := s.computeMonth(year, month, entries)
	s.months.Add(key, m)
	m.Days = slices.Clone(m.Days)
	return m, nil
}

func (s *Service) computeMonth(year, month int, entries []store.WorkEntry) Month {
	days := s.computeDays(entries)
	sum := calc.Summarize(days)
	sum.Year, sum.Month = year, month
	return Month{Year: year, Month: month, Days: days, Summary: sum}
}

func (s *Service) computeDays(entries []store.WorkEntry) []calc.Day {
	days := make([]calc.Day, 0, len(entries))
	for _, w := range entries {
		d := s.engine.CalculateDay(toEntry(w))
		if !d.Valid {
			s.logger.Warn("stored entry no longer valid", "date", d.Date, "reason", d.Error)
		}
		days = append(days, d)
	}
	return days
}

// Year rolls up every month of year that has entries.
func (s *Service) Year(ctx context.Context, profileID int64, year int) (calc.YearSummary, error) {
	entries, err := s.store.ListYear(ctx, profileID, year)
	if err != nil {
		return calc.YearSummary{}, fmt.Errorf("load year %04d: %w", year, err)
	}
	var byMonth [13][]store.WorkEntry
	for _, w := range entries {
		if _, m, ok := calc.ParsePeriod(w.Date); ok && m >= 1 && m <= 12 {
			byMonth[m] = append(byMonth[m], w)
		}
	}
	var months []calc.Summary
	for m := 1; m <= 12; m++ {
		if len(byMonth[m]) == 0 {
			continue
		}
		mo := s.computeMonth(year, m, byMonth[m])
		s.months.Add(monthKey{profileID, year, m}, mo)
		months = append(months, mo.Summary)
	}
	return calc.SummarizeYear(year, months), nil
}

// Week returns the Monday-to-Sunday week containing day.
func (s *Service) Week(ctx context.Context, profileID int64, day time.Time) ([]calc.Day, calc.Summary, error) {
	entries, err := s.store.ListWeek(ctx, profileID, day)
	if err != nil {
		return nil, calc.Summary{}, fmt.Errorf("load week: %w", err)
	}
	days := s.computeDays(entries)
	return days, calc.Summarize(days), nil
}

// Recent returns the newest computed days, newest first.
func (s *Service) Recent(ctx context.Context, profileID int64, limit int) ([]calc.Day, error) {
	entries, err := s.store.RecentEntries(ctx, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent days: %w", err)
	}
	return s.computeDays(entries), nil
}

func (s *Service) invalidate(profileID int64, date string) {
	if y, m, ok := calc.ParsePeriod(date); ok {
		s.months.Remove(monthKey{profileID, y, m})
	}
}

func toEntry(w store.WorkEntry) calc.Entry {
	return calc.Entry{
		Date:         w.Date,
		StartTime:    w.StartTime,
		EndTime:      w.EndTime,
		BreakMinutes: w.BreakMinutes,
		Type:         calc.DayType(w.DayType),
		Notes:        w.Notes,
	}
}
