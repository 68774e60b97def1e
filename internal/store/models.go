package store

import "time"

type Profile struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkEntry is one stored day. StartTime and EndTime are empty for days
// without hours. DayType holds the raw stored label.
type WorkEntry struct {
	ID           int64
	ProfileID    int64
	Date         string // YYYY-MM-DD
	StartTime    string
	EndTime      string
	BreakMinutes int
	DayType      string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Setting struct {
	Key   string
	Value string
}

// Per-profile setting keys and the values seeded for new profiles.
const (
	SettingTheme       = "theme_id"
	SettingDailyTarget = "daily_target_hours"
	// SettingCustomPrimary holds a "#RRGGBB" color a palette is generated
	// from; it is absent unless the user picked one.
	SettingCustomPrimary = "custom_primary"

	DefaultTheme       = "2"
	DefaultDailyTarget = "8"
)
