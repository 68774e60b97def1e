// Package calc converts raw daily work entries into normalized durations and
// aggregates them into period summaries. Everything here is pure: no I/O and
// no shared mutable state, so an Engine may be used from many goroutines.
package calc

import "time"

// Rules holds the thresholds the engine enforces.
type Rules struct {
	MinWorkMinutes        int
	MaxWorkMinutes        int
	MaxBreakMinutes       int // 0 disables the ceiling
	SickDayMinutes        int
	EarliestYear          int
	AllowMidnightCrossing bool
}

// DefaultRules returns the standard thresholds: 15 min to 12 h shifts,
// breaks up to 2 h, 8 h credited per sick day, no dates before 2020.
func DefaultRules() Rules {
	return Rules{
		MinWorkMinutes:        15,
		MaxWorkMinutes:        12 * 60,
		MaxBreakMinutes:       120,
		SickDayMinutes:        8 * 60,
		EarliestYear:          2020,
		AllowMidnightCrossing: true,
	}
}

// Engine is the stateless calculation service. The clock is only consulted
// by ValidateDate.
type Engine struct {
	rules Rules
	now   func() time.Time
}

// NewEngine returns an Engine with the given rules. A nil clock means time.Now.
func NewEngine(rules Rules, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{rules: rules, now: now}
}

func (e *Engine) Rules() Rules { return e.rules }

// Today returns the clock's current date at midnight, in the clock's location.
func (e *Engine) Today() time.Time {
	t := e.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
