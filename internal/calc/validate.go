package calc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationError describes a rejected input. Field names the input it
// belongs to so a form can show Message next to it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateTime accepts "H:MM" or "HH:MM" with hour in [0,23] and minute in [0,59].
func ValidateTime(s string) error {
	if s == "" {
		return invalid("time", "time cannot be empty")
	}
	h, m, ok := strings.Cut(s, ":")
	if !ok || strings.Contains(m, ":") {
		return invalid("time", "invalid time format (HH:MM)")
	}
	if len(h) < 1 || len(h) > 2 || !allDigits(h) {
		return invalid("time", "hour must be a 1-2 digit number")
	}
	if len(m) != 2 || !allDigits(m) {
		return invalid("time", "minutes must be a 2 digit number")
	}
	if hour, _ := strconv.Atoi(h); hour > 23 {
		return invalid("time", "hour must be between 0 and 23")
	}
	if mins, _ := strconv.Atoi(m); mins > 59 {
		return invalid("time", "minutes must be between 0 and 59")
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// validDateFormat checks syntax and calendar validity only.
func validDateFormat(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidateDate checks a "YYYY-MM-DD" date. Beyond syntax this enforces a
// business rule: no dates after today (per the engine's clock) and none
// before Rules.EarliestYear.
func (e *Engine) ValidateDate(s string) error {
	if s == "" {
		return invalid("date", "date cannot be empty")
	}
	today := e.Today()
	d, err := time.ParseInLocation(DateLayout, s, today.Location())
	if err != nil {
		return invalid("date", "invalid date format (YYYY-MM-DD)")
	}
	if d.After(today) {
		return invalid("date", "date cannot be in the future")
	}
	if d.Year() < e.rules.EarliestYear {
		return invalid("date", "date is too old (before %d)", e.rules.EarliestYear)
	}
	return nil
}

// ValidateTimeRange validates both times and rejects a midnight-crossing
// pair (end before start) unless allowMidnightCrossing is set.
func ValidateTimeRange(start, end string, allowMidnightCrossing bool) error {
	if err := ValidateTime(start); err != nil {
		return invalid("start_time", "start: %s", err)
	}
	if err := ValidateTime(end); err != nil {
		return invalid("end_time", "end: %s", err)
	}
	if TimeToMinutes(end) < TimeToMinutes(start) && !allowMidnightCrossing {
		return invalid("end_time", "crossing midnight is not allowed")
	}
	return nil
}

// ValidateBreak rejects negative breaks, breaks that consume the whole
// shift, and breaks above Rules.MaxBreakMinutes.
func (e *Engine) ValidateBreak(breakMinutes, totalWorkMinutes int) error {
	if breakMinutes < 0 {
		return invalid("break_minutes", "break cannot be negative")
	}
	if breakMinutes >= totalWorkMinutes {
		return invalid("break_minutes", "break cannot be equal to or longer than the work time")
	}
	if ceiling := e.rules.MaxBreakMinutes; ceiling > 0 && breakMinutes > ceiling {
		return invalid("break_minutes", "break cannot be longer than %d minutes", ceiling)
	}
	return nil
}

// ValidateDayType checks exact, case-sensitive membership.
func ValidateDayType(s string) error {
	if !DayType(s).Valid() {
		return invalid("day_type", "invalid day type: %s", s)
	}
	return nil
}

var profileNameRe = regexp.MustCompile(`^[a-zA-Z0-9ąęćńółśżźĄĘĆŃÓŁŚŻŹ\s\-_.']+$`)

// ValidateProfileName accepts 2-50 characters of letters, digits, spaces
// and -_.' only.
func ValidateProfileName(name string) error {
	if name == "" {
		return invalid("name", "profile name cannot be empty")
	}
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return invalid("name", "profile name must have at least 2 characters")
	}
	if n > 50 {
		return invalid("name", "profile name cannot be longer than 50 characters")
	}
	if !profileNameRe.MatchString(name) {
		return invalid("name", "profile name contains forbidden characters")
	}
	return nil
}
