package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	minutesPerDay  = 24 * 60
	minutesPerHour = 60
)

// TimeToMinutes converts "H:MM"/"HH:MM" to minutes since midnight.
// The input must already have passed ValidateTime.
func TimeToMinutes(s string) int {
	h, m, _ := strings.Cut(s, ":")
	hours, _ := strconv.Atoi(h)
	mins, _ := strconv.Atoi(m)
	return hours*minutesPerHour + mins
}

// MinutesToTime renders minutes since midnight as zero-padded "HH:MM".
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/minutesPerHour, minutes%minutesPerHour)
}

// FormatHM renders a duration in minutes as "H:MM" with unpadded hours.
func FormatHM(minutes int) string {
	return fmt.Sprintf("%d:%02d", minutes/minutesPerHour, minutes%minutesPerHour)
}

// DecimalHours converts minutes to hours rounded to two decimal places.
func DecimalHours(minutes int) float64 {
	return round2(float64(minutes) / minutesPerHour)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthYear formats a period as "January 2025". Out-of-range months fall
// back to the number.
func MonthYear(year, month int) string {
	if month >= 1 && month <= 12 {
		return fmt.Sprintf("%s %d", monthNames[month-1], year)
	}
	return fmt.Sprintf("%d %d", month, year)
}

// VerboseDate renders "2025-01-15" as "Wednesday, 15 January 2025".
// Unparseable input is returned unchanged.
func VerboseDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %d %s %d", t.Weekday(), t.Day(), t.Month(), t.Year())
}

// ParsePeriod extracts year and month from the leading "YYYY-MM" of a date.
func ParsePeriod(date string) (year, month int, ok bool) {
	if len(date) < 7 || date[4] != '-' {
		return 0, 0, false
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(date[5:7])
	if err != nil {
		return 0, 0, false
	}
	return y, m, true
}
