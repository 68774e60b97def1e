package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/store"
	"github.com/sadopc/workhours/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewLog
	viewReports
	viewProfiles
	viewSettings
)

var viewNames = []string{"Dashboard", "Log", "Reports", "Profiles", "Settings"}

// session is shared by all views; switching profile updates it in place.
type session struct {
	svc     *tracker.Service
	now     func() time.Time
	profile store.Profile
	prefs   tracker.Preferences
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// entriesChangedMsg is sent after any write to work entries.
type entriesChangedMsg struct{}

type profileSwitchedMsg struct {
	profile store.Profile
	prefs   tracker.Preferences
}

type prefsChangedMsg struct {
	prefs tracker.Preferences
}

type tickMsg time.Time

// punchedOutMsg carries the shift recorded by the punch clock to the log form.
type punchedOutMsg struct {
	entry calc.Entry
}

// editDayMsg asks the log view to open its form for date.
type editDayMsg struct {
	date string
}

// --- Helpers ---

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: errorText(err), isError: true} }
}

// errorText shows rejected entries by their calculator message alone.
func errorText(err error) string {
	var ee *tracker.EntryError
	if errors.As(err, &ee) {
		return fmt.Sprintf("%s: %s", ee.Day.Date, ee.Day.Error)
	}
	return "Error: " + err.Error()
}

func shiftMonth(year, month, delta int) (int, int) {
	t := time.Date(year, time.Month(month)+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), int(t.Month())
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// weekdaysInMonth counts Monday to Friday dates of the month.
func weekdaysInMonth(year, month int) int {
	n := 0
	for d := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC); int(d.Month()) == month; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatDecimal(h float64) string {
	return fmt.Sprintf("%.2fh", h)
}
