package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/store"
)

// logFields backs the entry form. It is shared by pointer so values survive
// model copies.
type logFields struct {
	date    string
	dayType string
	start   string
	end     string
	brk     string
	notes   string
}

func (f *logFields) entry() (calc.Entry, error) {
	brk, err := parseBreak(f.brk)
	if err != nil {
		return calc.Entry{}, err
	}
	e := calc.Entry{
		Date:         strings.TrimSpace(f.date),
		Type:         calc.DayType(f.dayType),
		BreakMinutes: brk,
		Notes:        strings.TrimSpace(f.notes),
	}
	if e.Type == calc.WorkDay {
		e.StartTime = strings.TrimSpace(f.start)
		e.EndTime = strings.TrimSpace(f.end)
	} else {
		e.BreakMinutes = 0
	}
	return e, nil
}

func (f *logFields) fill(e calc.Entry) {
	f.date = e.Date
	f.dayType = string(e.Type)
	f.start = e.StartTime
	f.end = e.EndTime
	f.brk = strconv.Itoa(e.BreakMinutes)
	f.notes = e.Notes
}

func (f *logFields) reset(date string) {
	*f = logFields{date: date, dayType: string(calc.WorkDay), start: "08:00", end: "16:00", brk: "30"}
}

func parseBreak(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("break must be a whole number of minutes")
	}
	if n < 0 {
		return 0, errors.New("break cannot be negative")
	}
	return n, nil
}

type logModel struct {
	sess   *session
	width  int
	height int

	anchor  time.Time // any day of the displayed week
	days    []calc.Day
	summary calc.Summary
	cursor  int

	formActive bool
	form       *huh.Form
	fields     *logFields
	editing    bool
}

func newLogModel(sess *session) logModel {
	return logModel{
		sess:   sess,
		anchor: sess.svc.Engine().Today(),
		fields: &logFields{},
	}
}

func (l *logModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

type weekDataMsg struct {
	days    []calc.Day
	summary calc.Summary
	err     error
}

type entryLoadedMsg struct {
	entry  calc.Entry
	exists bool
}

func (l logModel) refresh() tea.Cmd {
	sess, anchor := l.sess, l.anchor
	return func() tea.Msg {
		days, sum, err := sess.svc.Week(context.Background(), sess.profile.ID, anchor)
		return weekDataMsg{days: days, summary: sum, err: err}
	}
}

// loadEntry fetches the stored input for date so the form can be prefilled.
func (l logModel) loadEntry(date string) tea.Cmd {
	sess := l.sess
	return func() tea.Msg {
		e, err := sess.svc.StoredEntry(context.Background(), sess.profile.ID, date)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return entryLoadedMsg{entry: calc.Entry{Date: date}}
			}
			return statusMsg{text: errorText(err), isError: true}
		}
		return entryLoadedMsg{entry: e, exists: true}
	}
}

func (l logModel) update(msg tea.Msg) (logModel, tea.Cmd) {
	if l.formActive && l.form != nil {
		return l.updateForm(msg)
	}

	switch msg := msg.(type) {
	case weekDataMsg:
		if msg.err != nil {
			return l, errorCmd(msg.err)
		}
		l.days = msg.days
		l.summary = msg.summary
		if l.cursor >= len(l.days) {
			l.cursor = max(0, len(l.days)-1)
		}
		return l, nil

	case entryLoadedMsg:
		if msg.exists {
			l.fields.fill(msg.entry)
		} else {
			l.fields.reset(msg.entry.Date)
		}
		return l.showForm(msg.exists)

	case punchedOutMsg:
		l.fields.fill(msg.entry)
		return l.showForm(false)

	case editDayMsg:
		if t, err := time.Parse(calc.DateLayout, msg.date); err == nil {
			l.anchor = t
		}
		return l, tea.Batch(l.refresh(), l.loadEntry(msg.date))

	case entriesChangedMsg, profileSwitchedMsg:
		return l, l.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if l.cursor > 0 {
				l.cursor--
			}
		case key.Matches(msg, keys.Down):
			if l.cursor < len(l.days)-1 {
				l.cursor++
			}
		case key.Matches(msg, keys.Left):
			l.anchor = l.anchor.AddDate(0, 0, -7)
			l.cursor = 0
			return l, l.refresh()
		case key.Matches(msg, keys.Right):
			l.anchor = l.anchor.AddDate(0, 0, 7)
			l.cursor = 0
			return l, l.refresh()
		case key.Matches(msg, keys.Today):
			l.anchor = l.sess.svc.Engine().Today()
			l.cursor = 0
			return l, l.refresh()
		case key.Matches(msg, keys.New):
			return l, l.loadEntry(l.sess.svc.Engine().Today().Format(calc.DateLayout))
		case key.Matches(msg, keys.Edit):
			if len(l.days) > 0 {
				return l, l.loadEntry(l.days[l.cursor].Date)
			}
		case key.Matches(msg, keys.Delete):
			if len(l.days) > 0 {
				return l, l.deleteDay(l.days[l.cursor].Date)
			}
		}
	}
	return l, nil
}

func (l logModel) deleteDay(date string) tea.Cmd {
	sess := l.sess
	return func() tea.Msg {
		if err := sess.svc.DeleteDay(context.Background(), sess.profile.ID, date); err != nil {
			return statusMsg{text: errorText(err), isError: true}
		}
		return entriesChangedMsg{}
	}
}

func (l logModel) showForm(editing bool) (logModel, tea.Cmd) {
	l.form = newLogForm(l.sess.svc.Engine(), l.fields)
	l.editing = editing
	l.formActive = true
	return l, l.form.Init()
}

// newLogForm builds the entry form. Field validators are the engine's own
// rules, so the form rejects what SaveDay would reject.
func newLogForm(engine *calc.Engine, f *logFields) *huh.Form {
	typeOptions := make([]huh.Option[string], len(calc.DayTypes))
	for i, t := range calc.DayTypes {
		typeOptions[i] = huh.NewOption(t.Label(), string(t))
	}
	isWork := func() bool { return f.dayType == string(calc.WorkDay) }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(&f.date).
				Validate(engine.ValidateDate),
			huh.NewSelect[string]().Title("Day type").Options(typeOptions...).Value(&f.dayType),
		),
		huh.NewGroup(
			huh.NewInput().Title("Start (HH:MM)").Value(&f.start).
				Validate(calc.ValidateTime),
			huh.NewInput().Title("End (HH:MM)").Value(&f.end).
				Validate(func(s string) error {
					return calc.ValidateTimeRange(f.start, s, engine.Rules().AllowMidnightCrossing)
				}),
			huh.NewInput().Title("Break (minutes)").Value(&f.brk).
				Validate(func(s string) error {
					brk, err := parseBreak(s)
					if err != nil {
						return err
					}
					shift, _ := calc.ShiftMinutes(f.start, f.end)
					return engine.ValidateBreak(brk, shift)
				}),
		).WithHideFunc(func() bool { return !isWork() }),
		huh.NewGroup(
			huh.NewInput().Title("Notes").Value(&f.notes).CharLimit(200),
		),
	).WithTheme(formTheme()).WithShowHelp(true).WithShowErrors(true)
}

func (l logModel) updateForm(msg tea.Msg) (logModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			l.formActive = false
			l.form = nil
			return l, nil
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	switch l.form.State {
	case huh.StateCompleted:
		l.formActive = false
		return l, l.save()
	case huh.StateAborted:
		l.formActive = false
		l.form = nil
		return l, nil
	}
	return l, cmd
}

func (l logModel) save() tea.Cmd {
	sess := l.sess
	e, err := l.fields.entry()
	if err != nil {
		return errorCmd(err)
	}
	return func() tea.Msg {
		day, err := sess.svc.SaveDay(context.Background(), sess.profile.ID, e)
		if err != nil {
			return statusMsg{text: errorText(err), isError: true}
		}
		return daySavedMsg{day: day}
	}
}

type daySavedMsg struct {
	day calc.Day
}

func (l logModel) view() string {
	w := l.width - 4

	if l.formActive && l.form != nil {
		title := titleStyle.Render("New Entry")
		if l.editing {
			title = titleStyle.Render("Edit " + calc.VerboseDate(l.fields.date))
		}
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", l.form.View()),
		)
	}

	monday := l.anchor.AddDate(0, 0, -((int(l.anchor.Weekday()) + 6) % 7))
	sunday := monday.AddDate(0, 0, 6)
	title := titleStyle.Render("Week") + "  " +
		mutedStyle.Render(fmt.Sprintf("%s – %s", monday.Format("Mon 02 Jan"), sunday.Format("Mon 02 Jan 2006")))

	var rows []string
	rows = append(rows, title, "")

	if len(l.days) == 0 {
		rows = append(rows, mutedStyle.Render("No entries this week. Press n to log today."))
	} else {
		for i, day := range l.days {
			cursor := "  "
			line := dayLine(day)
			if i == l.cursor {
				cursor = selectedItemStyle.Render("> ")
			}
			rows = append(rows, cursor+line)
		}
		rows = append(rows, "")
		rows = append(rows, fmt.Sprintf("  Week total %s  %s",
			bigNumberStyle.Render(l.summary.TotalHoursHM),
			mutedStyle.Render(formatDecimal(l.summary.TotalHoursDecimal))))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: log today  enter: edit  d: delete  ←/→: week  t: this week"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
