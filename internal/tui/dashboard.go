package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/store"
	"github.com/sadopc/workhours/internal/tracker"
)

const recentDays = 7

type dashboardModel struct {
	sess   *session
	timer  timerModel
	width  int
	height int

	month    tracker.Month
	recent   []calc.Day
	today    calc.Day
	hasToday bool

	// remaining month target, as standard days plus leftover hours
	targetHours float64
	needDays    int
	needHours   float64

	err error
}

func newDashboardModel(sess *session) dashboardModel {
	return dashboardModel{sess: sess, timer: newTimerModel(sess.now)}
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	month       tracker.Month
	recent      []calc.Day
	today       calc.Day
	hasToday    bool
	targetHours float64
	needDays    int
	needHours   float64
	err         error
}

func (d dashboardModel) loadData() tea.Cmd {
	sess := d.sess
	return func() tea.Msg {
		ctx := context.Background()
		pid := sess.profile.ID
		now := sess.svc.Engine().Today()

		month, err := sess.svc.Month(ctx, pid, now.Year(), int(now.Month()))
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		recent, err := sess.svc.Recent(ctx, pid, recentDays)
		if err != nil {
			return dashboardDataMsg{err: err}
		}

		msg := dashboardDataMsg{month: month, recent: recent}
		today, err := sess.svc.Day(ctx, pid, now.Format(calc.DateLayout))
		switch {
		case err == nil:
			msg.today, msg.hasToday = today, true
		case !errors.Is(err, store.ErrNotFound):
			return dashboardDataMsg{err: err}
		}

		msg.targetHours = float64(weekdaysInMonth(month.Year, month.Month)) * sess.prefs.DailyTargetHours
		remaining := max(0, msg.targetHours-month.Summary.TotalHoursDecimal)
		msg.needDays, msg.needHours, err = sess.svc.RequiredTime(ctx, pid, remaining)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.err = msg.err
		if msg.err != nil {
			return d, errorCmd(msg.err)
		}
		d.month = msg.month
		d.recent = msg.recent
		d.today = msg.today
		d.hasToday = msg.hasToday
		d.targetHours = msg.targetHours
		d.needDays = msg.needDays
		d.needHours = msg.needHours
		return d, nil

	case entriesChangedMsg, profileSwitchedMsg, prefsChangedMsg:
		return d, d.loadData()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Refresh):
			return d, d.loadData()
		case key.Matches(msg, keys.Start):
			if !d.timer.start() {
				return d, nil
			}
			return d, statusCmd("Punched in at " + d.timer.startTime.Format("15:04"))
		case key.Matches(msg, keys.Pause):
			if !d.timer.running() {
				return d, nil
			}
			d.timer.toggle()
			if d.timer.paused() {
				return d, statusCmd("On break")
			}
			return d, statusCmd("Back to work")
		case key.Matches(msg, keys.Stop):
			e, err := d.timer.stop()
			if errors.Is(err, errNotPunchedIn) {
				return d, nil
			}
			if err != nil {
				return d, errorCmd(err)
			}
			return d, func() tea.Msg { return punchedOutMsg{entry: e} }
		}
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderTimerPanel(contentWidth),
		d.renderTodayPanel(contentWidth),
		d.renderMonthPanel(contentWidth),
		d.renderRecentPanel(contentWidth),
	)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if !d.timer.running() {
		hint := mutedStyle.Render("■  Not punched in. Press s to start your shift.")
		return panelStyle.Width(w).Render(hint)
	}

	elapsed := formatDuration(d.timer.currentElapsed())
	since := mutedStyle.Render("since " + d.timer.startTime.Format("15:04"))
	brk := mutedStyle.Render(fmt.Sprintf("break %d min", int(d.timer.breakTaken()/time.Minute)))

	var indicator string
	if d.timer.paused() {
		indicator = warningStyle.Render("⏸  ON BREAK")
		elapsed = warningStyle.Render(elapsed)
	} else {
		indicator = successStyle.Render("●  WORKING")
		elapsed = bigNumberStyle.Render(elapsed)
	}
	line := fmt.Sprintf("%s  %s  %s  %s", indicator, elapsed, since, brk)
	hint := mutedStyle.Render("space: break  o: punch out")
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, line, hint))
}

func (d dashboardModel) renderTodayPanel(w int) string {
	date := d.sess.svc.Engine().Today().Format(calc.DateLayout)
	title := titleStyle.Render(calc.VerboseDate(date))
	profile := mutedStyle.Render(d.sess.profile.Name)

	if !d.hasToday {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title+"  "+profile,
			mutedStyle.Render("Nothing logged today. Press 2 to open the log."),
		)
		return panelStyle.Width(w).Render(content)
	}

	t := d.today
	var line string
	switch {
	case !t.Valid:
		line = errorStyle.Render("✗ " + t.Error)
	case t.Type == calc.WorkDay:
		line = fmt.Sprintf("%s %s  %s–%s  break %d min  net %s",
			successStyle.Render("✓"), t.Type.Label(), t.StartTime, t.EndTime,
			t.BreakMinutes, bigNumberStyle.Render(t.NetHoursHM))
	default:
		line = fmt.Sprintf("%s %s  %s", successStyle.Render("✓"), t.Type.Label(), highlightStyle.Render(t.NetHoursHM))
	}
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title+"  "+profile, line))
}

func (d dashboardModel) renderMonthPanel(w int) string {
	s := d.month.Summary
	title := titleStyle.Render(d.month.Label())
	total := bigNumberStyle.Render(s.TotalHoursHM)
	header := fmt.Sprintf("%s  %s  %s", title, total, mutedStyle.Render(formatDecimal(s.TotalHoursDecimal)))

	counts := fmt.Sprintf("  work %d   sick %d   vacation %d   off %d   avg %s/day",
		s.WorkDays, s.SickDays, s.VacationDays, s.DayOffs, formatDecimal(s.AverageDailyHours))

	rows := []string{header, counts, ""}
	rows = append(rows, "  "+progressBar(s.TotalHoursDecimal, d.targetHours, min(40, w-20))+
		mutedStyle.Render(fmt.Sprintf(" of %s target", formatDecimal(d.targetHours))))

	if d.needDays == 0 && d.needHours == 0 {
		rows = append(rows, successStyle.Render("  Monthly target reached"))
	} else {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  Remaining: %d full days + %s at %s/day",
			d.needDays, formatDecimal(d.needHours), formatDecimal(d.sess.prefs.DailyTargetHours))))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Days")
	if len(d.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No entries yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, day := range d.recent {
		rows = append(rows, "  "+dayLine(day))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// dayLine is the one-line rendering of a day shared by the list views.
func dayLine(day calc.Day) string {
	if !day.Valid {
		return fmt.Sprintf("%s %s  %-9s %s", errorStyle.Render("✗"), day.Date, day.Type.Label(), errorStyle.Render(day.Error))
	}
	times := strings.Repeat(" ", 13)
	if day.Type == calc.WorkDay {
		end := day.EndTime
		if day.MidnightCrossing {
			end += "+1"
		}
		times = fmt.Sprintf("%s–%-7s", day.StartTime, end)
	}
	return fmt.Sprintf("%s %s  %-9s %s %6s", successStyle.Render("✓"), day.Date, day.Type.Label(), times, day.NetHoursHM)
}

func progressBar(value, target float64, width int) string {
	if width < 5 {
		width = 5
	}
	filled := 0
	if target > 0 {
		filled = int(value / target * float64(width))
	}
	filled = min(max(filled, 0), width)
	return workBarStyle.Render(strings.Repeat("█", filled)) +
		emptyBarStyle.Render(strings.Repeat("░", width-filled))
}
