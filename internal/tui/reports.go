package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/tracker"
)

type reportsModel struct {
	sess   *session
	width  int
	height int

	year  int
	month int
	data  tracker.Month
	// cursor indexes data.Days
	cursor int

	chart barchart.Model

	formActive bool
	form       *huh.Form
	confirm    *bool
}

func newReportsModel(sess *session) reportsModel {
	today := sess.svc.Engine().Today()
	confirm := false
	return reportsModel{
		sess:    sess,
		year:    today.Year(),
		month:   int(today.Month()),
		chart:   barchart.New(60, 12),
		confirm: &confirm,
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	month tracker.Month
	err   error
}

func (r reportsModel) refresh() tea.Cmd {
	sess, year, month := r.sess, r.year, r.month
	return func() tea.Msg {
		m, err := sess.svc.Month(context.Background(), sess.profile.ID, year, month)
		return reportsDataMsg{month: m, err: err}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.err != nil {
			return r, errorCmd(msg.err)
		}
		// drop responses for a month we already navigated away from
		if msg.month.Year != r.year || msg.month.Month != r.month {
			return r, nil
		}
		r.data = msg.month
		if r.cursor >= len(r.data.Days) {
			r.cursor = max(0, len(r.data.Days)-1)
		}
		r.buildChart()
		return r, nil

	case entriesChangedMsg, profileSwitchedMsg, prefsChangedMsg:
		return r, r.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.year, r.month = shiftMonth(r.year, r.month, -1)
			r.cursor = 0
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			r.year, r.month = shiftMonth(r.year, r.month, 1)
			r.cursor = 0
			return r, r.refresh()
		case key.Matches(msg, keys.Today):
			today := r.sess.svc.Engine().Today()
			r.year, r.month = today.Year(), int(today.Month())
			r.cursor = 0
			return r, r.refresh()
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.data.Days)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.Edit):
			if len(r.data.Days) > 0 {
				date := r.data.Days[r.cursor].Date
				return r, func() tea.Msg { return editDayMsg{date: date} }
			}
		case key.Matches(msg, keys.Clear):
			if len(r.data.Days) > 0 {
				return r.showClearForm()
			}
		}
	}
	return r, nil
}

func (r reportsModel) showClearForm() (reportsModel, tea.Cmd) {
	*r.confirm = false
	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete all %d entries of %s?", len(r.data.Days), r.data.Label())).
				Affirmative("Delete").
				Negative("Keep").
				Value(r.confirm),
		),
	).WithTheme(formTheme()).WithShowHelp(true)
	r.formActive = true
	return r, r.form.Init()
}

func (r reportsModel) updateForm(msg tea.Msg) (reportsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	switch r.form.State {
	case huh.StateCompleted:
		r.formActive = false
		if *r.confirm {
			return r, r.clearMonth()
		}
		return r, nil
	case huh.StateAborted:
		r.formActive = false
		r.form = nil
		return r, nil
	}
	return r, cmd
}

func (r reportsModel) clearMonth() tea.Cmd {
	sess, year, month := r.sess, r.year, r.month
	return func() tea.Msg {
		n, err := sess.svc.ClearMonth(context.Background(), sess.profile.ID, year, month)
		if err != nil {
			return statusMsg{text: errorText(err), isError: true}
		}
		return monthClearedMsg{label: calc.MonthYear(year, month), deleted: n}
	}
}

type monthClearedMsg struct {
	label   string
	deleted int64
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)
	r.chart.PushAll(monthBars(r.year, r.month, r.data.Days))
	r.chart.Draw()
}

// monthBars returns one bar per calendar day of the month with that day's
// net hours. Days without a valid entry get an empty bar.
func monthBars(year, month int, days []calc.Day) []barchart.BarData {
	byDate := make(map[string]calc.Day, len(days))
	for _, d := range days {
		if d.Valid {
			byDate[d.Date] = d
		}
	}

	var bars []barchart.BarData
	for dom := 1; dom <= daysIn(year, month); dom++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, month, dom)
		value := barchart.BarValue{Name: "none", Value: 0, Style: emptyBarStyle}
		if d, ok := byDate[date]; ok {
			style := workBarStyle
			if d.Type != calc.WorkDay {
				style = sickBarStyle
			}
			value = barchart.BarValue{Name: d.Type.Label(), Value: d.NetHoursDecimal, Style: style}
		}
		bars = append(bars, barchart.BarData{
			Label:  strconv.Itoa(dom),
			Values: []barchart.BarValue{value},
		})
	}
	return bars
}

func (r reportsModel) view() string {
	w := r.width - 4

	if r.formActive && r.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Clear Month"), "", r.form.View()),
		)
	}

	s := r.data.Summary
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ",
		highlightStyle.Render(calc.MonthYear(r.year, r.month)), "  ",
		mutedStyle.Render(fmt.Sprintf("%s total, %s avg/day", s.TotalHoursHM, formatDecimal(s.AverageDailyHours))),
	)

	legend := "  " + workBarStyle.Render("█") + " work  " + sickBarStyle.Render("█") + " paid absence"
	nav := mutedStyle.Render("  ←/→: month  t: this month  enter: edit day  x: clear month  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", legend, "", r.renderDayTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderDayTable(w int) string {
	if len(r.data.Days) == 0 {
		return mutedStyle.Render("  No entries for this month")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-10s  %-9s %-13s %6s", "Date", "Type", "Hours", "Net")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))

	// keep the cursor row visible on short terminals
	visible := max(5, r.height-30)
	start := max(0, r.cursor-visible+1)
	end := min(len(r.data.Days), start+visible)
	for i := start; i < end; i++ {
		cursor := "  "
		if i == r.cursor {
			cursor = selectedItemStyle.Render("> ")
		}
		rows = append(rows, cursor+dayLine(r.data.Days[i]))
	}
	if end < len(r.data.Days) {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(r.data.Days)-end)))
	}
	return strings.Join(rows, "\n")
}

func (r reportsModel) periodLabel() string {
	return calc.MonthYear(r.year, r.month)
}
