package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sadopc/workhours/internal/calc"
)

// TextPageRows is the number of day rows per page of a text report.
const TextPageRows = 20

const pageBreak = "\f"

// RenderText renders the report as plain-text tables, split into pages of
// TextPageRows days separated by form feeds.
func RenderText(r *Report) string {
	pages := paginate(r.Days, TextPageRows)
	var b strings.Builder
	for i, days := range pages {
		if i > 0 {
			b.WriteString(pageBreak)
		}
		b.WriteString(textHeader(r.Title(), r.Profile, r.ID, r.GeneratedAt))
		if i == 0 {
			b.WriteString(summaryTable(r.Summary).String())
			b.WriteString("\n\n")
		}
		if len(days) > 0 {
			b.WriteString(daysTable(days).String())
			b.WriteString("\n")
		} else {
			b.WriteString("No entries.\n")
		}
		fmt.Fprintf(&b, "\nPage %d/%d\n", i+1, len(pages))
	}
	return b.String()
}

func textHeader(title, profile, id string, generated time.Time) string {
	return fmt.Sprintf("%s\nProfile: %s\nReport:  %s\nCreated: %s\n\n",
		title, profile, id, generated.Format("2006-01-02 15:04"))
}

func paginate(days []calc.Day, size int) [][]calc.Day {
	if len(days) == 0 {
		return [][]calc.Day{nil}
	}
	var pages [][]calc.Day
	for start := 0; start < len(days); start += size {
		end := min(start+size, len(days))
		pages = append(pages, days[start:end])
	}
	return pages
}

func summaryTable(s calc.Summary) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Work days", "Sick days", "Vacation", "Days off", "Total", "Total (h)", "Avg (h/day)").
		Row(
			strconv.Itoa(s.WorkDays),
			strconv.Itoa(s.SickDays),
			strconv.Itoa(s.VacationDays),
			strconv.Itoa(s.DayOffs),
			s.TotalHoursHM,
			fmt.Sprintf("%.2f", s.TotalHoursDecimal),
			fmt.Sprintf("%.2f", s.AverageDailyHours),
		)
}

func daysTable(days []calc.Day) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Type", "Start", "End", "Break", "Net", "Notes")
	for _, d := range days {
		start, end := dayTimes(d)
		net := d.NetHoursHM
		notes := d.Notes
		if !d.Valid {
			net = "invalid"
			notes = d.Error
		}
		if d.MidnightCrossing {
			end += " +1"
		}
		t.Row(d.Date, d.Type.Label(), start, end, strconv.Itoa(d.BreakMinutes), net, notes)
	}
	return t
}

// RenderYearText renders a yearly report as one month-per-row table.
func RenderYearText(r *YearReport) string {
	var b strings.Builder
	b.WriteString(textHeader(r.Title(), r.Profile, r.ID, r.GeneratedAt))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Month", "Work", "Sick", "Vacation", "Off", "Total", "Avg (h/day)")
	for _, m := range r.Summary.Months {
		t.Row(calc.MonthYear(m.Year, m.Month),
			strconv.Itoa(m.WorkDays), strconv.Itoa(m.SickDays),
			strconv.Itoa(m.VacationDays), strconv.Itoa(m.DayOffs),
			m.TotalHoursHM, fmt.Sprintf("%.2f", m.AverageDailyHours))
	}
	ys := r.Summary
	t.Row("Total",
		strconv.Itoa(ys.WorkDays), strconv.Itoa(ys.SickDays),
		strconv.Itoa(ys.VacationDays), strconv.Itoa(ys.DayOffs),
		ys.TotalHoursHM, fmt.Sprintf("%.2f", ys.AverageDailyHours))
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}
