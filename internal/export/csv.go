package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

var csvHeader = []string{"Date", "Day type", "Start", "End", "Break (min)", "Work", "Net", "Net (h)", "Valid", "Error", "Notes"}

func ToCSV(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, d := range r.Days {
		start, end := dayTimes(d)
		row := []string{
			d.Date,
			d.Type.Label(),
			start,
			end,
			strconv.Itoa(d.BreakMinutes),
			d.WorkHoursHM,
			d.NetHoursHM,
			strconv.FormatFloat(d.NetHoursDecimal, 'f', 2, 64),
			strconv.FormatBool(d.Valid),
			d.Error,
			d.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	total := []string{"Total", "", "", "", "", "", r.Summary.TotalHoursHM,
		strconv.FormatFloat(r.Summary.TotalHoursDecimal, 'f', 2, 64), "", "", ""}
	if err := w.Write(total); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

var yearCSVHeader = []string{"Month", "Work days", "Sick days", "Vacation days", "Days off", "Net", "Net (h)", "Average (h/day)"}

func YearToCSV(r *YearReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(yearCSVHeader); err != nil {
		return err
	}
	for _, m := range r.Summary.Months {
		if err := w.Write(summaryRow(fmt.Sprintf("%04d-%02d", m.Year, m.Month),
			m.WorkDays, m.SickDays, m.VacationDays, m.DayOffs,
			m.TotalHoursHM, m.TotalHoursDecimal, m.AverageDailyHours)); err != nil {
			return err
		}
	}
	ys := r.Summary
	if err := w.Write(summaryRow("Total", ys.WorkDays, ys.SickDays, ys.VacationDays, ys.DayOffs,
		ys.TotalHoursHM, ys.TotalHoursDecimal, ys.AverageDailyHours)); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func summaryRow(label string, work, sick, vacation, off int, hm string, hours, avg float64) []string {
	return []string{
		label,
		strconv.Itoa(work),
		strconv.Itoa(sick),
		strconv.Itoa(vacation),
		strconv.Itoa(off),
		hm,
		strconv.FormatFloat(hours, 'f', 2, 64),
		strconv.FormatFloat(avg, 'f', 2, 64),
	}
}
