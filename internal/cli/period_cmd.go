package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/export"
	"github.com/sadopc/workhours/internal/tracker"
)

// parseMonth reads "YYYY-MM"; an empty string means the month of ref.
func parseMonth(s string, ref time.Time) (year, month int, err error) {
	if s == "" {
		return ref.Year(), int(ref.Month()), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (want YYYY-MM)", s)
	}
	return t.Year(), int(t.Month()), nil
}

// parseYear reads "YYYY"; an empty string means the year of ref.
func parseYear(s string, ref time.Time) (int, error) {
	if s == "" {
		return ref.Year(), nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || len(s) != 4 {
		return 0, fmt.Errorf("invalid year %q (want YYYY)", s)
	}
	return y, nil
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func newMonthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the days and summary of a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseMonth(optionalArg(args), app.now())
			if err != nil {
				return err
			}
			return printMonth(cmd, app, year, month)
		},
	}
}

func printMonth(cmd *cobra.Command, app *App, year, month int) error {
	ctx := cmd.Context()
	prof, err := app.resolveProfile(ctx)
	if err != nil {
		return err
	}
	m, err := app.Service.Month(ctx, prof.ID, year, month)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", m.Label(), prof.Name)
	if len(m.Days) == 0 {
		fmt.Fprintln(out, "No entries.")
		return nil
	}
	fmt.Fprintln(out, monthTable(m))
	fmt.Fprintln(out, summaryLine(m.Summary))
	return nil
}

func monthTable(m tracker.Month) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Type", "Start", "End", "Break", "Net", "Notes")
	for _, d := range m.Days {
		if !d.Valid {
			t.Row(d.Date, d.Type.Label(), "", "", "", "", "invalid: "+d.Error)
			continue
		}
		start, end, brk := "-", "-", "-"
		if d.Type == calc.WorkDay {
			start, end = d.StartTime, d.EndTime
			if d.MidnightCrossing {
				end += "+1"
			}
			brk = strconv.Itoa(d.BreakMinutes)
		}
		t.Row(d.Date, d.Type.Label(), start, end, brk, d.NetHoursHM, d.Notes)
	}
	return t
}

func summaryLine(s calc.Summary) string {
	return fmt.Sprintf("Total %s (%.2f h)  work %d  sick %d  vacation %d  off %d  avg %.2f h/day",
		s.TotalHoursHM, s.TotalHoursDecimal, s.WorkDays, s.SickDays, s.VacationDays, s.DayOffs, s.AverageDailyHours)
}

func newYearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "year [YYYY]",
		Short: "Show per-month totals of a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			year, err := parseYear(optionalArg(args), app.now())
			if err != nil {
				return err
			}
			prof, err := app.resolveProfile(ctx)
			if err != nil {
				return err
			}
			ys, err := app.Service.Year(ctx, prof.ID, year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d (%s)\n", year, prof.Name)
			if len(ys.Months) == 0 {
				fmt.Fprintln(out, "No entries.")
				return nil
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Month", "Work", "Sick", "Vacation", "Off", "Net")
			for _, m := range ys.Months {
				t.Row(calc.MonthYear(m.Year, m.Month),
					strconv.Itoa(m.WorkDays), strconv.Itoa(m.SickDays),
					strconv.Itoa(m.VacationDays), strconv.Itoa(m.DayOffs), m.TotalHoursHM)
			}
			fmt.Fprintln(out, t)
			fmt.Fprintf(out, "Total %s (%.2f h)  avg %.2f h/day\n", ys.TotalHoursHM, ys.TotalHoursDecimal, ys.AverageDailyHours)
			return nil
		},
	}
}

func newReportCmd(app *App) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "report [YYYY-MM|YYYY]",
		Short: "Export a monthly or yearly report",
		Long: "Writes a report of a month (default: the current one) or, given a bare\n" +
			"year, of a whole year. Calendar (ics) output is monthly only.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			prof, err := app.resolveProfile(ctx)
			if err != nil {
				return err
			}
			prefs, err := app.Service.Preferences(ctx, prof.ID)
			if err != nil {
				return err
			}
			palette := prefs.Palette()

			period := optionalArg(args)
			var path string
			if len(period) == 4 && !strings.Contains(period, "-") {
				year, err := parseYear(period, app.now())
				if err != nil {
					return err
				}
				ys, err := app.Service.Year(ctx, prof.ID, year)
				if err != nil {
					return err
				}
				r := export.NewYearReport(prof.Name, ys)
				r.Palette = palette
				path = outputPath(output, r.Filename(f))
				if err := export.WriteYear(r, f, path); err != nil {
					return err
				}
			} else {
				year, month, err := parseMonth(period, app.now())
				if err != nil {
					return err
				}
				m, err := app.Service.Month(ctx, prof.ID, year, month)
				if err != nil {
					return err
				}
				r, err := export.NewReport(prof.Name, year, month, m.Days)
				if err != nil {
					return err
				}
				r.Palette = palette
				path = outputPath(output, r.Filename(f))
				if err := export.Write(r, f, path); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatPDF), "pdf, txt, csv, json or ics")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default: current directory)")
	return cmd
}

// outputPath resolves --output: empty means name in the working directory,
// an existing directory receives name, anything else is the file path.
func outputPath(output, name string) string {
	if output == "" {
		return name
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name)
	}
	return output
}
