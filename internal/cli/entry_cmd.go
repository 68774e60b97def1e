package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tj/go-naturaldate"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/store"
	"github.com/sadopc/workhours/internal/tracker"
)

// parseDate accepts "YYYY-MM-DD" or a natural expression such as
// "yesterday" or "last friday", read relative to ref towards the past.
func parseDate(s string, ref time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("date is required")
	}
	if t, err := time.ParseInLocation(calc.DateLayout, s, ref.Location()); err == nil {
		return t.Format(calc.DateLayout), nil
	}
	t, err := naturaldate.Parse(s, ref, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return "", fmt.Errorf("unrecognized date %q: %w", s, err)
	}
	return t.Format(calc.DateLayout), nil
}

func newLogCmd(app *App) *cobra.Command {
	var start, end, dayType, notes string
	var breakMinutes int

	cmd := &cobra.Command{
		Use:   "log <date>",
		Short: "Record or replace the entry of one day",
		Example: `  workhours log today --start 08:00 --end 16:30 --break 30
  workhours log 2025-06-02 --type vacation
  workhours log "last friday" --start 22:00 --end 06:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			date, err := parseDate(args[0], app.now())
			if err != nil {
				return err
			}
			t, err := calc.ParseDayType(dayType)
			if err != nil {
				return err
			}
			prof, err := app.resolveProfile(ctx)
			if err != nil {
				return err
			}

			e := calc.Entry{Date: date, Type: t, Notes: notes}
			if t == calc.WorkDay {
				e.StartTime, e.EndTime, e.BreakMinutes = start, end, breakMinutes
			}

			day, err := app.Service.SaveDay(ctx, prof.ID, e)
			var entryErr *tracker.EntryError
			if errors.As(err, &entryErr) {
				return fmt.Errorf("%s rejected: %s", entryErr.Day.Date, entryErr.Day.Error)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved %s (%s): %s\n", day.Date, prof.Name, day.Type.Label())
			if day.Type == calc.WorkDay {
				fmt.Fprintf(out, "  %s-%s, break %d min, work %s, net %s (%.2f h)\n",
					day.StartTime, day.EndTime, day.BreakMinutes, day.WorkHoursHM, day.NetHoursHM, day.NetHoursDecimal)
				if day.MidnightCrossing {
					fmt.Fprintln(out, "  shift ends the next day")
				}
			} else {
				fmt.Fprintf(out, "  net %s (%.2f h)\n", day.NetHoursHM, day.NetHoursDecimal)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start time HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "end time HH:MM")
	cmd.Flags().IntVar(&breakMinutes, "break", 0, "break in minutes")
	cmd.Flags().StringVar(&dayType, "type", string(calc.WorkDay), "day type: work_day, sick_day, vacation, day_off")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <date>",
		Short: "Delete the entry of one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			date, err := parseDate(args[0], app.now())
			if err != nil {
				return err
			}
			prof, err := app.resolveProfile(ctx)
			if err != nil {
				return err
			}
			if err := app.Service.DeleteDay(ctx, prof.ID, date); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no entry for %s", date)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", date)
			return nil
		},
	}
}
