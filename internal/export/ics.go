package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/sadopc/workhours/internal/calc"
)

// ErrNothingToExport is returned for calendar exports without a valid day.
var ErrNothingToExport = errors.New("no valid days to export")

const icsFloatingLayout = "20060102T150405"

// WriteICS renders every valid day of the report as a calendar event. Work
// days become timed events, other day types all-day events. UIDs are stable
// per (profile, date), so re-importing updates instead of duplicating.
func WriteICS(w io.Writer, r *Report) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//workhours//work hours report//EN")

	stamp := r.GeneratedAt.UTC()
	for _, d := range r.Days {
		if !d.Valid {
			continue
		}
		ev, err := dayEvent(r.Profile, d, stamp)
		if err != nil {
			return err
		}
		cal.Children = append(cal.Children, ev.Component)
	}
	if len(cal.Children) == 0 {
		return ErrNothingToExport
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func dayEvent(profile string, d calc.Day, stamp time.Time) (*ical.Event, error) {
	date, err := time.Parse(calc.DateLayout, d.Date)
	if err != nil {
		return nil, fmt.Errorf("event for %q: %w", d.Date, err)
	}

	ev := ical.NewEvent()
	uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte("workhours:"+profile+":"+d.Date))
	ev.Props.SetText(ical.PropUID, uid.String()+"@workhours")
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ev.Props.SetText(ical.PropCategories, string(d.Type))

	if d.Type == calc.WorkDay {
		start := date.Add(time.Duration(calc.TimeToMinutes(d.StartTime)) * time.Minute)
		end := start.Add(time.Duration(d.WorkMinutes) * time.Minute)
		ev.Props.Set(floating(ical.PropDateTimeStart, start))
		ev.Props.Set(floating(ical.PropDateTimeEnd, end))
		ev.Props.SetText(ical.PropSummary, fmt.Sprintf("Work %s (%s net)", d.WorkHoursHM, d.NetHoursHM))
	} else {
		ev.Props.SetDate(ical.PropDateTimeStart, date)
		ev.Props.SetDate(ical.PropDateTimeEnd, date.AddDate(0, 0, 1))
		ev.Props.SetText(ical.PropSummary, d.Type.Label())
	}

	desc := fmt.Sprintf("Break: %d min", d.BreakMinutes)
	if d.Notes != "" {
		desc += "\n" + d.Notes
	}
	ev.Props.SetText(ical.PropDescription, desc)
	return ev, nil
}

// floating builds a date-time property without a zone, read as local time
// by calendar clients.
func floating(name string, t time.Time) *ical.Prop {
	p := ical.NewProp(name)
	p.Value = t.Format(icsFloatingLayout)
	return p
}

func ToICS(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ics file: %w", err)
	}
	if err := WriteICS(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
