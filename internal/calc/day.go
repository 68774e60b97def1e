package calc

import "fmt"

// Entry is one day's raw input. Empty StartTime/EndTime mean absent.
type Entry struct {
	Date         string
	StartTime    string
	EndTime      string
	BreakMinutes int
	Type         DayType
	Notes        string
}

// Day is the normalized result for one entry. When Valid is false every
// numeric field is zero and Error explains why.
type Day struct {
	Date             string  `json:"date"`
	WorkMinutes      int     `json:"work_minutes"`
	WorkHoursDecimal float64 `json:"work_hours_decimal"`
	WorkHoursHM      string  `json:"work_hours_hm"`
	BreakMinutes     int     `json:"break_minutes"`
	NetMinutes       int     `json:"net_minutes"`
	NetHoursDecimal  float64 `json:"net_hours_decimal"`
	NetHoursHM       string  `json:"net_hours_hm"`
	Type             DayType `json:"day_type"`
	StartTime        string  `json:"start_time,omitempty"`
	EndTime          string  `json:"end_time,omitempty"`
	MidnightCrossing bool    `json:"is_midnight_crossing"`
	Valid            bool    `json:"is_valid"`
	Error            string  `json:"error_message,omitempty"`
	Notes            string  `json:"notes,omitempty"`
}

// CalculateDay computes one day. It never fails: problems are reported
// through Day.Valid and Day.Error so a batch can continue past bad rows.
func (e *Engine) CalculateDay(in Entry) Day {
	base := Day{
		Date:      in.Date,
		Type:      in.Type,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Notes:     in.Notes,
	}
	if !validDateFormat(in.Date) {
		return base.reject("invalid date format")
	}

	switch in.Type {
	case Vacation, DayOff:
		base.StartTime, base.EndTime = "", ""
		return base.accept(0, 0)
	case SickDay:
		base.StartTime, base.EndTime = "", ""
		return base.accept(e.rules.SickDayMinutes, 0)
	case WorkDay:
		return e.calculateWorkDay(base, in.BreakMinutes)
	}
	return base.reject(fmt.Sprintf("invalid day type: %s", in.Type))
}

func (e *Engine) calculateWorkDay(d Day, breakMinutes int) Day {
	if d.StartTime == "" || d.EndTime == "" {
		return d.reject("missing hours for a work day")
	}
	if ValidateTime(d.StartTime) != nil {
		return d.reject("invalid start time format")
	}
	if ValidateTime(d.EndTime) != nil {
		return d.reject("invalid end time format")
	}

	gross, crossing := ShiftMinutes(d.StartTime, d.EndTime)
	d.MidnightCrossing = crossing

	if crossing && !e.rules.AllowMidnightCrossing {
		return d.reject("crossing midnight is not allowed")
	}
	if gross < e.rules.MinWorkMinutes {
		return d.reject(fmt.Sprintf("too little work time (<%d minutes)", e.rules.MinWorkMinutes))
	}
	if gross > e.rules.MaxWorkMinutes {
		return d.reject(fmt.Sprintf("too much work time (>%s hours)", hoursLabel(e.rules.MaxWorkMinutes)))
	}
	if e.ValidateBreak(breakMinutes, gross) != nil {
		return d.reject("invalid break length")
	}
	return d.accept(gross, breakMinutes)
}

// ShiftMinutes returns the gross minutes between two valid clock times.
// An end before the start is read as a shift ending on the next day.
func ShiftMinutes(start, end string) (minutes int, crossing bool) {
	s, e := TimeToMinutes(start), TimeToMinutes(end)
	if e < s {
		return minutesPerDay - s + e, true
	}
	return e - s, false
}

// Rejected returns the invalid Day for in with msg as its error, for
// callers applying rules of their own on top of CalculateDay.
func Rejected(in Entry, msg string) Day {
	d := Day{Date: in.Date, Type: in.Type, StartTime: in.StartTime, EndTime: in.EndTime, Notes: in.Notes}
	return d.reject(msg)
}

func (d Day) accept(work, brk int) Day {
	net := work - brk
	if net < 0 {
		net = 0
	}
	d.WorkMinutes = work
	d.WorkHoursDecimal = DecimalHours(work)
	d.WorkHoursHM = FormatHM(work)
	d.BreakMinutes = brk
	d.NetMinutes = net
	d.NetHoursDecimal = DecimalHours(net)
	d.NetHoursHM = FormatHM(net)
	d.Valid = true
	d.Error = ""
	return d
}

func (d Day) reject(msg string) Day {
	d.WorkMinutes, d.BreakMinutes, d.NetMinutes = 0, 0, 0
	d.WorkHoursDecimal, d.NetHoursDecimal = 0, 0
	d.WorkHoursHM, d.NetHoursHM = FormatHM(0), FormatHM(0)
	d.Valid = false
	d.Error = msg
	return d
}

func hoursLabel(minutes int) string {
	if minutes%minutesPerHour == 0 {
		return fmt.Sprintf("%d", minutes/minutesPerHour)
	}
	return FormatHM(minutes)
}
