package calc

import (
	"fmt"
	"math"
)

// Summary aggregates the days of one period, usually a calendar month.
type Summary struct {
	Year              int      `json:"year"`
	Month             int      `json:"month"`
	WorkDays          int      `json:"work_days"`
	SickDays          int      `json:"sick_days"`
	VacationDays      int      `json:"vacation_days"`
	DayOffs           int      `json:"day_offs"`
	PaidDays          int      `json:"paid_days"` // days with NetMinutes > 0
	TotalNetMinutes   int      `json:"total_net_minutes"`
	TotalHoursDecimal float64  `json:"total_hours_decimal"`
	TotalHoursHM      string   `json:"total_hours_hm"`
	AverageDailyHours float64  `json:"average_daily_hours"`
	DaysWithEntries   []string `json:"days_with_entries"`
}

// Summarize aggregates days into one Summary. The period is taken from the
// first element; callers pass a single period's days (see CheckSinglePeriod).
// Invalid days are skipped entirely.
func Summarize(days []Day) Summary {
	s := Summary{TotalHoursHM: FormatHM(0), DaysWithEntries: []string{}}
	if len(days) == 0 {
		return s
	}
	s.Year, s.Month, _ = ParsePeriod(days[0].Date)

	for _, d := range days {
		if !d.Valid {
			continue
		}
		switch d.Type {
		case WorkDay:
			s.WorkDays++
		case SickDay:
			s.SickDays++
		case Vacation:
			s.VacationDays++
		case DayOff:
			s.DayOffs++
		}
		s.TotalNetMinutes += d.NetMinutes
		if d.NetMinutes > 0 {
			s.PaidDays++
		}
		s.DaysWithEntries = append(s.DaysWithEntries, d.Date)
	}
	s.TotalHoursDecimal = DecimalHours(s.TotalNetMinutes)
	s.TotalHoursHM = FormatHM(s.TotalNetMinutes)
	s.AverageDailyHours = averageHours(s.TotalNetMinutes, s.PaidDays)
	return s
}

func averageHours(totalMinutes, days int) float64 {
	if days == 0 {
		return 0
	}
	return round2(float64(totalMinutes) / minutesPerHour / float64(days))
}

// CheckSinglePeriod returns an error if days span more than one year-month.
func CheckSinglePeriod(days []Day) error {
	if len(days) == 0 {
		return nil
	}
	y, m, ok := ParsePeriod(days[0].Date)
	if !ok {
		return fmt.Errorf("unparseable date %q", days[0].Date)
	}
	for _, d := range days[1:] {
		dy, dm, ok := ParsePeriod(d.Date)
		if !ok {
			return fmt.Errorf("unparseable date %q", d.Date)
		}
		if dy != y || dm != m {
			return fmt.Errorf("%s is outside %04d-%02d", d.Date, y, m)
		}
	}
	return nil
}

// YearSummary rolls monthly summaries up into one year.
type YearSummary struct {
	Year              int       `json:"year"`
	Months            []Summary `json:"months"`
	WorkDays          int       `json:"work_days"`
	SickDays          int       `json:"sick_days"`
	VacationDays      int       `json:"vacation_days"`
	DayOffs           int       `json:"day_offs"`
	PaidDays          int       `json:"paid_days"`
	TotalNetMinutes   int       `json:"total_net_minutes"`
	TotalHoursDecimal float64   `json:"total_hours_decimal"`
	TotalHoursHM      string    `json:"total_hours_hm"`
	AverageDailyHours float64   `json:"average_daily_hours"`
}

// SummarizeYear combines the months of year. Months from other years and
// months without any valid entry are dropped; the rest are kept in
// ascending order.
func SummarizeYear(year int, months []Summary) YearSummary {
	ys := YearSummary{Year: year, Months: []Summary{}}
	var byMonth [13]*Summary
	for i := range months {
		m := months[i]
		if m.Year != year || m.Month < 1 || m.Month > 12 || len(m.DaysWithEntries) == 0 {
			continue
		}
		byMonth[m.Month] = &months[i]
	}

	for month := 1; month <= 12; month++ {
		m := byMonth[month]
		if m == nil {
			continue
		}
		ys.Months = append(ys.Months, *m)
		ys.WorkDays += m.WorkDays
		ys.SickDays += m.SickDays
		ys.VacationDays += m.VacationDays
		ys.DayOffs += m.DayOffs
		ys.TotalNetMinutes += m.TotalNetMinutes
		ys.PaidDays += m.PaidDays
	}
	ys.TotalHoursDecimal = DecimalHours(ys.TotalNetMinutes)
	ys.TotalHoursHM = FormatHM(ys.TotalNetMinutes)
	ys.AverageDailyHours = averageHours(ys.TotalNetMinutes, ys.PaidDays)
	return ys
}

// EstimateRequiredTime splits targetHours into full days of dailyHours and
// the hours left over.
func EstimateRequiredTime(targetHours, dailyHours float64) (days int, remainingHours float64) {
	if dailyHours <= 0 {
		return 0, targetHours
	}
	totalMinutes := int(math.Round(targetHours * minutesPerHour))
	dailyMinutes := int(math.Round(dailyHours * minutesPerHour))
	if dailyMinutes == 0 {
		return 0, targetHours
	}
	days = totalMinutes / dailyMinutes
	return days, DecimalHours(totalMinutes % dailyMinutes)
}
