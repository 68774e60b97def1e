package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/theme"
)

// Report is one profile's month, ready to render.
type Report struct {
	ID          string
	Profile     string
	Year        int
	Month       int
	Days        []calc.Day
	Summary     calc.Summary
	GeneratedAt time.Time
	Palette     theme.Palette
}

// NewReport builds a monthly report. All days must belong to year-month.
func NewReport(profile string, year, month int, days []calc.Day) (*Report, error) {
	if err := calc.CheckSinglePeriod(days); err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	if len(days) > 0 {
		if y, m, _ := calc.ParsePeriod(days[0].Date); y != year || m != month {
			return nil, fmt.Errorf("build report: days are from %04d-%02d, not %04d-%02d", y, m, year, month)
		}
	}
	sum := calc.Summarize(days)
	sum.Year, sum.Month = year, month
	return &Report{
		ID:          uuid.NewString(),
		Profile:     profile,
		Year:        year,
		Month:       month,
		Days:        days,
		Summary:     sum,
		GeneratedAt: time.Now(),
		Palette:     theme.Get(theme.DefaultID),
	}, nil
}

// Title returns "Work hours: January 2025".
func (r *Report) Title() string {
	return "Work hours: " + calc.MonthYear(r.Year, r.Month)
}

// YearReport is one profile's year, month by month.
type YearReport struct {
	ID          string
	Profile     string
	Summary     calc.YearSummary
	GeneratedAt time.Time
	Palette     theme.Palette
}

func NewYearReport(profile string, ys calc.YearSummary) *YearReport {
	return &YearReport{
		ID:          uuid.NewString(),
		Profile:     profile,
		Summary:     ys,
		GeneratedAt: time.Now(),
		Palette:     theme.Get(theme.DefaultID),
	}
}

func (r *YearReport) Title() string {
	return fmt.Sprintf("Work hours: %d", r.Summary.Year)
}

// Format is an output format for reports.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatICS  Format = "ics"
)

var Formats = []Format{FormatPDF, FormatText, FormatCSV, FormatJSON, FormatICS}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	if f == "text" {
		f = FormatText
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Filename suggests "workhours_2025-01_jan-kowalski.pdf".
func (r *Report) Filename(f Format) string {
	return fmt.Sprintf("workhours_%04d-%02d_%s.%s", r.Year, r.Month, slug(r.Profile), f)
}

func (r *YearReport) Filename(f Format) string {
	return fmt.Sprintf("workhours_%04d_%s.%s", r.Summary.Year, slug(r.Profile), f)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, c := range strings.ToLower(s) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "profile"
	}
	return out
}

// Write renders r in format f to path.
func Write(r *Report, f Format, path string) error {
	switch f {
	case FormatPDF:
		return ToPDF(r, path)
	case FormatText:
		return writeFile(path, RenderText(r))
	case FormatCSV:
		return ToCSV(r, path)
	case FormatJSON:
		return ToJSON(r, path)
	case FormatICS:
		return ToICS(r, path)
	}
	return fmt.Errorf("unknown format %q", f)
}

// WriteYear renders a yearly report. Calendar output is not available for
// yearly reports.
func WriteYear(r *YearReport, f Format, path string) error {
	switch f {
	case FormatPDF:
		return YearToPDF(r, path)
	case FormatText:
		return writeFile(path, RenderYearText(r))
	case FormatCSV:
		return YearToCSV(r, path)
	case FormatJSON:
		return YearToJSON(r, path)
	}
	return fmt.Errorf("format %q is not supported for yearly reports", f)
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func dayTimes(d calc.Day) (start, end string) {
	start, end = d.StartTime, d.EndTime
	if start == "" {
		start = "-"
	}
	if end == "" {
		end = "-"
	}
	return start, end
}
