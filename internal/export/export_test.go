package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/theme"
)

var testEngine = calc.NewEngine(calc.DefaultRules(), nil)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	days := []calc.Day{
		testEngine.CalculateDay(calc.Entry{Date: "2025-01-13", StartTime: "09:00", EndTime: "17:30", BreakMinutes: 30, Type: calc.WorkDay, Notes: "sprint, planning"}),
		testEngine.CalculateDay(calc.Entry{Date: "2025-01-14", StartTime: "22:00", EndTime: "06:00", Type: calc.WorkDay}),
		testEngine.CalculateDay(calc.Entry{Date: "2025-01-15", Type: calc.SickDay}),
		testEngine.CalculateDay(calc.Entry{Date: "2025-01-16", Type: calc.Vacation}),
		testEngine.CalculateDay(calc.Entry{Date: "2025-01-17", StartTime: "09:00", EndTime: "09:05", Type: calc.WorkDay}),
	}
	r, err := NewReport("Jan Kowalski", 2025, 1, days)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	r.GeneratedAt = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	return r
}

func monthOfDays(t *testing.T, n int) *Report {
	t.Helper()
	var days []calc.Day
	for i := 1; i <= n; i++ {
		days = append(days, testEngine.CalculateDay(calc.Entry{
			Date: fmt.Sprintf("2025-03-%02d", i), StartTime: "08:00", EndTime: "16:00", Type: calc.WorkDay,
		}))
	}
	r, err := NewReport("Ops", 2025, 3, days)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func sampleYearReport() *YearReport {
	jan := calc.Summarize([]calc.Day{
		testEngine.CalculateDay(calc.Entry{Date: "2025-01-02", StartTime: "08:00", EndTime: "16:00", Type: calc.WorkDay}),
	})
	feb := calc.Summarize([]calc.Day{
		testEngine.CalculateDay(calc.Entry{Date: "2025-02-03", Type: calc.SickDay}),
		testEngine.CalculateDay(calc.Entry{Date: "2025-02-04", Type: calc.DayOff}),
	})
	return NewYearReport("Jan Kowalski", calc.SummarizeYear(2025, []calc.Summary{jan, feb}))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// Report
// ============================================================

func TestNewReport(t *testing.T) {
	r := sampleReport(t)
	if r.ID == "" {
		t.Fatal("expected report id")
	}
	if r.Summary.WorkDays != 2 || r.Summary.SickDays != 1 || r.Summary.VacationDays != 1 {
		t.Fatalf("unexpected summary: %+v", r.Summary)
	}
	if r.Summary.TotalNetMinutes != 480+480+480 {
		t.Fatalf("total = %d, want 1440", r.Summary.TotalNetMinutes)
	}
	if r.Title() != "Work hours: January 2025" {
		t.Fatalf("title = %q", r.Title())
	}
	if other := sampleReport(t); other.ID == r.ID {
		t.Fatal("report ids must be unique")
	}
}

func TestNewReportMixedMonths(t *testing.T) {
	days := []calc.Day{
		testEngine.CalculateDay(calc.Entry{Date: "2025-01-31", Type: calc.DayOff}),
		testEngine.CalculateDay(calc.Entry{Date: "2025-02-01", Type: calc.DayOff}),
	}
	if _, err := NewReport("x", 2025, 1, days); err == nil {
		t.Fatal("expected error for days spanning two months")
	}
	if _, err := NewReport("x", 2025, 2, days[:1]); err == nil {
		t.Fatal("expected error for days outside the requested month")
	}
}

func TestNewReportEmpty(t *testing.T) {
	r, err := NewReport("x", 2025, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Summary.Year != 2025 || r.Summary.Month != 4 {
		t.Fatalf("empty report should keep its period, got %d-%d", r.Summary.Year, r.Summary.Month)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"pdf", FormatPDF},
		{"PDF", FormatPDF},
		{".csv", FormatCSV},
		{"text", FormatText},
		{"txt", FormatText},
		{"ics", FormatICS},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestFilename(t *testing.T) {
	r := sampleReport(t)
	if got := r.Filename(FormatPDF); got != "workhours_2025-01_jan-kowalski.pdf" {
		t.Fatalf("Filename = %q", got)
	}
	if got := sampleYearReport().Filename(FormatCSV); got != "workhours_2025_jan-kowalski.csv" {
		t.Fatalf("year Filename = %q", got)
	}
	if got := slug("ŁŁ"); got != "profile" {
		t.Fatalf("slug fallback = %q", got)
	}
}

func TestWriteDispatch(t *testing.T) {
	r := sampleReport(t)
	dir := t.TempDir()
	for _, f := range Formats {
		path := filepath.Join(dir, r.Filename(f))
		if err := Write(r, f, path); err != nil {
			t.Fatalf("Write %s: %v", f, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("%s: expected non-empty file", f)
		}
	}
	if err := WriteYear(sampleYearReport(), FormatICS, filepath.Join(dir, "y.ics")); err == nil {
		t.Fatal("expected error for yearly calendar export")
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	r := sampleReport(t)
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(r, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	records := readCSV(t, path)

	// header + 5 days + total
	if len(records) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(records))
	}
	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "2025-01-13" || row[1] != "Work day" || row[4] != "30" || row[6] != "8:00" || row[7] != "8.00" {
		t.Fatalf("unexpected first row: %v", row)
	}
	if row[10] != "sprint, planning" {
		t.Fatalf("notes with comma not preserved: %q", row[10])
	}

	sick := records[3]
	if sick[2] != "-" || sick[3] != "-" {
		t.Fatalf("sick day should have no times, got %v", sick)
	}

	invalid := records[5]
	if invalid[8] != "false" || !strings.Contains(invalid[9], "too little") {
		t.Fatalf("invalid row not flagged: %v", invalid)
	}

	total := records[6]
	if total[0] != "Total" || total[6] != "24:00" || total[7] != "24.00" {
		t.Fatalf("unexpected total row: %v", total)
	}
}

func TestToCSVEmpty(t *testing.T) {
	r, _ := NewReport("x", 2025, 1, nil)
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(r, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 2 {
		t.Fatalf("expected header and total only, got %d rows", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(sampleReport(t), "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestYearToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "year.csv")
	if err := YearToCSV(sampleYearReport(), path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if len(records) != 4 {
		t.Fatalf("expected header, 2 months, total; got %d rows", len(records))
	}
	if records[1][0] != "2025-01" || records[2][0] != "2025-02" {
		t.Fatalf("unexpected months: %v", records)
	}
	if records[3][5] != "16:00" {
		t.Fatalf("year total = %q, want 16:00", records[3][5])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	r := sampleReport(t)
	path := filepath.Join(t.TempDir(), "test.json")
	if err := ToJSON(r, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonReport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if result.ID != r.ID || result.Profile != "Jan Kowalski" || result.Period != "2025-01" {
		t.Fatalf("unexpected header: %+v", result)
	}
	if len(result.Days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(result.Days))
	}
	if !result.Days[1].MidnightCrossing {
		t.Fatal("midnight crossing flag lost")
	}
	if _, err := time.Parse(time.RFC3339, result.GeneratedAt); err != nil {
		t.Fatalf("generated_at is not RFC3339: %q", result.GeneratedAt)
	}
	for _, key := range []string{`"is_valid"`, `"net_hours_hm"`, `"days_with_entries"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("missing key %s", key)
		}
	}
}

func TestToJSONEmptyDays(t *testing.T) {
	r, _ := NewReport("x", 2025, 1, nil)
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(r, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"days": []`) {
		t.Fatalf("days should be an empty array:\n%s", data)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(sampleReport(t), "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestYearToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "year.json")
	if err := YearToJSON(sampleYearReport(), path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	var result jsonYearReport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Summary.Months) != 2 || result.Summary.TotalNetMinutes != 960 {
		t.Fatalf("unexpected year summary: %+v", result.Summary)
	}
}

// ============================================================
// Text
// ============================================================

func TestRenderText(t *testing.T) {
	out := RenderText(sampleReport(t))

	for _, want := range []string{
		"Work hours: January 2025",
		"Profile: Jan Kowalski",
		"2025-01-13",
		"06:00 +1",
		"Sick day",
		"invalid",
		"Page 1/1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("text report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, pageBreak) {
		t.Fatal("single page report should have no page break")
	}
}

func TestRenderTextPaginates(t *testing.T) {
	out := RenderText(monthOfDays(t, 31))

	if n := strings.Count(out, pageBreak); n != 1 {
		t.Fatalf("expected 1 page break for 31 days, got %d", n)
	}
	if !strings.Contains(out, "Page 2/2") {
		t.Fatal("missing second page footer")
	}
	pages := strings.Split(out, pageBreak)
	if !strings.Contains(pages[1], "2025-03-31") || strings.Contains(pages[1], "2025-03-20") {
		t.Fatal("second page should hold days 21-31 only")
	}
}

func TestRenderTextEmpty(t *testing.T) {
	r, _ := NewReport("x", 2025, 1, nil)
	if out := RenderText(r); !strings.Contains(out, "No entries.") {
		t.Fatalf("expected empty notice:\n%s", out)
	}
}

func TestRenderYearText(t *testing.T) {
	out := RenderYearText(sampleYearReport())
	for _, want := range []string{"Work hours: 2025", "January 2025", "February 2025", "Total", "16:00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("year text missing %q:\n%s", want, out)
		}
	}
}

// ============================================================
// PDF
// ============================================================

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleReport(t)); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
}

func TestWritePDFMultiPage(t *testing.T) {
	var short, long bytes.Buffer
	if err := WritePDF(&short, monthOfDays(t, 2)); err != nil {
		t.Fatal(err)
	}
	if err := WritePDF(&long, monthOfDays(t, 31)); err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(long.Bytes(), []byte("/Type /Page\n")); n < 2 {
		t.Fatalf("expected at least 2 pages for 31 days, got %d", n)
	}
	if bytes.Count(short.Bytes(), []byte("/Type /Page\n")) != 1 {
		t.Fatal("expected a single page for 2 days")
	}
}

func TestToPDFBadPath(t *testing.T) {
	if err := ToPDF(sampleReport(t), "/nonexistent/dir/file.pdf"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestWritePDFFileRemovesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	err := writePDFFile(path, func(w io.Writer) error {
		w.Write([]byte("%PDF-1.3 truncated"))
		return errors.New("render failed")
	})
	if err == nil {
		t.Fatal("expected the render error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("partial pdf left behind: %v", err)
	}
}

func TestPDFFitCell(t *testing.T) {
	d := newPDFDoc("t", "p", theme.Get(theme.DefaultID))
	d.AddPage()
	d.SetFont("Helvetica", "", 9)
	width := pdfDayWidths[len(pdfDayWidths)-1]

	if got := d.fitCell("short note", width); got != "short note" {
		t.Fatalf("short text changed to %q", got)
	}

	long := strings.Repeat("a rather long note ", 11)[:200]
	got := d.fitCell(d.tr(long), width)
	if !strings.HasSuffix(got, "...") || len(got) >= len(long) {
		t.Fatalf("long text not shortened: %q", got)
	}
	if w := d.GetStringWidth(got); w > width-2*d.GetCellMargin() {
		t.Fatalf("fitted text is %.1fmm wide, cell is %.1fmm", w, width)
	}
}

func TestWritePDFLongNotes(t *testing.T) {
	day := testEngine.CalculateDay(calc.Entry{
		Date: "2025-01-13", StartTime: "09:00", EndTime: "17:00", Type: calc.WorkDay,
		Notes: strings.Repeat("x", 200),
	})
	r, err := NewReport("Jan Kowalski", 2025, 1, []calc.Day{day})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, r); err != nil {
		t.Fatal(err)
	}
}

func TestWriteYearPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYearPDF(&buf, sampleYearReport()); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
}

// ============================================================
// iCalendar
// ============================================================

func TestWriteICS(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteICS(&buf, sampleReport(t)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if n := strings.Count(out, "BEGIN:VEVENT"); n != 4 {
		t.Fatalf("expected 4 events (invalid day skipped), got %d", n)
	}
	for _, want := range []string{
		"DTSTART:20250113T090000",
		"DTEND:20250113T173000",
		"DTEND:20250115T060000",
		"DTSTART;VALUE=DATE:20250115",
		"SUMMARY:Sick day",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("calendar missing %q:\n%s", want, out)
		}
	}
}

func TestWriteICSStableUIDs(t *testing.T) {
	var a, b bytes.Buffer
	WriteICS(&a, sampleReport(t))
	WriteICS(&b, sampleReport(t))
	uids := func(s string) []string {
		var out []string
		for _, line := range strings.Split(s, "\r\n") {
			if strings.HasPrefix(line, "UID:") {
				out = append(out, line)
			}
		}
		return out
	}
	ua, ub := uids(a.String()), uids(b.String())
	if len(ua) != 4 || strings.Join(ua, ",") != strings.Join(ub, ",") {
		t.Fatalf("UIDs should be stable across exports: %v vs %v", ua, ub)
	}
}

func TestWriteICSNothingToExport(t *testing.T) {
	r, _ := NewReport("x", 2025, 1, nil)
	var buf bytes.Buffer
	if err := WriteICS(&buf, r); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}
