package export

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/theme"
)

const (
	pdfRowHeight   = 7.0
	pdfFooterSpace = 15.0
)

// pdfDoc wraps fpdf with the report's palette and a cp1252 translator for
// the core fonts.
type pdfDoc struct {
	*fpdf.Fpdf
	tr      func(string) string
	palette theme.Palette
}

func newPDFDoc(title, profile string, palette theme.Palette) *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	d := &pdfDoc{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), palette: palette}

	pdf.SetTitle(title, true)
	pdf.SetAuthor(profile, true)
	pdf.SetCreator("workhours", false)
	pdf.SetAutoPageBreak(true, pdfFooterSpace+5)
	pdf.AliasNbPages("")

	pdf.SetHeaderFunc(func() {
		r, g, b := theme.RGB(palette.Primary)
		pdf.SetFillColor(r, g, b)
		r, g, b = theme.RGB(palette.OnPrimary)
		pdf.SetTextColor(r, g, b)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 12, d.tr(title), "", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 6, d.tr("Profile: "+profile), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfFooterSpace)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	return d
}

func (d *pdfDoc) tableHeader(cols []string, widths []float64) {
	r, g, b := theme.RGB(d.palette.PrimaryVariant)
	d.SetFillColor(r, g, b)
	d.SetTextColor(255, 255, 255)
	d.SetFont("Helvetica", "B", 9)
	for i, c := range cols {
		d.CellFormat(widths[i], pdfRowHeight, d.tr(c), "1", 0, "C", true, 0, "")
	}
	d.Ln(-1)
	d.SetTextColor(0, 0, 0)
	d.SetFont("Helvetica", "", 9)
}

func (d *pdfDoc) tableRow(cells []string, widths []float64, shade bool) {
	light := theme.Blend(d.palette.Secondary, "#FFFFFF", 0.85)
	r, g, b := theme.RGB(light)
	d.SetFillColor(r, g, b)
	for i, c := range cells {
		align := "C"
		if i == len(cells)-1 {
			align = "L"
		}
		d.CellFormat(widths[i], pdfRowHeight, d.fitCell(d.tr(c), widths[i]), "1", 0, align, shade, 0, "")
	}
	d.Ln(-1)
}

// fitCell cuts translated text s with an ellipsis so it stays inside a cell
// of width w. Core fonts are single-byte, so trimming bytes is safe.
func (d *pdfDoc) fitCell(s string, w float64) string {
	room := w - 2*d.GetCellMargin()
	if d.GetStringWidth(s) <= room {
		return s
	}
	room -= d.GetStringWidth("...")
	for len(s) > 0 && d.GetStringWidth(s) > room {
		s = s[:len(s)-1]
	}
	return strings.TrimRight(s, " ") + "..."
}

func (d *pdfDoc) section(title string) {
	d.Ln(4)
	d.SetFont("Helvetica", "B", 11)
	d.CellFormat(0, 8, d.tr(title), "", 1, "L", false, 0, "")
}

func (d *pdfDoc) summary(s calc.Summary) {
	rows := [][2]string{
		{"Work days", strconv.Itoa(s.WorkDays)},
		{"Sick days", strconv.Itoa(s.SickDays)},
		{"Vacation days", strconv.Itoa(s.VacationDays)},
		{"Days off", strconv.Itoa(s.DayOffs)},
		{"Total hours", fmt.Sprintf("%s (%.2f h)", s.TotalHoursHM, s.TotalHoursDecimal)},
		{"Average per day", fmt.Sprintf("%.2f h", s.AverageDailyHours)},
	}
	d.SetFont("Helvetica", "", 10)
	for i, row := range rows {
		d.tableRow([]string{row[0], row[1]}, []float64{60, 60}, i%2 == 1)
	}
}

var pdfDayColumns = []string{"Date", "Type", "Start", "End", "Break", "Net", "Notes"}
var pdfDayWidths = []float64{24, 24, 16, 18, 14, 18, 76}

// WritePDF renders the monthly report to w.
func WritePDF(w io.Writer, r *Report) error {
	d := newPDFDoc(r.Title(), r.Profile, r.Palette)
	d.SetCreationDate(r.GeneratedAt)
	d.AddPage()

	d.section("Summary")
	d.summary(r.Summary)

	d.section("Days")
	if len(r.Days) == 0 {
		d.SetFont("Helvetica", "I", 10)
		d.CellFormat(0, pdfRowHeight, "No entries.", "", 1, "L", false, 0, "")
	} else {
		d.tableHeader(pdfDayColumns, pdfDayWidths)
		_, pageH := d.GetPageSize()
		for i, day := range r.Days {
			if d.GetY()+pdfRowHeight > pageH-pdfFooterSpace-5 {
				d.AddPage()
				d.tableHeader(pdfDayColumns, pdfDayWidths)
			}
			d.tableRow(pdfDayCells(day), pdfDayWidths, i%2 == 1)
		}
	}

	d.Ln(4)
	d.SetFont("Helvetica", "I", 8)
	d.CellFormat(0, 5, "Report "+r.ID+", generated "+r.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")

	if err := d.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func pdfDayCells(day calc.Day) []string {
	start, end := dayTimes(day)
	if day.MidnightCrossing {
		end += " +1"
	}
	net := day.NetHoursHM
	notes := day.Notes
	if !day.Valid {
		net = "-"
		notes = day.Error
	}
	return []string{day.Date, day.Type.Label(), start, end, strconv.Itoa(day.BreakMinutes), net, notes}
}

func ToPDF(r *Report, path string) error {
	return writePDFFile(path, func(w io.Writer) error { return WritePDF(w, r) })
}

var pdfYearColumns = []string{"Month", "Work", "Sick", "Vacation", "Off", "Total", "Avg (h/day)"}
var pdfYearWidths = []float64{40, 20, 20, 22, 18, 30, 30}

// WriteYearPDF renders the yearly report to w.
func WriteYearPDF(w io.Writer, r *YearReport) error {
	d := newPDFDoc(r.Title(), r.Profile, r.Palette)
	d.SetCreationDate(r.GeneratedAt)
	d.AddPage()

	d.section("Months")
	d.tableHeader(pdfYearColumns, pdfYearWidths)
	for i, m := range r.Summary.Months {
		d.tableRow([]string{
			calc.MonthYear(m.Year, m.Month),
			strconv.Itoa(m.WorkDays), strconv.Itoa(m.SickDays),
			strconv.Itoa(m.VacationDays), strconv.Itoa(m.DayOffs),
			m.TotalHoursHM, fmt.Sprintf("%.2f", m.AverageDailyHours),
		}, pdfYearWidths, i%2 == 1)
	}
	ys := r.Summary
	d.SetFont("Helvetica", "B", 9)
	d.tableRow([]string{
		"Total",
		strconv.Itoa(ys.WorkDays), strconv.Itoa(ys.SickDays),
		strconv.Itoa(ys.VacationDays), strconv.Itoa(ys.DayOffs),
		ys.TotalHoursHM, fmt.Sprintf("%.2f", ys.AverageDailyHours),
	}, pdfYearWidths, false)

	if err := d.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func YearToPDF(r *YearReport, path string) error {
	return writePDFFile(path, func(w io.Writer) error { return WriteYearPDF(w, r) })
}

func writePDFFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
