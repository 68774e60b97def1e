package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/workhours/internal/calc"
)

type jsonReport struct {
	ID          string       `json:"id"`
	Profile     string       `json:"profile"`
	Period      string       `json:"period"`
	GeneratedAt string       `json:"generated_at"`
	Summary     calc.Summary `json:"summary"`
	Days        []calc.Day   `json:"days"`
}

type jsonYearReport struct {
	ID          string           `json:"id"`
	Profile     string           `json:"profile"`
	GeneratedAt string           `json:"generated_at"`
	Summary     calc.YearSummary `json:"summary"`
}

func ToJSON(r *Report, path string) error {
	days := r.Days
	if days == nil {
		days = []calc.Day{}
	}
	return writeJSON(path, jsonReport{
		ID:          r.ID,
		Profile:     r.Profile,
		Period:      fmt.Sprintf("%04d-%02d", r.Year, r.Month),
		GeneratedAt: r.GeneratedAt.UTC().Format(time.RFC3339),
		Summary:     r.Summary,
		Days:        days,
	})
}

func YearToJSON(r *YearReport, path string) error {
	return writeJSON(path, jsonYearReport{
		ID:          r.ID,
		Profile:     r.Profile,
		GeneratedAt: r.GeneratedAt.UTC().Format(time.RFC3339),
		Summary:     r.Summary,
	})
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
