package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/store"
	"github.com/sadopc/workhours/internal/tracker"
)

// Monday
var testNow = time.Date(2025, 6, 30, 14, 0, 0, 0, time.UTC)

// testApp wires an App over an in-memory store with a fixed clock.
func testApp(t *testing.T) *App {
	t.Helper()
	st, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	now := func() time.Time { return testNow }
	return &App{
		Service:       tracker.New(st, calc.NewEngine(calc.DefaultRules(), now), nil),
		Now:           now,
		IsInteractive: func() bool { return false },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func defaultProfile(t *testing.T, app *App) *store.Profile {
	t.Helper()
	p, err := app.Service.ResolveProfile(context.Background(), "")
	require.NoError(t, err)
	return p
}

// --- Date arguments ---

func TestParseDate(t *testing.T) {
	d, err := parseDate("2025-06-02", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", d)

	d, err = parseDate(" yesterday ", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-29", d)

	_, err = parseDate("", testNow)
	assert.Error(t, err)
}

func TestParseMonthAndYear(t *testing.T) {
	y, m, err := parseMonth("", testNow)
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 6}, []int{y, m})

	y, m, err = parseMonth("2024-02", testNow)
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2}, []int{y, m})

	_, _, err = parseMonth("2024-13", testNow)
	assert.Error(t, err)

	y, err = parseYear("", testNow)
	require.NoError(t, err)
	assert.Equal(t, 2025, y)

	_, err = parseYear("25", testNow)
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "r.pdf", outputPath("", "r.pdf"))
	assert.Equal(t, filepath.Join(dir, "r.pdf"), outputPath(dir, "r.pdf"))
	assert.Equal(t, filepath.Join(dir, "mine.pdf"), outputPath(filepath.Join(dir, "mine.pdf"), "r.pdf"))
}

// --- log / delete ---

func TestLogCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "log", "2025-06-30", "--start", "08:00", "--end", "16:30", "--break", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2025-06-30 (Default User): Work day")
	assert.Contains(t, out, "net 8:00 (8.00 h)")

	day, err := app.Service.Day(context.Background(), defaultProfile(t, app).ID, "2025-06-30")
	require.NoError(t, err)
	assert.Equal(t, 480, day.NetMinutes)
}

func TestLogCmdNaturalDate(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "log", "yesterday", "--start", "22:00", "--end", "06:00")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2025-06-29")
	assert.Contains(t, out, "shift ends the next day")
}

func TestLogCmdOtherDayTypes(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "log", "2025-06-27", "--type", "sick_day", "--start", "08:00")
	require.NoError(t, err)
	assert.Contains(t, out, "Sick day")
	assert.Contains(t, out, "net 8:00")

	e, err := app.Service.StoredEntry(context.Background(), defaultProfile(t, app).ID, "2025-06-27")
	require.NoError(t, err)
	assert.Empty(t, e.StartTime, "hours are not stored for sick days")
}

func TestLogCmdRejected(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "log", "2025-06-30", "--start", "08:00", "--end", "08:10")
	assert.EqualError(t, err, "2025-06-30 rejected: too little work time (<15 minutes)")

	_, err = executeCmd(t, app, "log", "2025-07-01", "--start", "08:00", "--end", "16:00")
	assert.EqualError(t, err, "2025-07-01 rejected: date cannot be in the future")

	_, err = executeCmd(t, app, "log", "2025-06-30")
	assert.EqualError(t, err, "2025-06-30 rejected: missing hours for a work day")

	_, err = executeCmd(t, app, "log", "2025-06-30", "--type", "holiday")
	assert.Error(t, err)
}

func TestDeleteCmd(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "log", "2025-06-02", "--type", "vacation")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "delete", "2025-06-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2025-06-02")

	_, err = executeCmd(t, app, "delete", "2025-06-02")
	assert.EqualError(t, err, "no entry for 2025-06-02")
}

// --- month / year ---

func TestRootCmdPrintsCurrentMonth(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "June 2025 (Default User)")
	assert.Contains(t, out, "No entries.")
}

func TestMonthCmd(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "log", "2025-05-05", "--start", "09:00", "--end", "17:30", "--break", "30", "--notes", "onsite")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "log", "2025-05-06", "--type", "vacation")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "month", "2025-05")
	require.NoError(t, err)
	assert.Contains(t, out, "May 2025")
	assert.Contains(t, out, "2025-05-05")
	assert.Contains(t, out, "onsite")
	assert.Contains(t, out, "Vacation")
	assert.Contains(t, out, "Total 8:00 (8.00 h)  work 1  sick 0  vacation 1  off 0")

	_, err = executeCmd(t, app, "month", "May")
	assert.Error(t, err)
}

func TestYearCmd(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "log", "2025-05-05", "--start", "09:00", "--end", "17:00")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "log", "2025-06-02", "--start", "09:00", "--end", "13:00")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "year")
	require.NoError(t, err)
	assert.Contains(t, out, "May 2025")
	assert.Contains(t, out, "June 2025")
	assert.Contains(t, out, "Total 12:00 (12.00 h)")

	out, err = executeCmd(t, app, "year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries.")
}

// --- report ---

func TestReportCmdMonth(t *testing.T) {
	app := testApp(t)
	dir := t.TempDir()
	_, err := executeCmd(t, app, "log", "2025-06-02", "--start", "08:00", "--end", "16:00")
	require.NoError(t, err)

	for _, format := range []string{"pdf", "txt", "csv", "json", "ics"} {
		out, err := executeCmd(t, app, "report", "2025-06", "--format", format, "--output", dir)
		require.NoError(t, err, format)

		path := filepath.Join(dir, "workhours_2025-06_default-user."+format)
		assert.Contains(t, out, "Wrote "+path)
		info, err := os.Stat(path)
		require.NoError(t, err, format)
		assert.NotZero(t, info.Size(), format)
	}
}

func TestReportCmdYear(t *testing.T) {
	app := testApp(t)
	dir := t.TempDir()
	_, err := executeCmd(t, app, "log", "2025-06-02", "--start", "08:00", "--end", "16:00")
	require.NoError(t, err)

	path := filepath.Join(dir, "year.csv")
	_, err = executeCmd(t, app, "report", "2025", "-f", "csv", "-o", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = executeCmd(t, app, "report", "2025", "-f", "ics", "-o", dir)
	assert.ErrorContains(t, err, "not supported for yearly reports")

	_, err = executeCmd(t, app, "report", "--format", "docx")
	assert.Error(t, err)
}

// --- profiles ---

func TestProfileCmds(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "profile", "add", "Jan", "Kowalski")
	require.NoError(t, err)
	assert.Contains(t, out, "Created profile Jan Kowalski")

	out, err = executeCmd(t, app, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* Default User")
	assert.Contains(t, out, "  Jan Kowalski")

	out, err = executeCmd(t, app, "--profile", "Jan Kowalski", "log", "2025-06-30", "--type", "day_off")
	require.NoError(t, err)
	assert.Contains(t, out, "(Jan Kowalski)")

	out, err = executeCmd(t, app, "profile", "rename", "Jan Kowalski", "Jan Nowak")
	require.NoError(t, err)
	assert.Contains(t, out, "Renamed profile Jan Kowalski to Jan Nowak")

	out, err = executeCmd(t, app, "profile", "show", "Jan Nowak")
	require.NoError(t, err)
	assert.Contains(t, out, "Jan Nowak (created ")
	assert.Contains(t, out, "daily_target_hours")
	assert.Contains(t, out, "theme_id")

	_, err = executeCmd(t, app, "profile", "rm", "Jan Nowak")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "profile", "remove", "Default User")
	assert.EqualError(t, err, "the last profile cannot be deleted")

	_, err = executeCmd(t, app, "profile", "remove", "Nobody")
	assert.EqualError(t, err, `profile "Nobody" not found`)
}

func TestUnknownProfileFlag(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "--profile", "Ghost", "month")
	assert.ErrorContains(t, err, `profile "Ghost" not found`)
}

// --- wiring from a config file ---

func TestOpenFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := `[database]
path = "` + filepath.Join(dir, "data", "workhours.db") + `"

[app]
default_profile = "Default User"
theme = 5
daily_target_hours = 7.5

[log]
file = "` + filepath.Join(dir, "workhours.log") + `"
level = "debug"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	app := &App{Now: func() time.Time { return testNow }, IsInteractive: func() bool { return false }}
	t.Cleanup(func() { app.Close() })

	_, err := executeCmd(t, app, "--config", cfgPath, "profile", "add", "Anna Nowak")
	require.NoError(t, err)
	require.NotNil(t, app.Service)
	assert.Equal(t, 5, app.Config.App.Theme)

	p, err := app.Service.ResolveProfile(context.Background(), "Anna Nowak")
	require.NoError(t, err)
	prefs, err := app.Service.Preferences(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, tracker.Preferences{ThemeID: 5, DailyTargetHours: 7.5}, prefs)

	assert.FileExists(t, filepath.Join(dir, "data", "workhours.db"))
	require.NoError(t, app.Close())

	logData, err := os.ReadFile(filepath.Join(dir, "workhours.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "profile created")
}

func TestOpenBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[app]\ntheme = 42\n"), 0o644))

	app := &App{}
	_, err := executeCmd(t, app, "--config", cfgPath, "month")
	assert.ErrorContains(t, err, "loading config")
}
