// Package tui is the interactive terminal front end: a Bubble Tea program
// with one tab per view and huh forms for input.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/workhours/internal/export"
	"github.com/sadopc/workhours/internal/store"
	"github.com/sadopc/workhours/internal/tracker"
)

// Options configures the App beyond its service and starting profile.
type Options struct {
	// ExportDir receives exported reports; empty means the current directory.
	ExportDir string
	// Now is the punch clock's time source; nil means time.Now.
	Now func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	sess      *session
	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	log       logModel
	reports   reportsModel
	profiles  profilesModel
	settings  settingsModel

	help   help.Model
	status string
	isErr  bool
}

func NewApp(svc *tracker.Service, profile store.Profile, prefs tracker.Preferences, opts Options) App {
	h := help.New()
	h.ShowAll = false

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sess := &session{svc: svc, now: now, profile: profile, prefs: prefs}
	applyPalette(prefs.Palette())

	return App{
		sess:       sess,
		exportDir:  opts.ExportDir,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(sess),
		log:        newLogModel(sess),
		reports:    newReportsModel(sess),
		profiles:   newProfilesModel(sess),
		settings:   newSettingsModel(sess),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		a.log.refresh(),
		a.reports.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.log.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.profiles.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, a.reports.refresh()

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewLog
			return a, a.log.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewProfiles
			return a, a.profiles.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		// ticks only repaint the punch clock
		return a, tickCmd()

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil

	case daySavedMsg:
		a.status = fmt.Sprintf("Saved %s: %s, net %s", msg.day.Date, msg.day.Type.Label(), msg.day.NetHoursHM)
		a.isErr = false
		return a.broadcast(entriesChangedMsg{})

	case monthClearedMsg:
		a.status = fmt.Sprintf("Deleted %d entries of %s", msg.deleted, msg.label)
		a.isErr = false
		return a.broadcast(entriesChangedMsg{})

	case entriesChangedMsg:
		return a.broadcast(msg)

	case punchedOutMsg:
		a.activeView = viewLog
		a.status = "Punched out, review and save the entry"
		a.isErr = false
		var cmd tea.Cmd
		a.log, cmd = a.log.update(msg)
		return a, cmd

	case editDayMsg:
		a.activeView = viewLog
		var cmd tea.Cmd
		a.log, cmd = a.log.update(msg)
		return a, cmd

	case profileCreatedMsg:
		a.status = "Created profile " + msg.profile.Name
		a.isErr = false
		return a, a.profiles.refresh()

	case profileDeletedMsg:
		a.status = "Deleted profile " + msg.profile.Name
		a.isErr = false
		if msg.profile.ID == a.sess.profile.ID {
			return a, a.switchToDefault()
		}
		return a, a.profiles.refresh()

	case profileSwitchedMsg:
		a.sess.profile = msg.profile
		a.sess.prefs = msg.prefs
		applyPalette(msg.prefs.Palette())
		a.status = "Switched to " + msg.profile.Name
		a.isErr = false
		return a.broadcast(msg)

	case prefsChangedMsg:
		a.sess.prefs = msg.prefs
		applyPalette(msg.prefs.Palette())
		a.status = "Settings saved"
		a.isErr = false
		return a.broadcast(msg)
	}

	return a.updateActiveView(msg)
}

// broadcast delivers msg to every view, not just the active one.
func (a App) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.dashboard, cmd = a.dashboard.update(msg)
	cmds = append(cmds, cmd)
	a.log, cmd = a.log.update(msg)
	cmds = append(cmds, cmd)
	a.reports, cmd = a.reports.update(msg)
	cmds = append(cmds, cmd)
	a.profiles, cmd = a.profiles.update(msg)
	cmds = append(cmds, cmd)
	a.settings, cmd = a.settings.update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// switchToDefault moves the session to the first remaining profile.
func (a App) switchToDefault() tea.Cmd {
	svc := a.sess.svc
	return func() tea.Msg {
		profiles, err := svc.Profiles(context.Background())
		if err != nil || len(profiles) == 0 {
			return statusMsg{text: "No profile left to switch to", isError: true}
		}
		return switchProfile(svc, profiles[0])()
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewLog:
		a.log, cmd = a.log.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewProfiles:
		a.profiles, cmd = a.profiles.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewLog:
		return a.log.formActive
	case viewReports:
		return a.reports.formActive
	case viewProfiles:
		return a.profiles.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewLog:
		return a.log.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewProfiles:
		return a.profiles.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewLog:
		content = a.log.view()
	case viewReports:
		content = a.reports.view()
	case viewProfiles:
		content = a.profiles.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("workhours")
	profile := mutedStyle.Render(" · " + a.sess.profile.Name)
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(profile) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, profile, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Punch clock indicator in footer
	timerInfo := ""
	if a.dashboard.isRunning() {
		elapsed := a.dashboard.elapsed()
		timerInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.dashboard.isPaused() {
			timerInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var formatLabels = map[export.Format]string{
	export.FormatPDF:  "PDF report",
	export.FormatText: "Plain text report",
	export.FormatCSV:  "CSV",
	export.FormatJSON: "JSON",
	export.FormatICS:  "iCalendar (.ics)",
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export " + a.reports.periodLabel())
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+formatLabels[f]))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the month shown on the Reports tab in format f.
func (a App) doExport(f export.Format) tea.Cmd {
	sess, dir := a.sess, a.exportDir
	year, month := a.reports.year, a.reports.month
	return func() tea.Msg {
		m, err := sess.svc.Month(context.Background(), sess.profile.ID, year, month)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		r, err := export.NewReport(sess.profile.Name, year, month, m.Days)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		r.Palette = sess.prefs.Palette()

		path := filepath.Join(dir, r.Filename(f))
		if err := export.Write(r, f, path); err != nil {
			return statusMsg{text: fmt.Sprintf("%s error: %v", strings.ToUpper(string(f)), err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
