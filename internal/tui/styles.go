package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/workhours/internal/theme"
)

// Fixed colors; the accent colors come from the active palette.
var (
	colorMuted   = lipgloss.Color("#666666")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorWarning = lipgloss.Color("#F39C12")
	colorFg      = lipgloss.Color("#C0CAF5")
	colorSubtle  = lipgloss.Color("#414868")

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorError     lipgloss.Color
)

var (
	// Tabs
	activeTabStyle   lipgloss.Style
	inactiveTabStyle lipgloss.Style

	// Panels
	panelStyle       lipgloss.Style
	activePanelStyle lipgloss.Style

	// Text
	titleStyle     lipgloss.Style
	subtitleStyle  lipgloss.Style
	successStyle   lipgloss.Style
	warningStyle   lipgloss.Style
	errorStyle     lipgloss.Style
	mutedStyle     lipgloss.Style
	highlightStyle lipgloss.Style
	bigNumberStyle lipgloss.Style

	// Header/footer
	headerStyle lipgloss.Style
	footerStyle lipgloss.Style

	// List items
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style

	// Bars
	workBarStyle  lipgloss.Style
	sickBarStyle  lipgloss.Style
	emptyBarStyle lipgloss.Style
)

var activePalette theme.Palette

func init() {
	applyPalette(theme.Get(theme.DefaultID))
}

// applyPalette rebuilds every style from p.
func applyPalette(p theme.Palette) {
	activePalette = p
	colorPrimary = lipgloss.Color(p.Primary)
	colorSecondary = lipgloss.Color(p.Secondary)
	colorError = lipgloss.Color(p.Error)

	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorPrimary).
		Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorFg)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
		Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
		Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
		Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
		Foreground(colorSecondary)

	bigNumberStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary)

	headerStyle = lipgloss.NewStyle().
		Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	normalItemStyle = lipgloss.NewStyle().
		Foreground(colorFg)

	workBarStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	sickBarStyle = lipgloss.NewStyle().Foreground(colorSecondary)
	emptyBarStyle = lipgloss.NewStyle().Foreground(colorSubtle)
}

// formTheme is the huh theme matching the active palette.
func formTheme() *huh.Theme {
	t := huh.ThemeCharm()
	t.Focused.Title = t.Focused.Title.Foreground(colorPrimary)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(colorPrimary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(colorSecondary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(colorError)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(colorError)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Background(colorPrimary).
		Foreground(lipgloss.Color(activePalette.OnPrimary))
	return t
}
