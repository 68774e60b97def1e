package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/workhours/internal/theme"
)

type settingsModel struct {
	sess   *session
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	themeID     *int
	dailyTarget *string
	customColor *string
}

func newSettingsModel(sess *session) settingsModel {
	id, target, color := theme.DefaultID, "", ""
	return settingsModel{
		sess:        sess,
		themeID:     &id,
		dailyTarget: &target,
		customColor: &color,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.themeID = s.sess.prefs.ThemeID
	*s.dailyTarget = formatTarget(s.sess.prefs.DailyTargetHours)
	*s.customColor = s.sess.prefs.CustomPrimary

	palettes := theme.All()
	options := make([]huh.Option[int], len(palettes))
	for i, p := range palettes {
		options[i] = huh.NewOption(swatch(p)+" "+p.Name, p.ID)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().Title("Theme").Options(options...).Value(s.themeID),
			huh.NewInput().Title("Daily target (hours)").Value(s.dailyTarget).
				Validate(func(v string) error {
					_, err := parseTarget(v)
					return err
				}),
			huh.NewInput().Title("Custom color").
				Description("#RRGGBB to generate a palette from, empty to use the theme").
				CharLimit(7).
				Value(s.customColor).
				Validate(validateColor),
		).Title("Preferences"),
	).WithTheme(formTheme()).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.formActive = false
		return s, s.saveSettings()
	case huh.StateAborted:
		s.formActive = false
		s.form = nil
		return s, nil
	}

	return s, cmd
}

func (s settingsModel) saveSettings() tea.Cmd {
	sess := s.sess
	themeID, color := *s.themeID, *s.customColor
	target, err := parseTarget(*s.dailyTarget)
	if err != nil {
		return errorCmd(err)
	}
	if err := validateColor(color); err != nil {
		return errorCmd(err)
	}
	return func() tea.Msg {
		ctx := context.Background()
		pid := sess.profile.ID
		if err := sess.svc.SetTheme(ctx, pid, themeID); err != nil {
			return statusMsg{text: errorText(err), isError: true}
		}
		if err := sess.svc.SetDailyTarget(ctx, pid, target); err != nil {
			return statusMsg{text: errorText(err), isError: true}
		}
		if err := sess.svc.SetCustomPrimary(ctx, pid, color); err != nil {
			return statusMsg{text: errorText(err), isError: true}
		}
		prefs, err := sess.svc.Preferences(ctx, pid)
		if err != nil {
			return statusMsg{text: errorText(err), isError: true}
		}
		return prefsChangedMsg{prefs: prefs}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	p := s.sess.prefs.Palette()
	name := p.Name
	if c := s.sess.prefs.CustomPrimary; c != "" {
		name += " " + c
	}
	label := func(s string) string { return lipgloss.NewStyle().Width(24).Render(s) }

	rows := []string{
		title,
		"",
		fmt.Sprintf("  %s %s", label("Profile"), highlightStyle.Render(s.sess.profile.Name)),
		fmt.Sprintf("  %s %s %s", label("Theme"), swatch(p), highlightStyle.Render(name)),
		fmt.Sprintf("  %s %s", label("Daily target"), highlightStyle.Render(formatTarget(s.sess.prefs.DailyTargetHours)+" hours")),
		"",
		mutedStyle.Render("Press enter to edit settings"),
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// swatch renders the palette's primary and secondary colors as blocks.
func swatch(p theme.Palette) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Primary)).Render("██") +
		lipgloss.NewStyle().Foreground(lipgloss.Color(p.Secondary)).Render("██")
}

func validateColor(v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	_, err := theme.NormalizeHex(v)
	return err
}

func formatTarget(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func parseTarget(s string) (float64, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64)
	if err != nil {
		return 0, errors.New("enter a number of hours, e.g. 8 or 7.5")
	}
	if h <= 0 || h > 24 {
		return 0, errors.New("daily target must be between 0 and 24 hours")
	}
	return h, nil
}
