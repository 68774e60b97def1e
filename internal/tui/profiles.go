package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/store"
	"github.com/sadopc/workhours/internal/tracker"
)

type profilesModel struct {
	sess   *session
	width  int
	height int

	profiles []store.Profile
	cursor   int

	formActive bool
	form       *huh.Form
	formType   string // "create" or "delete"

	// Form field pointers (survive value copies)
	formName    *string
	formConfirm *bool
}

func newProfilesModel(sess *session) profilesModel {
	name, confirm := "", false
	return profilesModel{
		sess:        sess,
		formName:    &name,
		formConfirm: &confirm,
	}
}

func (p *profilesModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type profilesDataMsg struct {
	profiles []store.Profile
	err      error
}

func (p profilesModel) refresh() tea.Cmd {
	svc := p.sess.svc
	return func() tea.Msg {
		profiles, err := svc.Profiles(context.Background())
		return profilesDataMsg{profiles: profiles, err: err}
	}
}

func (p profilesModel) update(msg tea.Msg) (profilesModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case profilesDataMsg:
		if msg.err != nil {
			return p, errorCmd(msg.err)
		}
		p.profiles = msg.profiles
		if p.cursor >= len(p.profiles) {
			p.cursor = max(0, len(p.profiles)-1)
		}
		return p, nil

	case profileSwitchedMsg:
		return p, p.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.profiles)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if len(p.profiles) > 0 {
				return p, switchProfile(p.sess.svc, p.profiles[p.cursor])
			}
		case key.Matches(msg, keys.New):
			return p.showCreateForm()
		case key.Matches(msg, keys.Delete):
			if len(p.profiles) > 0 {
				return p.showDeleteForm()
			}
		}
	}
	return p, nil
}

// switchProfile loads the preferences of prof and announces the switch.
func switchProfile(svc *tracker.Service, prof store.Profile) tea.Cmd {
	return func() tea.Msg {
		prefs, err := svc.Preferences(context.Background(), prof.ID)
		if err != nil {
			return statusMsg{text: errorText(err), isError: true}
		}
		return profileSwitchedMsg{profile: prof, prefs: prefs}
	}
}

func (p profilesModel) showCreateForm() (profilesModel, tea.Cmd) {
	*p.formName = ""
	p.formType = "create"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Profile name").Value(p.formName).
				Validate(func(s string) error {
					return calc.ValidateProfileName(strings.TrimSpace(s))
				}),
		),
	).WithTheme(formTheme()).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p profilesModel) showDeleteForm() (profilesModel, tea.Cmd) {
	prof := p.profiles[p.cursor]
	*p.formConfirm = false
	p.formType = "delete"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q with all its entries?", prof.Name)).
				Affirmative("Delete").
				Negative("Keep").
				Value(p.formConfirm),
		),
	).WithTheme(formTheme()).WithShowHelp(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p profilesModel) updateForm(msg tea.Msg) (profilesModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	switch p.form.State {
	case huh.StateCompleted:
		p.formActive = false
		switch p.formType {
		case "create":
			return p, p.createProfile(*p.formName)
		case "delete":
			if *p.formConfirm && p.cursor < len(p.profiles) {
				return p, p.deleteProfile(p.profiles[p.cursor])
			}
		}
		return p, nil
	case huh.StateAborted:
		p.formActive = false
		p.form = nil
		return p, nil
	}

	return p, cmd
}

func (p profilesModel) createProfile(name string) tea.Cmd {
	svc := p.sess.svc
	return func() tea.Msg {
		prof, err := svc.CreateProfile(context.Background(), name)
		if err != nil {
			return statusMsg{text: errorText(err), isError: true}
		}
		return profileCreatedMsg{profile: *prof}
	}
}

type profileCreatedMsg struct {
	profile store.Profile
}

type profileDeletedMsg struct {
	profile store.Profile
}

func (p profilesModel) deleteProfile(prof store.Profile) tea.Cmd {
	svc := p.sess.svc
	return func() tea.Msg {
		if err := svc.DeleteProfile(context.Background(), prof.ID); err != nil {
			if errors.Is(err, tracker.ErrLastProfile) {
				return statusMsg{text: "The last profile cannot be deleted", isError: true}
			}
			return statusMsg{text: errorText(err), isError: true}
		}
		return profileDeletedMsg{profile: prof}
	}
}

func (p profilesModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Profile")
		if p.formType == "delete" {
			title = titleStyle.Render("Delete Profile")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return activePanelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Profiles")
	if len(p.profiles) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No profiles yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-32s %s", "Name", "Created")))

	for i, prof := range p.profiles {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		active := "  "
		if prof.ID == p.sess.profile.ID {
			active = successStyle.Render("● ")
		}
		row := style.Render(fmt.Sprintf("%s%-32s %s", cursor, prof.Name, prof.CreatedAt.Local().Format("2006-01-02")))
		rows = append(rows, active+row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: switch  n: new  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
