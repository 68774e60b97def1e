package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/workhours/internal/store"
	"github.com/sadopc/workhours/internal/tracker"
)

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}

	cmd.AddCommand(
		newProfileListCmd(app),
		newProfileAddCmd(app),
		newProfileRenameCmd(app),
		newProfileShowCmd(app),
		newProfileRemoveCmd(app),
	)
	return cmd
}

func newProfileListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := app.Service.Profiles(cmd.Context())
			if err != nil {
				return err
			}
			current, err := app.resolveProfile(cmd.Context())
			if err != nil {
				current = &store.Profile{}
			}
			out := cmd.OutOrStdout()
			for _, p := range profiles {
				marker := "  "
				if p.ID == current.ID {
					marker = "* "
				}
				fmt.Fprintf(out, "%s%s  (created %s)\n", marker, p.Name, p.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func newProfileAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a profile",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Service.CreateProfile(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s\n", p.Name)
			return nil
		},
	}
}

// lookupProfile resolves an explicit profile name argument.
func lookupProfile(cmd *cobra.Command, app *App, name string) (*store.Profile, error) {
	p, err := app.Service.ResolveProfile(cmd.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	return p, err
}

func newProfileRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := lookupProfile(cmd, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Service.RenameProfile(cmd.Context(), p.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed profile %s to %s\n", p.Name, strings.TrimSpace(args[1]))
			return nil
		},
	}
}

func newProfileShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show a profile and its settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p *store.Profile
			var err error
			if len(args) == 1 {
				p, err = lookupProfile(cmd, app, args[0])
			} else {
				p, err = app.resolveProfile(cmd.Context())
			}
			if err != nil {
				return err
			}
			settings, err := app.Service.Settings(cmd.Context(), p.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (created %s)\n", p.Name, p.CreatedAt.Format("2006-01-02"))
			for _, s := range settings {
				fmt.Fprintf(out, "  %-20s %s\n", s.Key, s.Value)
			}
			return nil
		},
	}
}

func newProfileRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile with all its entries",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := lookupProfile(cmd, app, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := app.Service.DeleteProfile(cmd.Context(), p.ID); err != nil {
				if errors.Is(err, tracker.ErrLastProfile) {
					return errors.New("the last profile cannot be deleted")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s\n", p.Name)
			return nil
		},
	}
}
