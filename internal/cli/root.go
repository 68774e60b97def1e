// Package cli is the workhours command line. Without a subcommand it opens
// the TUI on a terminal and prints the current month otherwise.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/config"
	"github.com/sadopc/workhours/internal/store"
	"github.com/sadopc/workhours/internal/tracker"
	"github.com/sadopc/workhours/internal/tui"
)

// App holds what the commands share. When Service is nil the root command
// opens config, log file and database on first use.
type App struct {
	Service *tracker.Service
	Config  config.Config

	// Now is the clock for relative dates and the engine; nil means time.Now.
	Now func() time.Time
	// IsInteractive decides whether the bare command starts the TUI.
	IsInteractive func() bool

	configPath string
	profile    string
	closers    []func() error
}

// Execute runs the command tree against the real environment.
func Execute() error {
	app := &App{
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	}
	defer app.Close()
	return NewRootCmd(app).Execute()
}

// NewRootCmd creates the top-level "workhours" command and registers all
// subcommands against app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "workhours",
		Short: "Track daily working hours",
		Long: "workhours records one entry per day (work, sick day, vacation or day off),\n" +
			"computes net hours and summarizes them per month and year.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Service != nil {
				return nil
			}
			return app.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && app.IsInteractive() {
				return app.runTUI(cmd.Context())
			}
			today := app.now()
			return printMonth(cmd, app, today.Year(), int(today.Month()))
		},
	}

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default ~/.config/workhours/config.toml)")
	root.PersistentFlags().StringVarP(&app.profile, "profile", "p", "", "profile name (default from config)")

	root.AddCommand(
		newLogCmd(app),
		newDeleteCmd(app),
		newMonthCmd(app),
		newYearCmd(app),
		newReportCmd(app),
		newProfileCmd(app),
	)
	return root
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// open loads the config and wires logger, store and service from it.
func (a *App) open() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.Config = *cfg

	logger, err := a.openLogger(*cfg)
	if err != nil {
		return err
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.closers = append(a.closers, st.Close)

	svc := tracker.New(st, calc.NewEngine(cfg.EngineRules(), a.Now), logger)
	svc.SetDefaults(tracker.Preferences{ThemeID: cfg.App.Theme, DailyTargetHours: cfg.App.DailyTargetHours})
	a.Service = svc
	logger.Debug("opened database", "path", dbPath)
	return nil
}

// openLogger writes to the configured log file so the TUI screen stays clean.
func (a *App) openLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	path, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	a.closers = append(a.closers, f.Close)
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), nil
}

// Close releases what open acquired, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// resolveProfile picks the --profile flag, then the configured default.
func (a *App) resolveProfile(ctx context.Context) (*store.Profile, error) {
	name := a.profile
	if name == "" {
		name = a.Config.App.DefaultProfile
	}
	p, err := a.Service.ResolveProfile(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("profile %q not found, see 'workhours profile list'", name)
	}
	return p, err
}

func (a *App) runTUI(ctx context.Context) error {
	prof, err := a.resolveProfile(ctx)
	if err != nil {
		return err
	}
	prefs, err := a.Service.Preferences(ctx, prof.ID)
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}

	exportDir, err := a.Config.ExportPath()
	if err != nil {
		return err
	}

	app := tui.NewApp(a.Service, *prof, prefs, tui.Options{ExportDir: exportDir, Now: a.Now})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
