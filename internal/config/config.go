package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/theme"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Rules    RulesConfig    `toml:"rules"`
	App      AppConfig      `toml:"app"`
	Log      LogConfig      `toml:"log"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type RulesConfig struct {
	MinWorkMinutes        int  `toml:"min_work_minutes"`
	MaxWorkMinutes        int  `toml:"max_work_minutes"`
	MaxBreakMinutes       int  `toml:"max_break_minutes"` // 0 disables the ceiling
	SickDayMinutes        int  `toml:"sick_day_minutes"`
	EarliestYear          int  `toml:"earliest_year"`
	AllowMidnightCrossing bool `toml:"allow_midnight_crossing"`
}

type AppConfig struct {
	DefaultProfile   string  `toml:"default_profile"`
	Theme            int     `toml:"theme"`
	DailyTargetHours float64 `toml:"daily_target_hours"`
	ExportDir        string  `toml:"export_dir"` // empty means the working directory
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"` // debug, info, warn, error
}

func DefaultConfig() Config {
	r := calc.DefaultRules()
	return Config{
		Database: DatabaseConfig{Path: "~/.config/workhours/workhours.db"},
		Rules: RulesConfig{
			MinWorkMinutes:        r.MinWorkMinutes,
			MaxWorkMinutes:        r.MaxWorkMinutes,
			MaxBreakMinutes:       r.MaxBreakMinutes,
			SickDayMinutes:        r.SickDayMinutes,
			EarliestYear:          r.EarliestYear,
			AllowMidnightCrossing: r.AllowMidnightCrossing,
		},
		App: AppConfig{
			DefaultProfile:   "Default User",
			Theme:            theme.DefaultID,
			DailyTargetHours: 8,
		},
		Log: LogConfig{
			File:  "~/.config/workhours/workhours.log",
			Level: "info",
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "workhours"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config at path (the default location when empty). A
// missing file yields the defaults. Environment overrides are applied last
// and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WORKHOURS_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("WORKHOURS_PROFILE"); v != "" {
		cfg.App.DefaultProfile = v
	}
	if v := os.Getenv("WORKHOURS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

// ValidationError names the offending config key.
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Message)
}

func (c Config) Validate() error {
	r := c.Rules
	switch {
	case c.Database.Path == "":
		return &ValidationError{"database.path", "must not be empty"}
	case r.MinWorkMinutes < 0:
		return &ValidationError{"rules.min_work_minutes", "must not be negative"}
	case r.MaxWorkMinutes <= r.MinWorkMinutes || r.MaxWorkMinutes >= 24*60:
		return &ValidationError{"rules.max_work_minutes", "must be above min_work_minutes and below 1440"}
	case r.MaxBreakMinutes < 0:
		return &ValidationError{"rules.max_break_minutes", "must not be negative"}
	case r.SickDayMinutes < 0 || r.SickDayMinutes > 24*60:
		return &ValidationError{"rules.sick_day_minutes", "must be between 0 and 1440"}
	case r.EarliestYear < 1900:
		return &ValidationError{"rules.earliest_year", "must be 1900 or later"}
	case c.App.DailyTargetHours <= 0 || c.App.DailyTargetHours > 24:
		return &ValidationError{"app.daily_target_hours", "must be between 0 and 24"}
	}
	if _, ok := theme.Lookup(c.App.Theme); !ok {
		return &ValidationError{"app.theme", fmt.Sprintf("unknown theme %d", c.App.Theme)}
	}
	if _, err := c.SlogLevel(); err != nil {
		return &ValidationError{"log.level", err.Error()}
	}
	return nil
}

// EngineRules maps the [rules] section onto the engine's thresholds.
func (c Config) EngineRules() calc.Rules {
	return calc.Rules{
		MinWorkMinutes:        c.Rules.MinWorkMinutes,
		MaxWorkMinutes:        c.Rules.MaxWorkMinutes,
		MaxBreakMinutes:       c.Rules.MaxBreakMinutes,
		SickDayMinutes:        c.Rules.SickDayMinutes,
		EarliestYear:          c.Rules.EarliestYear,
		AllowMidnightCrossing: c.Rules.AllowMidnightCrossing,
	}
}

// DBPath is Database.Path with a leading ~ expanded.
func (c Config) DBPath() (string, error) { return ExpandHome(c.Database.Path) }

// ExportPath is App.ExportDir with a leading ~ expanded.
func (c Config) ExportPath() (string, error) { return ExpandHome(c.App.ExportDir) }

// LogPath is Log.File with a leading ~ expanded.
func (c Config) LogPath() (string, error) { return ExpandHome(c.Log.File) }

func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown level %q", c.Log.Level)
	}
	return lvl, nil
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
