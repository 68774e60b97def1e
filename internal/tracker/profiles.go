package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/workhours/internal/calc"
	"github.com/sadopc/workhours/internal/store"
	"github.com/sadopc/workhours/internal/theme"
)

// ErrLastProfile is returned when deleting the only remaining profile.
var ErrLastProfile = errors.New("cannot delete the last profile")

// Preferences are the per-profile settings the app reads.
type Preferences struct {
	ThemeID          int
	DailyTargetHours float64
	// CustomPrimary, when set, replaces ThemeID by a palette generated
	// from this color.
	CustomPrimary string
}

// Palette resolves the colors the profile is displayed and reported in.
func (p Preferences) Palette() theme.Palette {
	if p.CustomPrimary != "" {
		if pal, err := theme.FromPrimary(p.CustomPrimary, "Custom"); err == nil {
			return pal
		}
	}
	return theme.Get(p.ThemeID)
}

func (s *Service) Profiles(ctx context.Context) ([]store.Profile, error) {
	return s.store.ListProfiles(ctx)
}

// ResolveProfile finds a profile by name, falling back to the seeded
// default profile when name is empty.
func (s *Service) ResolveProfile(ctx context.Context, name string) (*store.Profile, error) {
	if strings.TrimSpace(name) == "" {
		name = store.DefaultProfileName
	}
	return s.store.GetProfileByName(ctx, name)
}

// CreateProfile validates name and creates the profile.
func (s *Service) CreateProfile(ctx context.Context, name string) (*store.Profile, error) {
	name = strings.TrimSpace(name)
	if err := calc.ValidateProfileName(name); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProfileByName(ctx, name); err == nil {
		return nil, fmt.Errorf("profile %q already exists", name)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	p, err := s.store.CreateProfile(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.SetTheme(ctx, p.ID, s.defaults.ThemeID); err != nil {
		return nil, err
	}
	if err := s.SetDailyTarget(ctx, p.ID, s.defaults.DailyTargetHours); err != nil {
		return nil, err
	}
	s.logger.Info("profile created", "profile", p.ID, "name", p.Name)
	return p, nil
}

// RenameProfile validates name and gives it to profile id.
func (s *Service) RenameProfile(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if err := calc.ValidateProfileName(name); err != nil {
		return err
	}
	other, err := s.store.GetProfileByName(ctx, name)
	switch {
	case err == nil && other.ID != id:
		return fmt.Errorf("profile %q already exists", name)
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return err
	}
	if err := s.store.RenameProfile(ctx, id, name); err != nil {
		return err
	}
	s.logger.Info("profile renamed", "profile", id, "name", name)
	return nil
}

// DeleteProfile removes a profile with all its data. The last profile
// cannot be removed.
func (s *Service) DeleteProfile(ctx context.Context, id int64) error {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) <= 1 {
		return ErrLastProfile
	}
	if err := s.store.DeleteProfile(ctx, id); err != nil {
		return err
	}
	s.months.Purge()
	s.logger.Info("profile deleted", "profile", id)
	return nil
}

// Preferences reads the profile's settings, falling back to defaults for
// missing or unparseable values.
func (s *Service) Preferences(ctx context.Context, profileID int64) (Preferences, error) {
	prefs := s.defaults

	v, err := s.store.GetSetting(ctx, profileID, store.SettingTheme)
	switch {
	case err == nil:
		if id, perr := strconv.Atoi(v); perr == nil {
			prefs.ThemeID = id
		}
	case !errors.Is(err, store.ErrNotFound):
		return prefs, err
	}

	v, err = s.store.GetSetting(ctx, profileID, store.SettingDailyTarget)
	switch {
	case err == nil:
		if h, perr := strconv.ParseFloat(v, 64); perr == nil && h > 0 {
			prefs.DailyTargetHours = h
		}
	case !errors.Is(err, store.ErrNotFound):
		return prefs, err
	}

	v, err = s.store.GetSetting(ctx, profileID, store.SettingCustomPrimary)
	switch {
	case err == nil:
		if hex, perr := theme.NormalizeHex(v); perr == nil {
			prefs.CustomPrimary = hex
		}
	case !errors.Is(err, store.ErrNotFound):
		return prefs, err
	}
	return prefs, nil
}

// Settings returns the raw stored settings of a profile, ordered by key.
func (s *Service) Settings(ctx context.Context, profileID int64) ([]store.Setting, error) {
	return s.store.GetAllSettings(ctx, profileID)
}

// SetDefaults sets the preferences written to new profiles and reported
// for settings a profile lacks.
func (s *Service) SetDefaults(p Preferences) {
	s.defaults = p
}

func (s *Service) SetTheme(ctx context.Context, profileID int64, themeID int) error {
	return s.store.SetSetting(ctx, profileID, store.SettingTheme, strconv.Itoa(themeID))
}

// SetCustomPrimary stores the color a custom palette is generated from.
// An empty color removes it, so the theme id applies again.
func (s *Service) SetCustomPrimary(ctx context.Context, profileID int64, color string) error {
	if strings.TrimSpace(color) == "" {
		return s.store.DeleteSetting(ctx, profileID, store.SettingCustomPrimary)
	}
	hex, err := theme.NormalizeHex(color)
	if err != nil {
		return err
	}
	return s.store.SetSetting(ctx, profileID, store.SettingCustomPrimary, hex)
}

func (s *Service) SetDailyTarget(ctx context.Context, profileID int64, hours float64) error {
	if hours <= 0 || hours > 24 {
		return fmt.Errorf("daily target must be between 0 and 24 hours")
	}
	return s.store.SetSetting(ctx, profileID, store.SettingDailyTarget, strconv.FormatFloat(hours, 'f', -1, 64))
}

// RequiredTime reports how many standard days of the profile's daily
// target are needed to reach targetHours.
func (s *Service) RequiredTime(ctx context.Context, profileID int64, targetHours float64) (int, float64, error) {
	prefs, err := s.Preferences(ctx, profileID)
	if err != nil {
		return 0, 0, err
	}
	days, rest := calc.EstimateRequiredTime(targetHours, prefs.DailyTargetHours)
	return days, rest, nil
}
