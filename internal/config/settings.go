package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/zalando/go-keyring"
)

// Settings is the user configuration read from the TOML file.
type Settings struct {
	Language string         `toml:"language"`
	Server   ServerSettings `toml:"server"`
	Sync     SyncSettings   `toml:"sync"`
	Source   SourceSettings `toml:"source"`
	Reminder Reminder       `toml:"reminder"`
}

// ServerSettings controls the local HTTP listener.
type ServerSettings struct {
	Port string `toml:"port"`
}

// SyncSettings controls the background refresh.
type SyncSettings struct {
	IntervalMinutes int `toml:"interval_minutes"` // 0 disables periodic refresh
	WarnDays        int `toml:"warn_days"`        // Window counted as "expiring soon"
}

// SourceSettings locates the backup document the feed is built from.
type SourceSettings struct {
	Mode      string `toml:"mode"` // SourceModeLocal or SourceModeWeb
	LocalPath string `toml:"local_path"`
	WebURL    string `toml:"web_url"`
	WebUser   string `toml:"web_user"` // Keyring account holding the API token
	Token     string `toml:"token"`    // Optional inline token, wins over the keyring
}

// Reminder describes the alarm attached to each expiry event.
type Reminder struct {
	Enabled   bool   `toml:"enabled"`
	Value     int    `toml:"value"`
	Unit      string `toml:"unit"`      // UnitDays, UnitHours or UnitMinutes
	Direction string `toml:"direction"` // DirBefore or DirAfter
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Language: DefaultLanguage,
		Server:   ServerSettings{Port: DefaultPort},
		Sync: SyncSettings{
			IntervalMinutes: DefaultRefreshMin,
			WarnDays:        DefaultWarnDays,
		},
		Source: SourceSettings{Mode: SourceModeLocal},
		Reminder: Reminder{
			Enabled:   true,
			Value:     DefaultReminderValue,
			Unit:      UnitDays,
			Direction: DirBefore,
		},
	}
}

// LoadSettings reads path on top of the defaults and validates the result.
// A missing file is not an error and yields the defaults unvalidated; they
// name no source, so callers that sync must still call Validate.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info(MsgConfigMissing, LogKeyFile, path, LogKeyComponent, CompConfig)
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("%s: %w", ErrConfigDecode, err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports the first setting that cannot be used.
func (s Settings) Validate() error {
	if err := ValidatePort(s.Server.Port); err != nil {
		return err
	}
	if s.Sync.IntervalMinutes < 0 {
		return errors.New(ErrIntervalNegative)
	}
	if s.Sync.WarnDays < 0 {
		return errors.New(ErrWarnDaysNegative)
	}

	if err := s.Source.Validate(); err != nil {
		return err
	}

	if s.Reminder.Enabled {
		if s.Reminder.Value < 0 {
			return errors.New(ErrReminderValue)
		}
		switch s.Reminder.Unit {
		case UnitDays, UnitHours, UnitMinutes:
		default:
			return fmt.Errorf("%s: %q", ErrReminderUnit, s.Reminder.Unit)
		}
	}
	return nil
}

// Validate checks that the selected mode names somewhere to read from.
func (s SourceSettings) Validate() error {
	switch s.Mode {
	case SourceModeLocal:
		if strings.TrimSpace(s.LocalPath) == "" {
			return errors.New(ErrLocalPathEmpty)
		}
	case SourceModeWeb:
		if strings.TrimSpace(s.WebURL) == "" {
			return errors.New(ErrWebURLEmpty)
		}
	default:
		return fmt.Errorf("%s: %q", ErrModeUnsupport, s.Mode)
	}
	return nil
}

// ValidatePort checks that p is a TCP port number.
func ValidatePort(p string) error {
	if strings.TrimSpace(p) == "" {
		return errors.New(ErrPortRequired)
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if port < MinPort || port > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// Interval returns the refresh period, or 0 when periodic refresh is off.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.Sync.IntervalMinutes) * time.Minute
}

// Trigger renders the reminder as an ISO8601 duration ("-P1D", "-PT2H").
// It returns "" when reminders are disabled.
func (r Reminder) Trigger() string {
	if !r.Enabled {
		return ""
	}

	sign := ISOPeriodPrefix
	if r.Direction != DirAfter {
		sign = ISONegativePrefix
	}

	switch r.Unit {
	case UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTimePrefix, r.Value, ISOHour)
	case UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTimePrefix, r.Value, ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, r.Value, ISODay)
	}
}

// ResolveToken returns the API token for the web source. An inline token
// wins; otherwise the keyring entry of WebUser is used. A missing keyring
// entry yields an empty token.
func (s SourceSettings) ResolveToken() (string, error) {
	if s.Token != "" {
		return s.Token, nil
	}
	if s.WebUser == "" {
		return "", nil
	}

	token, err := keyring.Get(KeyringService, s.WebUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("%s: %w", ErrKeyringToken, err)
	}

	slog.Debug(MsgTokenKeyring, LogKeyUser, s.WebUser, LogKeyComponent, CompConfig)
	return token, nil
}
