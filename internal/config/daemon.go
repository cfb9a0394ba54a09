package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastd/internal/lifecycle"
	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/stack"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "150ms", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML and env parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '150ms', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int {
	return int(time.Duration(d).Milliseconds())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for toastd.
// Loaded from ~/.config/toastd/toastd.toml
type DaemonConfig struct {
	Stack StackConfig `toml:"stack" envPrefix:"STACK_"`
	Audio AudioConfig `toml:"audio" envPrefix:"AUDIO_"`
	DBus  DBusConfig  `toml:"dbus" envPrefix:"DBUS_"`
	TUI   TUIConfig   `toml:"tui" envPrefix:"TUI_"`
}

// StackConfig contains capacity, layout and timing settings.
type StackConfig struct {
	MaxVisible      int      `toml:"max_visible" env:"MAX_VISIBLE"`
	OffsetStep      int      `toml:"offset_step" env:"OFFSET_STEP"`
	DefaultDuration Duration `toml:"default_duration" env:"DEFAULT_DURATION"`
	EnterTransition Duration `toml:"enter_transition" env:"ENTER_TRANSITION"`
	ExitTransition  Duration `toml:"exit_transition" env:"EXIT_TRANSITION"`
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled" env:"ENABLED"`
	Volume  int         `toml:"volume" env:"VOLUME"` // 0-100
	Sounds  SoundConfig `toml:"sounds" envPrefix:"SOUND_"`
}

// SoundConfig contains per-kind sound file paths.
type SoundConfig struct {
	Success string `toml:"success" env:"SUCCESS"`
	Info    string `toml:"info" env:"INFO"`
	Warning string `toml:"warning" env:"WARNING"`
	Error   string `toml:"error" env:"ERROR"`
	Booking string `toml:"booking" env:"BOOKING"`
}

// DBusConfig contains session bus settings.
type DBusConfig struct {
	Enabled bool `toml:"enabled" env:"ENABLED"`
}

// TUIConfig contains terminal renderer settings.
type TUIConfig struct {
	Enabled       bool `toml:"enabled" env:"ENABLED"`
	RowsPerOffset int  `toml:"rows_per_offset" env:"ROWS_PER_OFFSET"` // Layout offset units per terminal row
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Stack: StackConfig{
			MaxVisible:      stack.MaxVisible,
			OffsetStep:      stack.OffsetStep,
			DefaultDuration: Duration(model.DefaultDuration),
			EnterTransition: Duration(lifecycle.DefaultEnterTransition),
			ExitTransition:  Duration(lifecycle.DefaultExitTransition),
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
			Sounds:  SoundConfig{},
		},
		DBus: DBusConfig{
			Enabled: true,
		},
		TUI: TUIConfig{
			Enabled:       false,
			RowsPerOffset: 20,
		},
	}
}

// LoadDaemonConfig loads the daemon configuration from path.
// If path is empty the default location is used. A missing file yields the
// defaults. Environment overrides are applied on top of the file.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		var err error
		path, err = DaemonConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultDaemonConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file, keep defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveDaemonConfig writes the daemon configuration to path.
func SaveDaemonConfig(path string, cfg *DaemonConfig) error {
	if path == "" {
		var err error
		path, err = DaemonConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if c.Stack.MaxVisible < 1 || c.Stack.MaxVisible > 20 {
		return invalid("stack.max_visible", "must be between 1 and 20, got %d", c.Stack.MaxVisible)
	}
	if c.Stack.OffsetStep <= 0 {
		return invalid("stack.offset_step", "must be positive, got %d", c.Stack.OffsetStep)
	}
	if c.Stack.DefaultDuration.Duration() <= 0 {
		return invalid("stack.default_duration", "must be positive, got %s", c.Stack.DefaultDuration.Duration())
	}
	if c.Stack.EnterTransition.Duration() < 0 {
		return invalid("stack.enter_transition", "cannot be negative")
	}
	if c.Stack.ExitTransition.Duration() < 0 {
		return invalid("stack.exit_transition", "cannot be negative")
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return invalid("audio.volume", "must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if c.TUI.RowsPerOffset < 1 {
		return invalid("tui.rows_per_offset", "must be at least 1, got %d", c.TUI.RowsPerOffset)
	}

	return nil
}

// ValidationError reports a configuration value outside its allowed range.
type ValidationError struct {
	Field  string
	Reason string
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// Unwrap lets callers match validation failures with model.ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return model.ErrInvalidConfiguration
}

// StackSettings converts the [stack] section into stack manager settings.
func (c *DaemonConfig) StackSettings() stack.Config {
	return stack.Config{
		MaxVisible:      c.Stack.MaxVisible,
		OffsetStep:      c.Stack.OffsetStep,
		DefaultDuration: c.Stack.DefaultDuration.Duration(),
		Transitions: lifecycle.Transitions{
			Enter: c.Stack.EnterTransition.Duration(),
			Exit:  c.Stack.ExitTransition.Duration(),
		},
	}
}

// GetSoundForKind returns the sound file path for the given kind.
// Expands ~ to home directory.
func (c *DaemonConfig) GetSoundForKind(kind model.Kind) string {
	var path string
	switch kind {
	case model.KindSuccess:
		path = c.Audio.Sounds.Success
	case model.KindWarning:
		path = c.Audio.Sounds.Warning
	case model.KindError:
		path = c.Audio.Sounds.Error
	case model.KindBooking:
		path = c.Audio.Sounds.Booking
	default:
		path = c.Audio.Sounds.Info
	}
	return expandPath(path)
}
