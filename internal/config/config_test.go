package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

// isolate points XDG_CONFIG_HOME at a temp dir so no stray .env is loaded.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestDefaultDaemonConfig(t *testing.T) {
	cfg := DefaultDaemonConfig()

	assert.Equal(t, 3, cfg.Stack.MaxVisible)
	assert.Equal(t, 100, cfg.Stack.OffsetStep)
	assert.Equal(t, 5*time.Second, cfg.Stack.DefaultDuration.Duration())
	assert.Equal(t, 150*time.Millisecond, cfg.Stack.EnterTransition.Duration())
	assert.Equal(t, 150*time.Millisecond, cfg.Stack.ExitTransition.Duration())
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 80, cfg.Audio.Volume)
	assert.True(t, cfg.DBus.Enabled)
	assert.False(t, cfg.TUI.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"5s", 5 * time.Second, false},
		{"150ms", 150 * time.Millisecond, false},
		{"1m", time.Minute, false},
		{"2500", 2500 * time.Millisecond, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestLoadDaemonConfig_DefaultsWhenNoFile(t *testing.T) {
	isolate(t)

	cfg, err := LoadDaemonConfig("/nonexistent/path/toastd.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultDaemonConfig(), cfg)
}

func TestLoadDaemonConfig_ParsesTOML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "toastd.toml")

	content := `
[stack]
max_visible = 5
offset_step = 80
default_duration = "8s"
enter_transition = "0ms"
exit_transition = 300

[audio]
enabled = true
volume = 40

[audio.sounds]
error = "/usr/share/sounds/error.wav"

[dbus]
enabled = false

[tui]
enabled = true
rows_per_offset = 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Stack.MaxVisible)
	assert.Equal(t, 80, cfg.Stack.OffsetStep)
	assert.Equal(t, 8*time.Second, cfg.Stack.DefaultDuration.Duration())
	assert.Equal(t, time.Duration(0), cfg.Stack.EnterTransition.Duration())
	assert.Equal(t, 300*time.Millisecond, cfg.Stack.ExitTransition.Duration())
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, 40, cfg.Audio.Volume)
	assert.Equal(t, "/usr/share/sounds/error.wav", cfg.GetSoundForKind(model.KindError))
	assert.Empty(t, cfg.GetSoundForKind(model.KindInfo))
	assert.False(t, cfg.DBus.Enabled)
	assert.True(t, cfg.TUI.Enabled)
	assert.Equal(t, 25, cfg.TUI.RowsPerOffset)

	settings := cfg.StackSettings()
	assert.Equal(t, 5, settings.MaxVisible)
	assert.Equal(t, 80, settings.OffsetStep)
	assert.Equal(t, 8*time.Second, settings.DefaultDuration)
	assert.Equal(t, 300*time.Millisecond, settings.Transitions.Exit)
}

func TestLoadDaemonConfig_InvalidTOML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "toastd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[stack\nmax_visible = "), 0644))

	_, err := LoadDaemonConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestDaemonConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DaemonConfig)
		errMsg string
	}{
		{"zero max visible", func(c *DaemonConfig) { c.Stack.MaxVisible = 0 }, "max_visible"},
		{"huge max visible", func(c *DaemonConfig) { c.Stack.MaxVisible = 21 }, "max_visible"},
		{"zero offset step", func(c *DaemonConfig) { c.Stack.OffsetStep = 0 }, "offset_step"},
		{"zero default duration", func(c *DaemonConfig) { c.Stack.DefaultDuration = 0 }, "default_duration"},
		{"negative transition", func(c *DaemonConfig) { c.Stack.ExitTransition = Duration(-time.Millisecond) }, "transition"},
		{"volume too high", func(c *DaemonConfig) { c.Audio.Volume = 101 }, "volume"},
		{"zero rows per offset", func(c *DaemonConfig) { c.TUI.RowsPerOffset = 0 }, "rows_per_offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDaemonConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorContains(t, err, tt.errMsg)
			assert.ErrorIs(t, err, model.ErrInvalidConfiguration)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Field, tt.errMsg)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TOASTD_STACK_MAX_VISIBLE", "4")
	t.Setenv("TOASTD_STACK_DEFAULT_DURATION", "2s")
	t.Setenv("TOASTD_AUDIO_ENABLED", "true")
	t.Setenv("TOASTD_AUDIO_SOUND_BOOKING", "/tmp/ding.wav")

	cfg := DefaultDaemonConfig()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, 4, cfg.Stack.MaxVisible)
	assert.Equal(t, 2*time.Second, cfg.Stack.DefaultDuration.Duration())
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, "/tmp/ding.wav", cfg.Audio.Sounds.Booking)
	// Untouched fields keep their values
	assert.Equal(t, 100, cfg.Stack.OffsetStep)
}

func TestApplyEnv_DotEnvFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, AppName), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, AppName, ".env"), []byte("TOASTD_STACK_OFFSET_STEP=64\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("TOASTD_STACK_OFFSET_STEP") })

	cfg := DefaultDaemonConfig()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, 64, cfg.Stack.OffsetStep)
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	isolate(t)
	t.Setenv("TOASTD_STACK_MAX_VISIBLE", "many")

	err := ApplyEnv(DefaultDaemonConfig())
	assert.Error(t, err)
}

func TestSaveAndLoadDaemonConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "toastd.toml")

	cfg := DefaultDaemonConfig()
	cfg.Stack.MaxVisible = 7
	cfg.Stack.ExitTransition = Duration(250 * time.Millisecond)
	require.NoError(t, SaveDaemonConfig(path, cfg))

	loaded, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDaemonConfigPath_UsesXDG(t *testing.T) {
	dir := isolate(t)

	path, err := DaemonConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "toastd", "toastd.toml"), path)
}

func TestWatcher_ReloadsAndRejects(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "toastd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[stack]\nmax_visible = 3\n"), 0644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)

	var mu sync.Mutex
	var reloaded []*DaemonConfig
	var failures []error
	w.SetReloadCallback(func(c *DaemonConfig) {
		mu.Lock()
		defer mu.Unlock()
		reloaded = append(reloaded, c)
	})
	w.SetErrorCallback(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, err)
	})

	initial, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), initial))
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(path, []byte("[stack]\nmax_visible = 6\n"), 0644))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reloaded) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 6, w.CurrentConfig().Stack.MaxVisible)

	require.NoError(t, os.WriteFile(path, []byte("[stack]\nmax_visible = 0\n"), 0644))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(failures) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 6, w.CurrentConfig().Stack.MaxVisible)
}
