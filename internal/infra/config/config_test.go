package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/termfolio/internal/domain/profile"
	"github.com/osa030/termfolio/internal/domain/script"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "termfolio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.False(t, cfg.Audio.Disabled)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 50*time.Millisecond, cfg.AudioBuffer())
	assert.Equal(t, 2000*time.Millisecond, cfg.Timing().StartDelay)
	assert.Equal(t, 150*time.Millisecond, cfg.Timing().MaxCharDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.LoaderTick())
	assert.Equal(t, 500*time.Millisecond, cfg.LoaderDelay())
	assert.Len(t, cfg.Loader.Messages, 4)
	assert.NotEmpty(t, cfg.Content.Skills)

	for _, name := range []string{"scan_sound", "glitch_burst", "random_flicker", "section_chime"} {
		assert.True(t, cfg.IsEffectEnabled(name), name)
	}
	assert.False(t, cfg.IsEffectEnabled("nope"))

	s, err := cfg.BuildScript()
	require.NoError(t, err)
	assert.Equal(t, script.Default(), s)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
audio:
  muted: true
  sample_rate: 48000
  profiles:
    - name: beep
      waveform: triangle
      frequency: 300
      frequency_to: 600
      duration_ms: 80
      volume: 0.2
sequencer:
  start_delay_ms: 10
  seed: 42
script:
  entries:
    - prompt: ls
      response: a b c
  closing:
    command: exit
    response: bye
effects:
  scan_sound:
    enabled: true
    settings:
      probability: 0.5
  glitch_burst:
    enabled: false
content:
  owner: TEST
  skills:
    - name: Go
      level: 50
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Audio.Muted)
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, uint64(42), cfg.Sequencer.Seed)
	assert.Equal(t, 10*time.Millisecond, cfg.Timing().StartDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Timing().ResponseHold)
	assert.Equal(t, "TEST", cfg.Content.Owner)
	assert.Empty(t, cfg.Content.Projects)

	s, err := cfg.BuildScript()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "exit", s.Closing.Command)

	enabled := cfg.EnabledEffects()
	assert.Contains(t, enabled, "scan_sound")
	assert.NotContains(t, enabled, "glitch_burst")
	assert.Equal(t, 0.5, enabled["scan_sound"]["probability"])

	extra, err := cfg.ExtraProfiles()
	require.NoError(t, err)
	require.Len(t, extra, 1)
	assert.Equal(t, "beep", extra[0].Name)
	assert.Equal(t, profile.WaveTriangle, extra[0].Waveform)
	assert.Equal(t, 80*time.Millisecond, extra[0].Duration)
}

func TestLoad_ScriptWithoutClosingUsesDefault(t *testing.T) {
	path := writeConfig(t, `
script:
  entries:
    - prompt: whoami
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	s, err := cfg.BuildScript()
	require.NoError(t, err)
	assert.Equal(t, script.Default().Closing, s.Closing)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "bad yaml",
			body:   "audio: [",
			errMsg: "failed to parse config file",
		},
		{
			name:   "sample rate out of range",
			body:   "audio:\n  sample_rate: 100\n",
			errMsg: "SampleRate",
		},
		{
			name:   "builtin profile redefined",
			body:   "audio:\n  profiles:\n    - {name: click, waveform: sine, frequency: 100, duration_ms: 10, volume: 0.1}\n",
			errMsg: "redefines a built-in sound",
		},
		{
			name:   "duplicate profile",
			body:   "audio:\n  profiles:\n    - {name: x, waveform: sine, frequency: 100, duration_ms: 10, volume: 0.1}\n    - {name: x, waveform: sine, frequency: 100, duration_ms: 10, volume: 0.1}\n",
			errMsg: "duplicate profile",
		},
		{
			name:   "unknown waveform",
			body:   "audio:\n  profiles:\n    - {name: x, waveform: noise, frequency: 100, duration_ms: 10, volume: 0.1}\n",
			errMsg: "Waveform",
		},
		{
			name:   "volume out of range",
			body:   "audio:\n  profiles:\n    - {name: x, waveform: sine, frequency: 100, duration_ms: 10, volume: 2}\n",
			errMsg: "Volume",
		},
		{
			name:   "char delay range inverted",
			body:   "sequencer:\n  min_char_delay_ms: 200\n  max_char_delay_ms: 100\n",
			errMsg: "MaxCharDelayMs",
		},
		{
			name:   "empty prompt",
			body:   "script:\n  entries:\n    - response: x\n",
			errMsg: "Prompt",
		},
		{
			name:   "skill level too high",
			body:   "content:\n  skills:\n    - {name: Go, level: 101}\n",
			errMsg: "Level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("TERMFOLIO_MUTED", "true")
	t.Setenv("TERMFOLIO_AUDIO_DISABLED", "1")
	t.Setenv("TERMFOLIO_SEED", "7")

	cfg, err := Load(writeConfig(t, "audio:\n  muted: false\nsequencer:\n  seed: 1\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Audio.Muted)
	assert.True(t, cfg.Audio.Disabled)
	assert.Equal(t, uint64(7), cfg.Sequencer.Seed)
}

func TestOverrideFromEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("TERMFOLIO_MUTED", "maybe")
	t.Setenv("TERMFOLIO_SEED", "-3")

	cfg, err := Load(writeConfig(t, "sequencer:\n  seed: 1\n"))
	require.NoError(t, err)

	assert.False(t, cfg.Audio.Muted)
	assert.Equal(t, uint64(1), cfg.Sequencer.Seed)
}
