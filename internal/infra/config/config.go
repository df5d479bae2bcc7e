// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/termfolio/internal/app/sequencer"
	"github.com/osa030/termfolio/internal/domain/profile"
	"github.com/osa030/termfolio/internal/domain/script"
)

// Config represents the application configuration.
type Config struct {
	Audio     AudioConfig             `yaml:"audio"`
	Sequencer SequencerConfig         `yaml:"sequencer"`
	Script    ScriptConfig            `yaml:"script"`
	Effects   map[string]EffectConfig `yaml:"effects"`
	Loader    LoaderConfig            `yaml:"loader"`
	Content   ContentConfig           `yaml:"content"`
}

// AudioConfig represents audio output configuration.
type AudioConfig struct {
	Disabled      bool            `yaml:"disabled"`
	Muted         bool            `yaml:"muted"`
	SampleRate    int             `yaml:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferMs      int             `yaml:"buffer_ms" default:"50" validate:"gte=5,lte=1000"`
	InitTimeoutMs int             `yaml:"init_timeout_ms" default:"3000" validate:"gte=100,lte=30000"`
	Profiles      []ProfileConfig `yaml:"profiles" validate:"dive"`
}

// ProfileConfig represents an extra sound profile.
// FrequencyTo, when set, makes the frequency random in [Frequency, FrequencyTo).
type ProfileConfig struct {
	Name        string  `yaml:"name" validate:"required"`
	Waveform    string  `yaml:"waveform" validate:"required,oneof=square sine sawtooth saw triangle"`
	Frequency   float64 `yaml:"frequency" validate:"gt=0"`
	FrequencyTo float64 `yaml:"frequency_to" validate:"omitempty,gtfield=Frequency"`
	DurationMs  int     `yaml:"duration_ms" validate:"gt=0"`
	Volume      float64 `yaml:"volume" validate:"gte=0,lte=1"`
}

// SequencerConfig represents terminal animation timing.
type SequencerConfig struct {
	StartDelayMs       int    `yaml:"start_delay_ms" default:"2000" validate:"gte=0"`
	MinCharDelayMs     int    `yaml:"min_char_delay_ms" default:"50" validate:"gte=0"`
	MaxCharDelayMs     int    `yaml:"max_char_delay_ms" default:"150" validate:"gtefield=MinCharDelayMs"`
	RevealPauseMs      int    `yaml:"reveal_pause_ms" default:"500" validate:"gte=0"`
	ResponseHoldMs     int    `yaml:"response_hold_ms" default:"1500" validate:"gte=0"`
	NextCommandDelayMs int    `yaml:"next_command_delay_ms" default:"500" validate:"gte=0"`
	ClosingDelayMs     int    `yaml:"closing_delay_ms" default:"500" validate:"gte=0"`
	Seed               uint64 `yaml:"seed"`
}

// ScriptConfig represents the terminal script. Empty entries mean the built-in script.
type ScriptConfig struct {
	Entries []script.Entry `yaml:"entries" validate:"dive"`
	Closing ClosingConfig  `yaml:"closing"`
}

// ClosingConfig represents the closing line. An empty command means the built-in one.
type ClosingConfig struct {
	Command  string `yaml:"command"`
	Response string `yaml:"response"`
}

// EffectConfig represents an effect's configuration.
type EffectConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// LoaderConfig represents the hack-loader overlay configuration.
type LoaderConfig struct {
	Skip     bool     `yaml:"skip"`
	DelayMs  int      `yaml:"delay_ms" default:"500" validate:"gte=0"`
	TickMs   int      `yaml:"tick_ms" default:"100" validate:"gt=0"`
	MaxStep  float64  `yaml:"max_step" default:"0.15" validate:"gt=0,lte=1"`
	FinishMs int      `yaml:"finish_ms" default:"500" validate:"gte=0"`
	Messages []string `yaml:"messages" validate:"omitempty,len=4"`
}

// ContentConfig represents the portfolio page content.
type ContentConfig struct {
	Owner    string          `yaml:"owner" default:"R0GU3"`
	Tagline  string          `yaml:"tagline" default:"Cybersecurity Portfolio"`
	About    string          `yaml:"about"`
	Skills   []SkillConfig   `yaml:"skills" validate:"dive"`
	Projects []ProjectConfig `yaml:"projects" validate:"dive"`
	Contact  []ContactConfig `yaml:"contact" validate:"dive"`
}

// SkillConfig represents one skill bar.
type SkillConfig struct {
	Name  string `yaml:"name" validate:"required"`
	Level int    `yaml:"level" validate:"gte=0,lte=100"`
}

// ProjectConfig represents one project card.
type ProjectConfig struct {
	Title       string   `yaml:"title" validate:"required"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// ContactConfig represents one contact link.
type ContactConfig struct {
	Label string `yaml:"label" validate:"required"`
	Value string `yaml:"value" validate:"required"`
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	var cfg Config
	cfg.overrideFromEnv()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	if err := defaults.Set(c); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if len(c.Content.Skills) == 0 && len(c.Content.Projects) == 0 && len(c.Content.Contact) == 0 && c.Content.About == "" {
		c.Content = defaultContent(c.Content)
	}
	if len(c.Effects) == 0 {
		c.Effects = defaultEffects()
	}
	if len(c.Loader.Messages) == 0 {
		c.Loader.Messages = []string{
			"Initializing...",
			"Decrypting portfolio data...",
			"Bypassing security protocols...",
			"Access granted. Loading interface...",
		}
	}
	if err := c.Validate(); err != nil {
		return errors.Wrap(err, "config validation failed")
	}
	return nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v, ok := envBool("TERMFOLIO_MUTED"); ok {
		c.Audio.Muted = v
	}
	if v, ok := envBool("TERMFOLIO_AUDIO_DISABLED"); ok {
		c.Audio.Disabled = v
	}
	if v := os.Getenv("TERMFOLIO_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Sequencer.Seed = seed
		}
	}
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, false
	}
	return b, true
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	seen := make(map[string]bool)
	for _, p := range c.Audio.Profiles {
		if profile.IsBuiltin(p.Name) {
			return errors.Newf("profile %q redefines a built-in sound", p.Name)
		}
		if seen[p.Name] {
			return errors.Newf("duplicate profile %q", p.Name)
		}
		seen[p.Name] = true
	}

	if len(c.Script.Entries) > 0 {
		if _, err := c.BuildScript(); err != nil {
			return err
		}
	}
	return nil
}

// IsEffectEnabled checks if an effect is enabled.
func (c *Config) IsEffectEnabled(name string) bool {
	if e, ok := c.Effects[name]; ok {
		return e.Enabled
	}
	return false
}

// EnabledEffects returns the settings of every enabled effect, keyed by name.
func (c *Config) EnabledEffects() map[string]map[string]any {
	out := make(map[string]map[string]any)
	for name, e := range c.Effects {
		if e.Enabled {
			out[name] = e.Settings
		}
	}
	return out
}

// BuildScript returns the configured script, or the built-in one.
func (c *Config) BuildScript() (script.Script, error) {
	if len(c.Script.Entries) == 0 {
		return script.Default(), nil
	}
	s := script.Script{Entries: c.Script.Entries, Closing: script.Default().Closing}
	if c.Script.Closing.Command != "" {
		s.Closing = script.Closing{Command: c.Script.Closing.Command, Response: c.Script.Closing.Response}
	}
	if err := s.Validate(); err != nil {
		return script.Script{}, errors.Wrap(err, "invalid script")
	}
	return s, nil
}

// Timing converts the sequencer section into machine timings.
func (c *Config) Timing() sequencer.Timing {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return sequencer.Timing{
		StartDelay:       ms(c.Sequencer.StartDelayMs),
		MinCharDelay:     ms(c.Sequencer.MinCharDelayMs),
		MaxCharDelay:     ms(c.Sequencer.MaxCharDelayMs),
		RevealPause:      ms(c.Sequencer.RevealPauseMs),
		ResponseHold:     ms(c.Sequencer.ResponseHoldMs),
		NextCommandDelay: ms(c.Sequencer.NextCommandDelayMs),
		ClosingDelay:     ms(c.Sequencer.ClosingDelayMs),
	}
}

// ExtraProfiles converts the configured profiles into domain profiles.
func (c *Config) ExtraProfiles() ([]profile.Profile, error) {
	out := make([]profile.Profile, 0, len(c.Audio.Profiles))
	for _, pc := range c.Audio.Profiles {
		wave, err := profile.ParseWaveform(pc.Waveform)
		if err != nil {
			return nil, errors.Wrapf(err, "profile %s", pc.Name)
		}
		freq := profile.Fixed(pc.Frequency)
		if pc.FrequencyTo > 0 {
			freq = profile.Between(pc.Frequency, pc.FrequencyTo)
		}
		p := profile.Profile{
			Name:      pc.Name,
			Waveform:  wave,
			Frequency: freq,
			Duration:  time.Duration(pc.DurationMs) * time.Millisecond,
			Volume:    pc.Volume,
		}
		if err := p.Validate(); err != nil {
			return nil, errors.Wrapf(err, "profile %s", pc.Name)
		}
		out = append(out, p)
	}
	return out, nil
}

// LoaderTick returns the loader tick interval.
func (c *Config) LoaderTick() time.Duration {
	return time.Duration(c.Loader.TickMs) * time.Millisecond
}

// LoaderDelay returns the delay before the loader starts.
func (c *Config) LoaderDelay() time.Duration {
	return time.Duration(c.Loader.DelayMs) * time.Millisecond
}

// LoaderFinish returns the delay between reaching 100% and hiding the loader.
func (c *Config) LoaderFinish() time.Duration {
	return time.Duration(c.Loader.FinishMs) * time.Millisecond
}

// AudioBuffer returns the output buffer length.
func (c *Config) AudioBuffer() time.Duration {
	return time.Duration(c.Audio.BufferMs) * time.Millisecond
}

// AudioInitTimeout returns the bound on one audio initialization attempt.
func (c *Config) AudioInitTimeout() time.Duration {
	return time.Duration(c.Audio.InitTimeoutMs) * time.Millisecond
}

func defaultEffects() map[string]EffectConfig {
	return map[string]EffectConfig{
		"scan_sound":     {Enabled: true},
		"glitch_burst":   {Enabled: true},
		"random_flicker": {Enabled: true},
		"section_chime":  {Enabled: true},
	}
}

func defaultContent(c ContentConfig) ContentConfig {
	c.About = "Penetration tester and bug hunter. I write exploits, build defensive tooling in Python " +
		"and spend my evenings on CTFs. Currently in the top 1% on TryHackMe."
	c.Skills = []SkillConfig{
		{Name: "Penetration Testing", Level: 95},
		{Name: "Python", Level: 90},
		{Name: "Exploit Development", Level: 85},
		{Name: "Network Security", Level: 80},
		{Name: "Malware Analysis", Level: 75},
	}
	c.Projects = []ProjectConfig{
		{Title: "Defense-Sphere", Description: "Host intrusion detection with live alerting.", Tags: []string{"Python", "Blue Team"}},
		{Title: "Xylem-Network", Description: "Mesh network mapper and traffic analyzer.", Tags: []string{"Python", "Networking"}},
		{Title: "C2C-Malware", Description: "Research command-and-control framework for lab use.", Tags: []string{"Python", "Red Team"}},
		{Title: "Password-Manager", Description: "Offline encrypted password vault.", Tags: []string{"Python", "Crypto"}},
	}
	c.Contact = []ContactConfig{
		{Label: "EMAIL", Value: "rogue@cybersecurity.dev"},
		{Label: "GITHUB", Value: "github.com/r0gu3"},
		{Label: "TRYHACKME", Value: "tryhackme.com/p/r0gu3"},
	}
	return c
}
