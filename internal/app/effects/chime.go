package effects

import (
	"time"

	"github.com/osa030/termfolio/internal/domain/profile"
)

// SectionChimeEffect plays the notification sound when a section comes into view.
// It has no interval and only fires when triggered.
type SectionChimeEffect struct{}

func (e *SectionChimeEffect) Name() string {
	return "section_chime"
}

func (e *SectionChimeEffect) Description() string {
	return "Plays the notification sound when a section scrolls into view"
}

func (e *SectionChimeEffect) ValidateConfig(settings map[string]any) error {
	return decodeSettings(settings, &struct{}{})
}

func (e *SectionChimeEffect) Configure(settings map[string]any) error {
	return e.ValidateConfig(settings)
}

func (e *SectionChimeEffect) Next(env Env) time.Duration {
	return 0
}

func (e *SectionChimeEffect) Fire(env Env) {
	env.play(profile.Notification)
}

func init() {
	Register("section_chime", func() Effect {
		return &SectionChimeEffect{}
	})
}
