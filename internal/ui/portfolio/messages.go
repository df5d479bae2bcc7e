package portfolio

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/osa030/termfolio/internal/app/notification"
)

const (
	rainInterval     = 80 * time.Millisecond
	toastDuration    = time.Second
	clickDelay       = 100 * time.Millisecond
	skillRevealDelay = 200 * time.Millisecond
	scrollGlitch     = 200 * time.Millisecond
	cardGlitch       = time.Second

	// scrollGlitchProbability is the chance a scroll glitches a random section.
	scrollGlitchProbability = 0.05
)

// GlitchMsg asks the page to glitch a random target for Duration.
type GlitchMsg struct {
	Duration time.Duration
}

type glitchEndMsg struct {
	target string
	id     int
}

type loaderStartMsg struct{}

type loaderTickMsg struct{}

type loaderDoneMsg struct{}

type rainTickMsg struct{}

type skillsRevealMsg struct{}

type clickMsg struct{}

type toastExpireMsg struct {
	id int
}

// initSource tells the page why audio initialization ran.
type initSource int

const (
	initFromInteraction initSource = iota
	initFromLoader
)

type audioInitMsg struct {
	source initSource
	ok     bool
}

type audioToggledMsg struct {
	failed bool
	muted  bool
}

type notificationMsg struct {
	n *notification.Notification
}

// waitForNotification reads the next notification from ch.
// It returns nil once ch is closed.
func waitForNotification(ch <-chan *notification.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg{n: n}
	}
}

// Glitcher sends glitch requests to a running program.
type Glitcher struct {
	Program *tea.Program
}

// Glitch implements effects.Glitcher.
func (g Glitcher) Glitch(d time.Duration) {
	if g.Program != nil {
		g.Program.Send(GlitchMsg{Duration: d})
	}
}
