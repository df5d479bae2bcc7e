// Package portfolio provides the terminal portfolio page: the hack-loader
// overlay, the animated terminal panel, the content sections and the audio
// controls.
package portfolio

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/termfolio/internal/app/notification"
	"github.com/osa030/termfolio/internal/app/sequencer"
	"github.com/osa030/termfolio/internal/domain/profile"
	"github.com/osa030/termfolio/internal/infra/config"
	"github.com/osa030/termfolio/internal/ui/matrix"
	"github.com/osa030/termfolio/internal/ui/styles"
)

// maxContentWidth caps the page column; the rest of the screen shows the rain.
const maxContentWidth = 84

// Audio is the sound manager as seen by the page.
type Audio interface {
	EnsureInitialized(ctx context.Context) bool
	ToggleMute() bool
	Muted() bool
	Play(name string)
}

// Effects fires event-driven effects.
type Effects interface {
	Trigger(name string) bool
}

// Rand is the random source for loader progress, glitches and the rain.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Options configures the page.
type Options struct {
	Content       config.ContentConfig
	Loader        config.LoaderConfig
	LoaderDelay   time.Duration
	LoaderTick    time.Duration
	LoaderFinish  time.Duration
	AudioTimeout  time.Duration
	Notifications <-chan *notification.Notification
	Audio         Audio
	Effects       Effects
	Rand          Rand
	Context       context.Context
}

// termLine is one finished line in the terminal log.
type termLine struct {
	command  string
	response string
}

// Model holds the page state.
type Model struct {
	opts Options
	keys keyMap
	help help.Model

	width  int
	height int

	// loader
	loading      bool
	progress     float64
	loaderText   int
	loaderFilled bool
	loaderBar    progress.Model

	// terminal panel
	history  []termLine
	typing   string
	response string
	closed   bool

	// page
	page        viewport.Model
	sections    []section
	visible     map[string]bool
	skillsShown bool
	skillsSeen  bool
	skillBar    progress.Model
	scrolled    bool
	focusedCard int

	// overlays
	menuOpen   bool
	menuIndex  int
	toast      string
	toastID    int
	alert      string
	alertShown bool

	// audio
	audioTouched bool
	audioReady   bool
	muted        bool

	glitches map[string]int
	glitchID int

	rain *matrix.Rain
}

// New creates the page.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.AudioTimeout <= 0 {
		opts.AudioTimeout = 3 * time.Second
	}
	if opts.LoaderTick <= 0 {
		opts.LoaderTick = 100 * time.Millisecond
	}
	if opts.Loader.MaxStep <= 0 {
		opts.Loader.MaxStep = 0.15
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}

	m := Model{
		opts:        opts,
		keys:        defaultKeyMap(),
		help:        help.New(),
		loading:     !opts.Loader.Skip,
		page:        viewport.New(0, 0),
		visible:     make(map[string]bool),
		glitches:    make(map[string]int),
		focusedCard: -1,
		loaderBar: progress.New(
			progress.WithSolidFill(string(styles.Green)),
			progress.WithoutPercentage(),
		),
		skillBar: progress.New(
			progress.WithSolidFill(string(styles.GreenDim)),
			progress.WithoutPercentage(),
		),
		rain: matrix.New(opts.Rand, styles.Rain),
	}
	if opts.Audio != nil {
		m.muted = opts.Audio.Muted()
	}
	m.refresh()
	return m
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForNotification(m.opts.Notifications),
		tea.Tick(rainInterval, func(time.Time) tea.Msg { return rainTickMsg{} }),
	}
	if m.loading {
		cmds = append(cmds, tea.Tick(m.opts.LoaderDelay, func(time.Time) tea.Msg { return loaderStartMsg{} }))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.SetSize(msg.Width, msg.Height)
		if m.loading {
			return m, nil
		}
		return m, m.checkVisibility()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmds []tea.Cmd
		cmds = append(cmds, m.touchAudio())
		cmds = append(cmds, m.scroll(msg))
		return m, tea.Batch(cmds...)

	case loaderStartMsg:
		return m, m.loaderTick()

	case loaderTickMsg:
		return m.advanceLoader()

	case loaderDoneMsg:
		m.loading = false
		zlog.Debug().Msg("portfolio: loader finished")
		return m, tea.Batch(m.initAudio(initFromLoader), m.checkVisibility())

	case audioInitMsg:
		if !msg.ok {
			return m, nil
		}
		wasReady := m.audioReady
		m.audioReady = true
		if msg.source == initFromInteraction && !wasReady {
			return m, m.showToast("AUDIO READY")
		}
		return m, nil

	case audioToggledMsg:
		if msg.failed {
			if !m.alertShown {
				m.alertShown = true
				m.alert = "Audio initialization failed. Check your audio device."
			}
			return m, nil
		}
		m.audioReady = true
		m.muted = msg.muted
		if !m.muted {
			return m, tea.Tick(clickDelay, func(time.Time) tea.Msg { return clickMsg{} })
		}
		return m, nil

	case clickMsg:
		m.play(profile.Click)
		return m, nil

	case notificationMsg:
		m.applyNotification(msg.n)
		var cmd tea.Cmd
		if msg.n != nil && msg.n.Kind == notification.KindToast {
			cmd = m.showToast(msg.n.Toast)
		}
		return m, tea.Batch(cmd, waitForNotification(m.opts.Notifications))

	case toastExpireMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case GlitchMsg:
		targets := m.glitchTargets()
		if len(targets) == 0 {
			return m, nil
		}
		return m, m.startGlitch(targets[m.opts.Rand.IntN(len(targets))], msg.Duration)

	case glitchEndMsg:
		if m.glitches[msg.target] == msg.id {
			delete(m.glitches, msg.target)
			m.refresh()
		}
		return m, nil

	case skillsRevealMsg:
		m.skillsShown = true
		m.refresh()
		return m, nil

	case rainTickMsg:
		m.rain.Step()
		return m, tea.Tick(rainInterval, func(time.Time) tea.Msg { return rainTickMsg{} })
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	first := m.touchAudio()
	if m.loading {
		return m, first
	}

	// Any key dismisses the alert.
	m.alert = ""

	switch {
	case key.Matches(msg, m.keys.Audio):
		return m, tea.Batch(first, m.toggleAudio())

	case key.Matches(msg, m.keys.Menu):
		m.menuOpen = !m.menuOpen
		m.play(profile.Click)
		return m, first

	case key.Matches(msg, m.keys.Close):
		m.menuOpen = false
		return m, first
	}

	if m.menuOpen {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.menuIndex > 0 {
				m.menuIndex--
			}
		case key.Matches(msg, m.keys.Down):
			if m.menuIndex < len(m.sections)-1 {
				m.menuIndex++
			}
		case key.Matches(msg, m.keys.Select):
			m.menuOpen = false
			m.play(profile.Click)
			return m, tea.Batch(first, m.jumpTo(m.menuIndex))
		}
		return m, first
	}

	switch {
	case key.Matches(msg, m.keys.NextCard):
		return m, tea.Batch(first, m.focusCard(1))
	case key.Matches(msg, m.keys.PrevCard):
		return m, tea.Batch(first, m.focusCard(-1))
	}

	return m, tea.Batch(first, m.scroll(msg))
}

// touchAudio starts audio initialization on the first interaction unless
// the loader already brought audio up.
func (m *Model) touchAudio() tea.Cmd {
	if m.audioTouched {
		return nil
	}
	m.audioTouched = true
	if m.audioReady {
		return nil
	}
	return m.initAudio(initFromInteraction)
}

func (m Model) initAudio(source initSource) tea.Cmd {
	audio := m.opts.Audio
	if audio == nil {
		return nil
	}
	parent, timeout := m.opts.Context, m.opts.AudioTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return audioInitMsg{source: source, ok: audio.EnsureInitialized(ctx)}
	}
}

// toggleAudio initializes audio if needed and then flips mute.
func (m Model) toggleAudio() tea.Cmd {
	audio := m.opts.Audio
	if audio == nil {
		return func() tea.Msg { return audioToggledMsg{failed: true} }
	}
	parent, timeout := m.opts.Context, m.opts.AudioTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		if !audio.EnsureInitialized(ctx) {
			return audioToggledMsg{failed: true}
		}
		return audioToggledMsg{muted: audio.ToggleMute()}
	}
}

func (m Model) play(name string) {
	if m.opts.Audio != nil {
		m.opts.Audio.Play(name)
	}
}

func (m *Model) showToast(text string) tea.Cmd {
	m.toastID++
	m.toast = text
	id := m.toastID
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpireMsg{id: id} })
}

func (m *Model) applyNotification(n *notification.Notification) {
	if n == nil || n.Kind != notification.KindSequencer {
		return
	}
	e := n.Event
	switch e.Type {
	case sequencer.EventReveal:
		m.typing = e.Text
	case sequencer.EventResponse:
		m.response = e.Text
	case sequencer.EventClear:
		m.typing = ""
		m.response = ""
	case sequencer.EventClosing:
		if m.closed {
			return
		}
		m.closed = true
		m.history = append(m.history, termLine{command: e.Command, response: e.Text})
	}
	m.refresh()
}

func (m *Model) startGlitch(target string, d time.Duration) tea.Cmd {
	m.glitchID++
	id := m.glitchID
	m.glitches[target] = id
	m.refresh()
	return tea.Tick(d, func(time.Time) tea.Msg { return glitchEndMsg{target: target, id: id} })
}

// glitchTargets returns the header and every section.
func (m Model) glitchTargets() []string {
	out := []string{targetHeader}
	for _, s := range m.sections {
		out = append(out, s.id)
	}
	return out
}

// scroll passes msg to the page and runs the scroll side effects when the
// offset moved.
func (m *Model) scroll(msg tea.Msg) tea.Cmd {
	before := m.page.YOffset
	var cmd tea.Cmd
	m.page, cmd = m.page.Update(msg)
	if m.page.YOffset == before {
		return cmd
	}
	return tea.Batch(cmd, m.onScroll())
}

func (m *Model) jumpTo(index int) tea.Cmd {
	if index < 0 || index >= len(m.sections) {
		return nil
	}
	before := m.page.YOffset
	m.page.SetYOffset(m.sections[index].start)
	if m.page.YOffset == before {
		return nil
	}
	return m.onScroll()
}

func (m *Model) onScroll() tea.Cmd {
	m.scrolled = m.page.YOffset > 0

	var cmds []tea.Cmd
	if len(m.sections) > 0 && m.opts.Rand.Float64() < scrollGlitchProbability {
		s := m.sections[m.opts.Rand.IntN(len(m.sections))]
		cmds = append(cmds, m.startGlitch(s.id, scrollGlitch))
	}
	cmds = append(cmds, m.checkVisibility())
	return tea.Batch(cmds...)
}

// checkVisibility chimes for sections that just became at least half visible
// and schedules the skill bars the first time Skills shows up.
func (m *Model) checkVisibility() tea.Cmd {
	var cmd tea.Cmd
	top, bottom := m.page.YOffset, m.page.YOffset+m.page.Height
	for _, s := range m.sections {
		shown := s.visibleRatio(top, bottom)
		now := shown >= 0.5
		if now && !m.visible[s.id] {
			if m.opts.Effects != nil {
				m.opts.Effects.Trigger("section_chime")
			}
		}
		m.visible[s.id] = now

		if s.id == sectionSkills && shown >= 0.1 && !m.skillsSeen {
			m.skillsSeen = true
			cmd = tea.Tick(skillRevealDelay, func(time.Time) tea.Msg { return skillsRevealMsg{} })
		}
	}
	return cmd
}

func (m *Model) focusCard(delta int) tea.Cmd {
	n := len(m.opts.Content.Projects)
	if n == 0 {
		return nil
	}
	m.focusedCard = ((m.focusedCard+delta)%n + n) % n
	m.play(profile.Hover)
	cmd := m.startGlitch(cardTarget(m.focusedCard), cardGlitch)

	for _, s := range m.sections {
		if s.id != sectionProjects {
			continue
		}
		line := s.start + s.cardOffsets[m.focusedCard]
		if line < m.page.YOffset || line >= m.page.YOffset+m.page.Height {
			m.page.SetYOffset(line)
			return tea.Batch(cmd, m.onScroll())
		}
	}
	return cmd
}

func (m Model) loaderTick() tea.Cmd {
	return tea.Tick(m.opts.LoaderTick, func(time.Time) tea.Msg { return loaderTickMsg{} })
}

// advanceLoader grows the progress by a random step and swaps the message
// at each quarter.
func (m Model) advanceLoader() (tea.Model, tea.Cmd) {
	if !m.loading || m.loaderFilled {
		return m, nil
	}
	m.progress += m.opts.Rand.Float64() * m.opts.Loader.MaxStep
	if m.loaderText < len(m.opts.Loader.Messages)-1 && m.progress >= float64(m.loaderText+1)*0.25 {
		m.loaderText++
	}
	if m.progress >= 1 {
		m.progress = 1
		m.loaderFilled = true
		return m, tea.Tick(m.opts.LoaderFinish, func(time.Time) tea.Msg { return loaderDoneMsg{} })
	}
	return m, m.loaderTick()
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.rain.Resize(width, height)
	m.page.Width = m.contentWidth()
	m.page.Height = max(height-headerHeight-footerHeight, 0)
	m.refresh()
	return m
}

func (m Model) contentWidth() int {
	return min(m.width, maxContentWidth)
}

