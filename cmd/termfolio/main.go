// Package main provides the termfolio entry point.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/termfolio/internal/app/effects"
	"github.com/osa030/termfolio/internal/app/notification"
	"github.com/osa030/termfolio/internal/app/sequencer"
	"github.com/osa030/termfolio/internal/app/sfx"
	"github.com/osa030/termfolio/internal/infra/config"
	"github.com/osa030/termfolio/internal/infra/logger"
	"github.com/osa030/termfolio/internal/infra/speaker"
	"github.com/osa030/termfolio/internal/ui/portfolio"
)

const defaultConfigPath = "config/termfolio.yaml"

var (
	app        = kingpin.New("termfolio", "Terminal portfolio with a typing animation and synthesized sound effects")
	configPath = app.Flag("config", "Path to config file (built-in defaults when missing)").Default(defaultConfigPath).String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file").String()
	seed       = app.Flag("seed", "Seed for every random source (0 picks one)").Uint64()
	mute       = app.Flag("mute", "Start with audio muted").Bool()

	replayCmd     = app.Command("replay", "Run the terminal animation headless and print the transcript")
	replayInstant = replayCmd.Flag("instant", "Skip all delays").Bool()

	playCmd   = app.Command("play", "Play one sound effect and exit")
	playSound = playCmd.Arg("sound", "Sound name (see list-sounds)").Required().String()

	listSoundsCmd  = app.Command("list-sounds", "List available sound effects and exit")
	listEffectsCmd = app.Command("list-effects", "List available ambient effects and exit")
)

func init() {
	app.Command("start", "Start the terminal portfolio (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listEffectsCmd.FullCommand() {
		printEffects()
		return
	}

	// The UI owns the terminal, so it logs to a file unless told otherwise.
	loggerConfig := logger.Config{Output: logger.OutputStderr, Level: "info"}
	if command == "start" {
		loggerConfig.Output = logger.DefaultFile
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		zlog.Error().Msgf("Failed to load config: %v", err)
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *mute {
		cfg.Audio.Muted = true
	}
	if *seed != 0 {
		cfg.Sequencer.Seed = *seed
	}

	switch command {
	case listSoundsCmd.FullCommand():
		err = printSounds(cfg)
	case playCmd.FullCommand():
		err = playOne(cfg, *playSound)
	case replayCmd.FullCommand():
		err = replay(cfg, *replayInstant)
	default:
		err = run(cfg)
	}
	if err != nil {
		zlog.Error().Msgf("termfolio: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}

// loadConfig reads path, falling back to the built-in defaults when the
// default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) && path == defaultConfigPath {
		zlog.Info().Msgf("Config %s not found, using defaults", path)
		return config.Default()
	}
	zlog.Info().Msgf("Loading config from %s", path)
	return config.Load(path)
}

// newRand returns a seeded source. stream separates the sources that share one seed.
func newRand(cfg *config.Config, stream uint64) *rand.Rand {
	s := cfg.Sequencer.Seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(s, stream))
}

// newSoundManager builds the sound manager. The device is opened lazily on
// the first EnsureInitialized.
func newSoundManager(cfg *config.Config) (*sfx.Manager, error) {
	extra, err := cfg.ExtraProfiles()
	if err != nil {
		return nil, err
	}
	factory := func(ctx context.Context) (sfx.Context, error) {
		if cfg.Audio.Disabled {
			return nil, errors.New("audio disabled by configuration")
		}
		dev, err := speaker.Open(ctx, speaker.Options{
			SampleRate: cfg.Audio.SampleRate,
			BufferSize: cfg.AudioBuffer(),
		})
		if err != nil {
			return nil, err
		}
		return dev, nil
	}
	return sfx.NewManager(factory,
		sfx.WithRand(newRand(cfg, 1)),
		sfx.WithProfiles(extra...),
		sfx.WithMuted(cfg.Audio.Muted),
	), nil
}

// newEffects validates the enabled effects and builds their loop.
func newEffects(cfg *config.Config, sound effects.SoundPlayer) (*effects.Loop, error) {
	for name, ec := range cfg.Effects {
		if !ec.Enabled {
			continue
		}
		factory, ok := effects.GetRegistered()[name]
		if !ok {
			return nil, errors.Newf("unknown effect %q", name)
		}
		if err := factory().ValidateConfig(ec.Settings); err != nil {
			return nil, errors.Wrapf(err, "effect %s", name)
		}
	}
	built, err := effects.Build(cfg.EnabledEffects())
	if err != nil {
		return nil, err
	}
	env := effects.NewEnv(sound, nil, newRand(cfg, 3))
	return effects.NewLoop(clockwork.NewRealClock(), env, built), nil
}

// run starts the terminal portfolio.
func run(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sound, err := newSoundManager(cfg)
	if err != nil {
		return err
	}
	defer sound.Close()

	s, err := cfg.BuildScript()
	if err != nil {
		return err
	}

	notifier := notification.NewManager()
	defer notifier.Close()
	stream := notification.NewChanStream(64)
	defer stream.Close()
	notifier.Subscribe(stream)

	machine := sequencer.NewMachine(s, cfg.Timing(),
		sequencer.WithRand(newRand(cfg, 2)),
		sequencer.WithEmitter(notifier),
		sequencer.WithSound(sound),
	)
	runner := sequencer.NewRunner(machine, clockwork.NewRealClock(), cfg.Timing().StartDelay)

	loop, err := newEffects(cfg, sound)
	if err != nil {
		return err
	}

	model := portfolio.New(portfolio.Options{
		Content:       cfg.Content,
		Loader:        cfg.Loader,
		LoaderDelay:   cfg.LoaderDelay(),
		LoaderTick:    cfg.LoaderTick(),
		LoaderFinish:  cfg.LoaderFinish(),
		AudioTimeout:  cfg.AudioInitTimeout(),
		Notifications: stream.C(),
		Audio:         sound,
		Effects:       loop,
		Rand:          newRand(cfg, 4),
		Context:       ctx,
	})
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	loop.SetGlitcher(portfolio.Glitcher{Program: program})

	if cfg.Audio.Disabled {
		notifier.Toast("AUDIO DISABLED")
	}

	zlog.Info().Msgf("termfolio: starting: effects=%d muted=%v", len(cfg.EnabledEffects()), cfg.Audio.Muted)
	runner.Start(ctx)
	loop.Start(ctx)

	_, err = program.Run()

	runner.Stop()
	loop.Stop()
	zlog.Info().Msg("termfolio: stopped")

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "terminal UI failed")
	}
	return nil
}

const banner = `
    ██████╗  ██████╗  ██████╗ ██╗   ██╗███████╗
    ██╔══██╗██╔═══██╗██╔════╝ ██║   ██║██╔════╝
    ██████╔╝██║   ██║██║  ███╗██║   ██║█████╗
    ██╔══██╗██║   ██║██║   ██║██║   ██║██╔══╝
    ██║  ██║╚██████╔╝╚██████╔╝╚██████╔╝███████╗
    ╚═╝  ╚═╝ ╚═════╝  ╚═════╝  ╚═════╝ ╚══════╝
`

// replay runs the sequencer without the UI and prints each finished line.
func replay(cfg *config.Config, instant bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := cfg.BuildScript()
	if err != nil {
		return err
	}
	timing := cfg.Timing()
	if instant {
		timing = sequencer.Timing{}
	}

	sound, err := newSoundManager(cfg)
	if err != nil {
		return err
	}
	defer sound.Close()
	if !instant {
		initCtx, initCancel := context.WithTimeout(ctx, cfg.AudioInitTimeout())
		if !sound.EnsureInitialized(initCtx) {
			zlog.Warn().Msg("termfolio: replaying without sound")
		}
		initCancel()
	}

	fmt.Print(banner)
	fmt.Printf("    Welcome to %s's %s\n\n", cfg.Content.Owner, cfg.Content.Tagline)

	var prompt string
	emitter := sequencer.EmitterFunc(func(e sequencer.Event) {
		switch e.Type {
		case sequencer.EventReveal:
			prompt = e.Text
		case sequencer.EventResponse:
			fmt.Printf("$ %s\n%s\n", prompt, e.Text)
		case sequencer.EventClosing:
			fmt.Printf("$ %s\n%s\n", e.Command, e.Text)
		}
	})
	machine := sequencer.NewMachine(s, timing,
		sequencer.WithRand(newRand(cfg, 2)),
		sequencer.WithEmitter(emitter),
		sequencer.WithSound(sound),
	)
	runner := sequencer.NewRunner(machine, clockwork.NewRealClock(), timing.StartDelay)
	runner.Start(ctx)
	<-runner.Done()
	return nil
}

// playOne plays a single sound and waits for it to finish.
func playOne(cfg *config.Config, name string) error {
	sound, err := newSoundManager(cfg)
	if err != nil {
		return err
	}
	defer sound.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AudioInitTimeout())
	defer cancel()
	if !sound.EnsureInitialized(ctx) {
		return errors.New("audio initialization failed")
	}

	p, ok := sound.Profile(name)
	if !ok {
		return errors.Newf("unknown sound %q (available: %s)", name, strings.Join(sound.Profiles(), ", "))
	}
	sound.Play(name)
	time.Sleep(p.Duration + cfg.AudioBuffer()*2)
	return nil
}

// printSounds prints the sound table.
func printSounds(cfg *config.Config) error {
	sound, err := newSoundManager(cfg)
	if err != nil {
		return err
	}
	fmt.Println("Available Sounds:")
	for _, name := range sound.Profiles() {
		p, _ := sound.Profile(name)
		freq := fmt.Sprintf("%.0fHz", p.Frequency.Base)
		if p.Frequency.Dynamic() {
			freq = fmt.Sprintf("%.0f-%.0fHz", p.Frequency.Base, p.Frequency.Base+p.Frequency.Spread)
		}
		fmt.Printf("  %-14s %-9s %-12s %6v  vol=%.2f\n", p.Name, p.Waveform, freq, p.Duration, p.Volume)
	}
	return nil
}

// printEffects prints available effects.
func printEffects() {
	fmt.Println("Available Effects:")
	registry := effects.GetRegistered()
	for _, name := range effects.Names() {
		e := registry[name]()
		fmt.Printf("  %-16s - %s\n", e.Name(), e.Description())
	}
}
