package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/lixenwraith/term-snake/audio"
	"github.com/lixenwraith/term-snake/config"
	"github.com/lixenwraith/term-snake/core"
	"github.com/lixenwraith/term-snake/engine"
	"github.com/lixenwraith/term-snake/input"
	"github.com/lixenwraith/term-snake/render"
	"github.com/lixenwraith/term-snake/spectate"
	"github.com/lixenwraith/term-snake/status"
)

func main() {
	// Panic Recovery: Ensure terminal is reset even if the game crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options are process flags that are not part of the game config
type options struct {
	debug bool
}

// loadConfig parses flags, the optional config file and the positional numbers, then validates
func loadConfig(args []string, stdin io.Reader, stdout, stderr io.Writer) (config.Config, options, error) {
	var opts options

	fs := flag.NewFlagSet("snake", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "TOML config file")
	fs.BoolVar(&opts.debug, "debug", false, "Write debug logs to "+logDir+"/"+logFileName)
	sound := fs.Bool("sound", false, "Enable sound effects")
	spectateAddr := fs.String("spectate", "", "Serve spectator websocket on host:port")
	seed := fs.Int64("seed", 0, "Food placement seed, 0 for time based")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "USAGE: snake [flags] [width] [height] [speed] [num_food]\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return config.Config{}, opts, fmt.Errorf("%w: %w", config.ErrUsage, err)
	}

	base := config.Default()
	fromFile := *configPath != ""
	if fromFile {
		var err error
		if base, err = config.LoadFile(*configPath); err != nil {
			return base, opts, err
		}
	}

	// Explicit flags win over the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sound":
			base.Sound = *sound
		case "spectate":
			base.Spectate = *spectateAddr
		case "seed":
			base.Seed = *seed
		}
	})

	cfg, err := config.Resolve(base, fromFile, fs.Args(), stdin, stdout)
	if err != nil {
		return cfg, opts, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, opts, err
	}
	return cfg, opts, nil
}

// checkTerminal compares the controlling terminal with the board, skipped when stdout is not a terminal
func checkTerminal(cfg config.Config) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("read terminal size: %w", err)
	}
	return cfg.CheckTerminal(cols, rows)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, opts, err := loadConfig(args, stdin, stdout, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "snake: %v\n", err)
		return 1
	}

	if err := checkTerminal(cfg); err != nil {
		fmt.Fprintf(stderr, "snake: %v\n", err)
		return 1
	}

	logger, logFile := setupLogging(opts.debug)
	if logFile != nil {
		defer logFile.Close()
	}
	session := uuid.NewString()
	logger = logger.With().Str("session", session).Logger()

	if err := play(cfg, session, logger); err != nil {
		logger.Error().Err(err).Msg("game ended with error")
		fmt.Fprintf(stderr, "snake: %v\n", err)
		return 1
	}
	return 0
}

// play owns the terminal from init to teardown
func play(cfg config.Config, session string, logger zerolog.Logger) error {
	logger.Info().
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Int("speed", cfg.Speed).
		Int("food", cfg.FoodCount).
		Int64("seed", cfg.Seed).
		Msg("starting")

	sim, err := engine.NewSimulation(engine.SimConfig{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Start:     core.Point{X: cfg.Width / 2, Y: cfg.Height / 2},
		FoodCount: cfg.FoodCount,
		StartDir:  core.DirRight,
	}, engine.NewRand(cfg.Seed))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metrics := status.NewRegistry()
	deps := engine.GameDeps{
		Logger:  logger,
		Metrics: metrics,
	}

	// Listen before taking over the terminal so address errors are readable
	var hub *spectate.Hub
	serveDone := make(chan struct{})
	if cfg.Spectate != "" {
		ln, err := net.Listen("tcp", cfg.Spectate)
		if err != nil {
			return fmt.Errorf("spectate: %w", err)
		}
		hub = spectate.NewHub(session, logger, metrics)
		deps.Publishers = append(deps.Publishers, hub)
		core.Go(func() {
			defer close(serveDone)
			if err := hub.ServeListener(ctx, ln); err != nil {
				logger.Warn().Err(err).Msg("spectator server failed")
			}
		})
	} else {
		close(serveDone)
	}

	if cfg.Sound {
		acfg := audio.DefaultAudioConfig()
		acfg.MasterVolume = float64(cfg.Volume) / 100
		sm := audio.NewSoundManager(acfg)
		if err := sm.Initialize(); err != nil {
			logger.Warn().Err(err).Msg("audio unavailable, continuing without sound")
		} else {
			defer sm.Cleanup()
			deps.Sound = sm
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	core.SetCrashScreen(screen)
	screen.HideCursor()

	queue := input.NewQueue()
	capture := input.NewCapture(screen, queue, logger, metrics)
	view := render.NewView(screen)
	capture.OnResize(view.Resize)
	capture.Start()

	deps.Keys = queue
	deps.Rounds = capture
	deps.View = view

	game := engine.NewGame(sim, engine.GameConfig{
		Tick:       cfg.TickInterval(),
		DeathPause: engine.DefaultDeathPause,
	}, deps)
	runErr := game.Run(ctx)

	capture.Stop()
	core.SetCrashScreen(nil)
	screen.Fini()

	cancel()
	<-serveDone

	logger.Info().
		Uint32("best", sim.Best()).
		Object("metrics", metrics).
		Msg("session summary")

	return runErr
}
