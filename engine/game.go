package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/term-snake/core"
	"github.com/lixenwraith/term-snake/status"
)

// Phase is the round state
type Phase uint8

const (
	PhaseAwaitingStart Phase = iota // Ready screen, waiting for a direction
	PhasePlaying                    // Ticking
	PhaseDead                       // Death screen, then back to AwaitingStart
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingStart:
		return "awaiting_start"
	case PhasePlaying:
		return "playing"
	case PhaseDead:
		return "dead"
	}
	return "invalid"
}

// DefaultDeathPause is how long the death screen stays up
const DefaultDeathPause = 2500 * time.Millisecond

// KeySource yields translated, debounced keys in arrival order
type KeySource interface {
	// TryNext returns the oldest pending key without blocking
	TryNext() (core.Key, bool)
	// Next blocks until a key arrives, the source closes or ctx is done
	Next(ctx context.Context) (core.Key, error)
	// Flush discards pending keys and returns how many were dropped
	Flush() int
}

// RoundNotifier is told when a round ends so input debounce can be reset
type RoundNotifier interface {
	NotifyDied()
}

// View draws frames for each phase
type View interface {
	Ready(f Frame)
	Play(f Frame)
	Died(f Frame)
}

// Sounder plays gameplay cues
type Sounder interface {
	PlayEat()
	PlayDeath()
}

// FramePublisher receives every presented frame, e.g. spectators
type FramePublisher interface {
	Publish(phase Phase, f Frame)
}

// GameConfig holds loop timing
type GameConfig struct {
	Tick       time.Duration
	DeathPause time.Duration
}

// GameDeps are the collaborators of the loop; zero values fall back to no-ops
type GameDeps struct {
	Keys       KeySource
	Rounds     RoundNotifier
	View       View
	Sound      Sounder
	Publishers []FramePublisher
	Clock      Clock
	Logger     zerolog.Logger
	Metrics    *status.Registry
}

// Game drives the simulation: it is the only writer of Simulation state
type Game struct {
	sim  *Simulation
	cfg  GameConfig
	deps GameDeps
	log  zerolog.Logger

	phase Phase

	// Cached metric pointers
	statRounds     *atomic.Int64
	statTicks      *atomic.Int64
	statFood       *atomic.Int64
	statDeathsWall *atomic.Int64
	statDeathsSelf *atomic.Int64
	statFlushed    *atomic.Int64
	statPhase      *status.AtomicString
	statLastDeath  *status.AtomicString
}

// NewGame wires the loop around sim
func NewGame(sim *Simulation, cfg GameConfig, deps GameDeps) *Game {
	if deps.Keys == nil {
		panic("engine: game requires a key source")
	}
	if deps.View == nil {
		deps.View = nopView{}
	}
	if deps.Sound == nil {
		deps.Sound = nopSound{}
	}
	if deps.Rounds == nil {
		deps.Rounds = nopNotifier{}
	}
	if deps.Clock == nil {
		deps.Clock = NewTimeProvider()
	}
	if deps.Metrics == nil {
		deps.Metrics = status.NewRegistry()
	}
	if cfg.DeathPause < 0 {
		cfg.DeathPause = 0
	}

	m := deps.Metrics
	return &Game{
		sim:            sim,
		cfg:            cfg,
		deps:           deps,
		log:            deps.Logger.With().Str("component", "game").Logger(),
		phase:          PhaseAwaitingStart,
		statRounds:     m.Ints.Get(status.Rounds),
		statTicks:      m.Ints.Get(status.Ticks),
		statFood:       m.Ints.Get(status.FoodEaten),
		statDeathsWall: m.Ints.Get(status.DeathsWall),
		statDeathsSelf: m.Ints.Get(status.DeathsSelf),
		statFlushed:    m.Ints.Get(status.KeysFlushed),
		statPhase:      m.Strings.Get(status.Phase),
		statLastDeath:  m.Strings.Get(status.LastDeath),
	}
}

// Phase returns the current round state
func (g *Game) Phase() Phase { return g.phase }

// Run loops rounds until Quit is pressed, ctx is cancelled or the key source fails
// Quit and cancellation return nil
func (g *Game) Run(ctx context.Context) error {
	g.log.Info().Dur("tick", g.cfg.Tick).Msg("game loop started")
	defer g.log.Info().Msg("game loop stopped")

	g.setPhase(PhaseAwaitingStart)
	for {
		var (
			quit bool
			err  error
		)

		switch g.phase {
		case PhaseAwaitingStart:
			quit, err = g.awaitStart(ctx)
		case PhasePlaying:
			quit, err = g.tick(ctx)
		case PhaseDead:
			err = g.roundOver(ctx)
		}

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if quit {
			return nil
		}
	}
}

func (g *Game) setPhase(p Phase) {
	g.phase = p
	g.statPhase.Store(p.String())
}

func (g *Game) awaitStart(ctx context.Context) (bool, error) {
	g.sim.Reset()
	g.statRounds.Add(1)

	// Stale keys from the last round must not skip the ready screen
	if n := g.deps.Keys.Flush(); n > 0 {
		g.statFlushed.Add(int64(n))
		g.log.Debug().Int("keys", n).Msg("flushed stale input")
	}

	g.present(g.deps.View.Ready)

	for {
		key, err := g.deps.Keys.Next(ctx)
		if err != nil {
			return false, err
		}
		if key == core.KeyQuit {
			return true, nil
		}
		if dir, ok := key.Direction(); ok {
			g.sim.SetDirection(dir, false)
			g.log.Debug().Stringer("dir", dir).Msg("round started")
			g.setPhase(PhasePlaying)
			return false, nil
		}
	}
}

func (g *Game) tick(ctx context.Context) (bool, error) {
	if !g.sim.Alive() {
		g.setPhase(PhaseDead)
		return false, nil
	}

	// At most one key per tick, bursts are applied over successive ticks
	if key, ok := g.deps.Keys.TryNext(); ok {
		if key == core.KeyQuit {
			return true, nil
		}
		if dir, ok := key.Direction(); ok {
			g.sim.SetDirection(dir, true)
		}
	}

	outcome := g.sim.Step()
	g.statTicks.Add(1)

	switch outcome {
	case OutcomeAte:
		g.statFood.Add(1)
		g.deps.Sound.PlayEat()
	case OutcomeHitWall:
		g.statDeathsWall.Add(1)
		g.deps.Sound.PlayDeath()
	case OutcomeHitSelf:
		g.statDeathsSelf.Add(1)
		g.deps.Sound.PlayDeath()
	}

	g.present(g.deps.View.Play)

	return false, g.deps.Clock.Sleep(ctx, g.cfg.Tick)
}

func (g *Game) roundOver(ctx context.Context) error {
	cause := g.sim.DeathCause()
	g.statLastDeath.Store(cause.String())
	g.log.Debug().
		Stringer("cause", cause).
		Uint32("score", g.sim.Score()).
		Uint32("best", g.sim.Best()).
		Int("length", g.sim.Length()).
		Msg("snake died")

	g.present(g.deps.View.Died)
	g.deps.Rounds.NotifyDied()

	if err := g.deps.Clock.Sleep(ctx, g.cfg.DeathPause); err != nil {
		return err
	}
	g.setPhase(PhaseAwaitingStart)
	return nil
}

func (g *Game) present(draw func(Frame)) {
	f := g.sim.Frame()
	draw(f)
	for _, p := range g.deps.Publishers {
		p.Publish(g.phase, f)
	}
}

type nopView struct{}

func (nopView) Ready(Frame) {}
func (nopView) Play(Frame)  {}
func (nopView) Died(Frame)  {}

type nopSound struct{}

func (nopSound) PlayEat()   {}
func (nopSound) PlayDeath() {}

type nopNotifier struct{}

func (nopNotifier) NotifyDied() {}
