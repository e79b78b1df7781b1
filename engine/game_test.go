package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/term-snake/core"
	"github.com/lixenwraith/term-snake/status"
)

var errNoMoreKeys = errors.New("no more keys")

// fakeKeys serves scripted keys: ready for Next, live for TryNext, stale dropped by Flush
type fakeKeys struct {
	ready   []core.Key
	live    []core.Key
	stale   []core.Key
	flushes int
}

func (k *fakeKeys) TryNext() (core.Key, bool) {
	if len(k.live) == 0 {
		return core.KeyNone, false
	}
	key := k.live[0]
	k.live = k.live[1:]
	return key, true
}

func (k *fakeKeys) Next(ctx context.Context) (core.Key, error) {
	if err := ctx.Err(); err != nil {
		return core.KeyNone, err
	}
	if len(k.ready) == 0 {
		return core.KeyNone, errNoMoreKeys
	}
	key := k.ready[0]
	k.ready = k.ready[1:]
	return key, nil
}

func (k *fakeKeys) Flush() int {
	k.flushes++
	n := len(k.stale)
	k.stale = nil
	return n
}

type recordingView struct {
	calls  []string
	frames []Frame
}

func (v *recordingView) Ready(f Frame) { v.record("ready", f) }
func (v *recordingView) Play(f Frame)  { v.record("play", f) }
func (v *recordingView) Died(f Frame)  { v.record("died", f) }

func (v *recordingView) record(name string, f Frame) {
	v.calls = append(v.calls, name)
	v.frames = append(v.frames, f)
}

func (v *recordingView) count(name string) int {
	n := 0
	for _, c := range v.calls {
		if c == name {
			n++
		}
	}
	return n
}

type countingSound struct {
	eats, deaths int
}

func (s *countingSound) PlayEat()   { s.eats++ }
func (s *countingSound) PlayDeath() { s.deaths++ }

type countingNotifier struct {
	died int
}

func (n *countingNotifier) NotifyDied() { n.died++ }

type recordingPublisher struct {
	phases []Phase
}

func (p *recordingPublisher) Publish(phase Phase, _ Frame) { p.phases = append(p.phases, phase) }

type gameHarness struct {
	game     *Game
	sim      *Simulation
	keys     *fakeKeys
	view     *recordingView
	sound    *countingSound
	notifier *countingNotifier
	pub      *recordingPublisher
	clock    *MockTimeProvider
	metrics  *status.Registry
}

const (
	testTick  = 100 * time.Millisecond
	testPause = 2500 * time.Millisecond
)

func newGameHarness(t *testing.T, cfg SimConfig, rng Rand, keys *fakeKeys) *gameHarness {
	t.Helper()
	h := &gameHarness{
		sim:      newTestSim(t, cfg, rng),
		keys:     keys,
		view:     &recordingView{},
		sound:    &countingSound{},
		notifier: &countingNotifier{},
		pub:      &recordingPublisher{},
		clock:    NewMockTimeProvider(time.Time{}),
		metrics:  status.NewRegistry(),
	}
	h.game = NewGame(h.sim, GameConfig{Tick: testTick, DeathPause: testPause}, GameDeps{
		Keys:       keys,
		Rounds:     h.notifier,
		View:       h.view,
		Sound:      h.sound,
		Publishers: []FramePublisher{h.pub},
		Clock:      h.clock,
		Logger:     zerolog.Nop(),
		Metrics:    h.metrics,
	})
	return h
}

func (h *gameHarness) metric(key string) int64 {
	return h.metrics.Ints.Get(key).Load()
}

func TestGameQuitOnReadyScreen(t *testing.T) {
	keys := &fakeKeys{ready: []core.Key{core.KeyNone, core.KeyQuit}}
	h := newGameHarness(t, SimConfig{Width: 5, Height: 5, Start: core.Point{X: 2, Y: 2}, StartDir: core.DirRight}, NewRand(1), keys)

	if err := h.game.Run(context.Background()); err != nil {
		t.Fatalf("Expected nil on quit, got %v", err)
	}

	if h.view.count("ready") != 1 || h.view.count("play") != 0 {
		t.Errorf("Expected only the ready screen, got %v", h.view.calls)
	}
	if h.metric(status.Ticks) != 0 {
		t.Errorf("Expected no ticks, got %d", h.metric(status.Ticks))
	}
	if h.metric(status.Rounds) != 1 {
		t.Errorf("Expected 1 round, got %d", h.metric(status.Rounds))
	}
}

func TestGameRoundToWallAndBack(t *testing.T) {
	keys := &fakeKeys{ready: []core.Key{core.KeyRight}}
	h := newGameHarness(t, SimConfig{Width: 3, Height: 1, Start: core.Point{}, StartDir: core.DirLeft}, NewRand(1), keys)

	err := h.game.Run(context.Background())
	if !errors.Is(err, errNoMoreKeys) {
		t.Fatalf("Expected key source error to surface, got %v", err)
	}

	want := []string{"ready", "play", "play", "play", "died", "ready"}
	if len(h.view.calls) != len(want) {
		t.Fatalf("Expected calls %v, got %v", want, h.view.calls)
	}
	for i := range want {
		if h.view.calls[i] != want[i] {
			t.Errorf("Call %d: expected %s, got %s", i, want[i], h.view.calls[i])
		}
	}

	sleeps := h.clock.Sleeps()
	wantSleeps := []time.Duration{testTick, testTick, testTick, testPause}
	if len(sleeps) != len(wantSleeps) {
		t.Fatalf("Expected sleeps %v, got %v", wantSleeps, sleeps)
	}
	for i := range wantSleeps {
		if sleeps[i] != wantSleeps[i] {
			t.Errorf("Sleep %d: expected %v, got %v", i, wantSleeps[i], sleeps[i])
		}
	}

	if h.notifier.died != 1 {
		t.Errorf("Expected 1 died notification, got %d", h.notifier.died)
	}
	if h.sound.deaths != 1 {
		t.Errorf("Expected 1 death sound, got %d", h.sound.deaths)
	}
	if h.metric(status.DeathsWall) != 1 || h.metric(status.Ticks) != 3 {
		t.Errorf("Expected 1 wall death and 3 ticks, got %d and %d", h.metric(status.DeathsWall), h.metric(status.Ticks))
	}
	if h.metrics.Strings.Get(status.LastDeath).Load() != CauseWall.String() {
		t.Errorf("Expected last death %q, got %q", CauseWall.String(), h.metrics.Strings.Get(status.LastDeath).Load())
	}
	if h.keys.flushes != 2 {
		t.Errorf("Expected a flush per ready screen, got %d", h.keys.flushes)
	}
	if h.game.Phase() != PhaseAwaitingStart {
		t.Errorf("Expected awaiting start, got %s", h.game.Phase())
	}

	// Second ready screen shows a fresh snake
	last := h.view.frames[len(h.view.frames)-1]
	if !last.Alive || last.Kind(0, 0) != CellHead {
		t.Error("Expected reset board on the second ready screen")
	}
}

func TestGameEatingPlaysSound(t *testing.T) {
	// Food at (1,0) at construction and at each ready reset, (2,0) after the first eat
	rng := &scriptedRand{vals: []int{1, 0, 1, 0, 2, 0, 1, 0}}
	keys := &fakeKeys{ready: []core.Key{core.KeyRight}}
	h := newGameHarness(t, SimConfig{Width: 3, Height: 1, Start: core.Point{}, FoodCount: 1, StartDir: core.DirRight}, rng, keys)

	if err := h.game.Run(context.Background()); !errors.Is(err, errNoMoreKeys) {
		t.Errorf("Expected errNoMoreKeys on the second ready screen, got %v", err)
	}
	if rng.pos != len(rng.vals) {
		t.Errorf("Expected all %d samples consumed, got %d", len(rng.vals), rng.pos)
	}

	if h.sound.eats != 2 {
		t.Errorf("Expected 2 eat sounds, got %d", h.sound.eats)
	}
	if h.metric(status.FoodEaten) != 2 {
		t.Errorf("Expected 2 food eaten, got %d", h.metric(status.FoodEaten))
	}
	if h.sim.Best() != 2 {
		t.Errorf("Expected best 2, got %d", h.sim.Best())
	}
	var died Frame
	for i, c := range h.view.calls {
		if c == "died" {
			died = h.view.frames[i]
		}
	}
	if died.Score != 2 || died.Alive {
		t.Errorf("Expected death frame with score 2, got score %d alive %v", died.Score, died.Alive)
	}
}

func TestGameOneKeyPerTickAndReversalGuard(t *testing.T) {
	keys := &fakeKeys{
		ready: []core.Key{core.KeyRight},
		live:  []core.Key{core.KeyLeft, core.KeyDown},
	}
	h := newGameHarness(t, SimConfig{Width: 5, Height: 3, Start: core.Point{X: 1, Y: 0}, StartDir: core.DirUp}, NewRand(1), keys)

	h.game.Run(context.Background())

	// Tick 1: Left rejected, move right to (2,0)
	// Tick 2: Down applied, move to (2,1)
	// Tick 3: (2,2), tick 4: wall
	if h.metric(status.Ticks) != 4 {
		t.Errorf("Expected 4 ticks, got %d", h.metric(status.Ticks))
	}
	if h.metric(status.DeathsWall) != 1 || h.metric(status.DeathsSelf) != 0 {
		t.Errorf("Expected a single wall death, got wall %d self %d", h.metric(status.DeathsWall), h.metric(status.DeathsSelf))
	}

	// Frames: ready, then plays; the play after tick 2 has the head at (2,1)
	second := h.view.frames[2]
	if second.Kind(2, 1) != CellHead {
		t.Errorf("Expected head at (2,1) after two ticks:\n%s", second.String())
	}
}

func TestGameQuitDuringPlay(t *testing.T) {
	keys := &fakeKeys{
		ready: []core.Key{core.KeyDown},
		live:  []core.Key{core.KeyQuit},
	}
	h := newGameHarness(t, SimConfig{Width: 5, Height: 5, Start: core.Point{X: 2, Y: 2}, StartDir: core.DirRight}, NewRand(1), keys)

	if err := h.game.Run(context.Background()); err != nil {
		t.Fatalf("Expected nil on quit, got %v", err)
	}
	if h.metric(status.Ticks) != 0 {
		t.Errorf("Expected quit before stepping, got %d ticks", h.metric(status.Ticks))
	}
	if h.game.Phase() != PhasePlaying {
		t.Errorf("Expected phase playing at quit, got %s", h.game.Phase())
	}
}

func TestGameFlushesStaleKeys(t *testing.T) {
	keys := &fakeKeys{
		ready: []core.Key{core.KeyQuit},
		stale: []core.Key{core.KeyUp, core.KeyLeft},
	}
	h := newGameHarness(t, SimConfig{Width: 5, Height: 5, Start: core.Point{X: 2, Y: 2}, StartDir: core.DirRight}, NewRand(1), keys)

	h.game.Run(context.Background())

	if h.metric(status.KeysFlushed) != 2 {
		t.Errorf("Expected 2 flushed keys, got %d", h.metric(status.KeysFlushed))
	}
}

func TestGameCancelledContextReturnsNil(t *testing.T) {
	keys := &fakeKeys{ready: []core.Key{core.KeyRight}}
	h := newGameHarness(t, SimConfig{Width: 5, Height: 5, Start: core.Point{X: 2, Y: 2}, StartDir: core.DirRight}, NewRand(1), keys)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.game.Run(ctx); err != nil {
		t.Errorf("Expected nil on cancellation, got %v", err)
	}
}

func TestGamePublishesEveryFrame(t *testing.T) {
	keys := &fakeKeys{ready: []core.Key{core.KeyRight}}
	h := newGameHarness(t, SimConfig{Width: 2, Height: 1, Start: core.Point{}, StartDir: core.DirRight}, NewRand(1), keys)

	h.game.Run(context.Background())

	want := []Phase{PhaseAwaitingStart, PhasePlaying, PhasePlaying, PhaseDead, PhaseAwaitingStart}
	if len(h.pub.phases) != len(want) {
		t.Fatalf("Expected published phases %v, got %v", want, h.pub.phases)
	}
	for i := range want {
		if h.pub.phases[i] != want[i] {
			t.Errorf("Publish %d: expected %s, got %s", i, want[i], h.pub.phases[i])
		}
	}
}

func TestNewGameRequiresKeys(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic without a key source")
		}
	}()
	s := newTestSim(t, SimConfig{Width: 2, Height: 2, StartDir: core.DirRight}, NewRand(1))
	NewGame(s, GameConfig{}, GameDeps{})
}
