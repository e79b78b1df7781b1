package status

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Metric keys shared by the game loop and input capture
const (
	Rounds         = "game.rounds"
	Ticks          = "game.ticks"
	FoodEaten      = "game.food_eaten"
	DeathsWall     = "game.deaths.wall"
	DeathsSelf     = "game.deaths.self"
	KeysForwarded  = "input.forwarded"
	KeysDebounced  = "input.debounced"
	KeysIgnored    = "input.ignored"
	KeysFlushed    = "input.flushed"
	SpectatorsLive = "spectate.clients"
	FramesDropped  = "spectate.dropped"
	Phase          = "game.phase"
	LastDeath      = "game.last_death"
)

// Registry is the central metrics facade
// Writers cache pointers once; per-tick updates go straight to the atomics
type Registry struct {
	Ints    *MetricMap[atomic.Int64]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:    NewMetricMap[atomic.Int64](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Ints.Count() + r.Strings.Count()
}

// MarshalZerologObject writes every metric as a log field in key order
func (r *Registry) MarshalZerologObject(e *zerolog.Event) {
	r.Ints.Range(func(key string, v *atomic.Int64) {
		e.Int64(key, v.Load())
	})
	r.Strings.Range(func(key string, v *AtomicString) {
		e.Str(key, v.Load())
	})
}
