package status

import (
	"bytes"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestMetricMapGetCachesPointer(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()

	a := m.Get(Ticks)
	b := m.Get(Ticks)
	if a != b {
		t.Error("Expected the same pointer for repeated Get")
	}
	if !m.Has(Ticks) {
		t.Error("Expected key to exist after Get")
	}
	if m.Has(Rounds) {
		t.Error("Expected unknown key to be absent")
	}
}

func TestMetricMapConcurrentIncrements(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				r.Ints.Get(KeysForwarded).Add(1)
			}
		}()
	}
	wg.Wait()

	if got := r.Ints.Get(KeysForwarded).Load(); got != 100 {
		t.Errorf("Expected 100 forwarded keys, got %d", got)
	}
}

func TestMetricMapRangeSorted(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	m.Get("b")
	m.Get("c")
	m.Get("a")

	var keys []string
	m.Range(func(key string, _ *atomic.Int64) {
		keys = append(keys, key)
	})

	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Expected key %q at %d, got %q", want[i], i, keys[i])
		}
	}
}

func TestAtomicStringTruncates(t *testing.T) {
	var s AtomicString
	if s.Load() != "" {
		t.Errorf("Expected empty zero value, got %q", s.Load())
	}

	long := make([]byte, MaxStringLen+10)
	for i := range long {
		long[i] = 'x'
	}
	s.Store(string(long))
	if len(s.Load()) != MaxStringLen {
		t.Errorf("Expected length %d, got %d", MaxStringLen, len(s.Load()))
	}
}

func TestRegistryLogObject(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get(FoodEaten).Store(3)
	r.Strings.Get(LastDeath).Store("wall")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Object("metrics", r).Msg("summary")

	var line struct {
		Metrics map[string]any `json:"metrics"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Failed to decode log line: %v", err)
	}
	if got := line.Metrics[FoodEaten]; got != float64(3) {
		t.Errorf("Expected %s=3, got %v", FoodEaten, got)
	}
	if got := line.Metrics[LastDeath]; got != "wall" {
		t.Errorf("Expected %s=wall, got %v", LastDeath, got)
	}
	if r.TotalCount() != 2 {
		t.Errorf("Expected 2 metrics, got %d", r.TotalCount())
	}
}

func TestAtomicStringKeepsRunes(t *testing.T) {
	var s AtomicString
	// 31 ASCII bytes then a 3-byte rune straddling the cap
	val := ""
	for i := 0; i < MaxStringLen-1; i++ {
		val += "a"
	}
	val += "€"
	s.Store(val)

	if got := s.Load(); len(got) != MaxStringLen-1 {
		t.Errorf("Expected cut before the split rune at %d bytes, got %d", MaxStringLen-1, len(got))
	}
}
