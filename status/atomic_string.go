package status

import (
	"sync/atomic"
	"unicode/utf8"
)

// MaxStringLen caps string metrics in bytes so log summaries stay one line
const MaxStringLen = 32

// AtomicString is a string metric such as the current phase or last death cause
// The zero value reads as ""
type AtomicString struct {
	v atomic.Pointer[string]
}

// Store replaces the value, cut at the last rune boundary within MaxStringLen
func (s *AtomicString) Store(val string) {
	if len(val) > MaxStringLen {
		cut := MaxStringLen
		for cut > 0 && !utf8.RuneStart(val[cut]) {
			cut--
		}
		val = val[:cut]
	}
	s.v.Store(&val)
}

// Load returns the stored value
func (s *AtomicString) Load() string {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return ""
}
