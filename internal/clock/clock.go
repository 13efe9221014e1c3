// Package clock provides the millisecond counter and the polled Timer the
// light sequence is driven by.
package clock

import (
	"sync"
	"time"
)

// Clock supplies a monotonically increasing millisecond counter. The counter
// is 32 bits wide and wraps after roughly 49.7 days; consumers compare
// readings with unsigned subtraction.
type Clock interface {
	NowMs() uint32
}

// Monotonic counts milliseconds since it was created using the runtime's
// monotonic clock, so wall clock adjustments never move it.
type Monotonic struct {
	start time.Time
}

func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

func (m *Monotonic) NowMs() uint32 {
	return uint32(time.Since(m.start).Milliseconds())
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	mu sync.Mutex
	ms uint32
}

func NewManual(startMs uint32) *Manual {
	return &Manual{ms: startMs}
}

func (m *Manual) NowMs() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ms
}

func (m *Manual) Set(ms uint32) {
	m.mu.Lock()
	m.ms = ms
	m.mu.Unlock()
}

// Advance moves the clock forward, wrapping like the hardware counter would.
func (m *Manual) Advance(ms uint32) {
	m.mu.Lock()
	m.ms += ms
	m.mu.Unlock()
}
