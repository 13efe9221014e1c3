// Package settings holds the two tunable chase parameters, the dirty flag
// that tracks unsaved edits, and the stored record layout.
package settings

import (
	"math"
)

const (
	DefaultOnDurationMs uint32 = 1000
	DefaultSpacingMs    int32  = 0
)

// Settings are the pattern parameters. SpacingMs > 0 is dead time between
// lights, 0 abuts them, < 0 overlaps adjacent lights by -SpacingMs.
type Settings struct {
	OnDurationMs uint32 `yaml:"on_duration_ms"`
	SpacingMs    int32  `yaml:"spacing_ms"`
}

func Defaults() Settings {
	return Settings{OnDurationMs: DefaultOnDurationMs, SpacingMs: DefaultSpacingMs}
}

// Overlap returns the overlap in ms, zero outside the overlap regime.
func (s Settings) Overlap() uint32 {
	if s.SpacingMs >= 0 {
		return 0
	}
	return uint32(-int64(s.SpacingMs))
}

// OnHoldMs is how long a freshly lit position is held before the next
// transition: the full on-duration with a gap, the part not shared with the
// neighbour with an overlap. An overlap beyond the on-duration holds for zero.
func (s Settings) OnHoldMs() uint32 {
	overlap := s.Overlap()
	if overlap >= s.OnDurationMs {
		return 0
	}
	return s.OnDurationMs - overlap
}

// Live is the single mutable copy of the Settings along with the dirty flag.
type Live struct {
	cur       Settings
	dirty     bool
	changedAt uint32
}

func NewLive(s Settings) *Live {
	return &Live{cur: s}
}

func (l *Live) Get() Settings {
	return l.cur
}

// Set replaces the settings and marks them dirty if they changed.
func (l *Live) Set(s Settings, nowMs uint32) {
	if s == l.cur {
		return
	}
	l.cur = s
	l.MarkDirty(nowMs)
}

// AdjustOnDuration adds delta, saturating at 0 and at the type maximum.
func (l *Live) AdjustOnDuration(delta int32, nowMs uint32) {
	v := int64(l.cur.OnDurationMs) + int64(delta)
	if v < 0 {
		v = 0
	}
	if v > math.MaxUint32 {
		v = math.MaxUint32
	}
	s := l.cur
	s.OnDurationMs = uint32(v)
	l.Set(s, nowMs)
}

// AdjustSpacing adds delta, saturating at the int32 range.
func (l *Live) AdjustSpacing(delta int32, nowMs uint32) {
	v := int64(l.cur.SpacingMs) + int64(delta)
	if v < math.MinInt32 {
		v = math.MinInt32
	}
	if v > math.MaxInt32 {
		v = math.MaxInt32
	}
	s := l.cur
	s.SpacingMs = int32(v)
	l.Set(s, nowMs)
}

func (l *Live) MarkDirty(nowMs uint32) {
	l.dirty = true
	l.changedAt = nowMs
}

func (l *Live) MarkClean() {
	l.dirty = false
}

func (l *Live) Dirty() bool {
	return l.dirty
}

// ChangedAt is the clock reading of the last mutation.
func (l *Live) ChangedAt() uint32 {
	return l.changedAt
}
