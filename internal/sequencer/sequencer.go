// Package sequencer runs the chase pattern: a two-state machine stepped by
// polling a single Timer, never by sleeping.
//
// With a gap (spacing >= 0) the current light is held for the on-duration,
// switched off, and after the gap the next light comes on. A zero gap lights
// the next position in the same poll. With an overlap (spacing < 0) the next
// light comes on while the current one is still lit and the current one goes
// off once the overlap has passed.
package sequencer

import (
	"go.uber.org/zap"

	"github.com/scheerer/light-cascade/internal/clock"
	"github.com/scheerer/light-cascade/internal/logging"
	"github.com/scheerer/light-cascade/internal/ring"
	"github.com/scheerer/light-cascade/internal/settings"
	"github.com/scheerer/light-cascade/lights"
)

var logger = logging.New("sequencer")

type State int

const (
	StateOn State = iota
	StateOff
)

func (s State) String() string {
	switch s {
	case StateOn:
		return "on"
	case StateOff:
		return "off"
	default:
		return "unknown"
	}
}

type Sequencer struct {
	ring  *ring.Ring
	timer *clock.Timer
	live  *settings.Live
	out   lights.Driver

	state State
	// true while an overlap Off phase is running: current and next are both lit
	overlapping bool
}

func New(r *ring.Ring, c clock.Clock, live *settings.Live, out lights.Driver) *Sequencer {
	return &Sequencer{
		ring:  r,
		timer: clock.NewTimer(c),
		live:  live,
		out:   out,
		state: StateOn,
	}
}

// Start switches every light off, then lights the current position and
// arms the timer for its hold time.
func (s *Sequencer) Start() {
	for _, id := range s.ring.Positions() {
		s.out.SetLight(id, false)
	}
	cfg := s.live.Get()
	logger.With(
		zap.Int("positions", s.ring.Len()),
		zap.Uint32("onDurationMs", cfg.OnDurationMs),
		zap.Int32("spacingMs", cfg.SpacingMs)).
		Info("Starting sequence")
	s.lightCurrent(cfg)
}

// Poll performs the next transition if the timer has expired. Settings are
// read here, so edits apply from the next transition on.
func (s *Sequencer) Poll() {
	if !s.timer.Expired() {
		return
	}
	cfg := s.live.Get()

	switch s.state {
	case StateOn:
		if cfg.SpacingMs < 0 {
			s.beginOverlap(cfg)
		} else {
			s.endOn(cfg)
		}
	case StateOff:
		if s.overlapping {
			s.endOverlap(cfg)
		} else {
			s.lightCurrent(cfg)
		}
	}
}

// Stop switches every light off.
func (s *Sequencer) Stop() {
	for _, id := range s.ring.Positions() {
		s.out.SetLight(id, false)
	}
}

func (s *Sequencer) State() State {
	return s.state
}

func (s *Sequencer) Current() lights.PositionID {
	return s.ring.Current()
}

// endOn finishes the hold of the current light in the gap regime.
func (s *Sequencer) endOn(cfg settings.Settings) {
	if cfg.SpacingMs == 0 && s.ring.Len() == 1 {
		// the only light would go off and on again in the same poll
		s.timer.Start(cfg.OnHoldMs())
		return
	}
	s.out.SetLight(s.ring.Current(), false)
	s.ring.Advance()

	if cfg.SpacingMs > 0 {
		s.timer.Start(uint32(cfg.SpacingMs))
		s.enter(StateOff, false)
		return
	}
	// no gap: the Off phase is already over, light the next one now
	s.lightCurrent(cfg)
}

// beginOverlap lights the next position alongside the current one.
func (s *Sequencer) beginOverlap(cfg settings.Settings) {
	s.out.SetLight(s.ring.PeekNext(), true)
	s.timer.Start(cfg.Overlap())
	s.enter(StateOff, true)
}

// endOverlap switches the old position off once the overlap has passed.
func (s *Sequencer) endOverlap(cfg settings.Settings) {
	if s.ring.Len() > 1 {
		s.out.SetLight(s.ring.Current(), false)
	}
	s.timer.Start(cfg.OnHoldMs())
	s.ring.Advance()
	s.enter(StateOn, false)
}

func (s *Sequencer) lightCurrent(cfg settings.Settings) {
	s.out.SetLight(s.ring.Current(), true)
	s.timer.Start(cfg.OnHoldMs())
	s.enter(StateOn, false)
}

func (s *Sequencer) enter(state State, overlapping bool) {
	s.state = state
	s.overlapping = overlapping
	logger.With(
		zap.Stringer("state", state),
		zap.Stringer("position", s.ring.Current()),
		zap.Uint32("armedMs", s.timer.Duration())).
		Debug("Transition")
}
