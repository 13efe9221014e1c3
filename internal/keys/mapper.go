package keys

import (
	"go.uber.org/zap"

	"github.com/scheerer/light-cascade/internal/clock"
	"github.com/scheerer/light-cascade/internal/logging"
	"github.com/scheerer/light-cascade/internal/settings"
)

var logger = logging.New("keys")

// IRSource yields decoded IR codes, including ReleaseCode, without blocking.
type IRSource interface {
	ReadIR() (uint32, bool)
}

// SerialSource yields console bytes without blocking.
type SerialSource interface {
	TryReadByte() (byte, bool)
}

// Steps is how far one command moves each setting.
type Steps struct {
	OnTimeMs  int32
	SpacingMs int32
}

var (
	DefaultIRSteps     = Steps{OnTimeMs: 100, SpacingMs: 5}
	DefaultSerialSteps = Steps{OnTimeMs: 100, SpacingMs: 1}
)

type Mapper struct {
	ir     IRSource
	serial SerialSource
	keymap Keymap
	live   *settings.Live
	clock  clock.Clock
	steps  map[Source]Steps

	keycodeDown uint32
	haveDown    bool
	lastPress   uint32
}

// NewMapper builds a Mapper. Either source may be nil.
func NewMapper(ir IRSource, serial SerialSource, km Keymap, live *settings.Live, c clock.Clock) *Mapper {
	return &Mapper{
		ir:     ir,
		serial: serial,
		keymap: km,
		live:   live,
		clock:  c,
		steps: map[Source]Steps{
			SourceIR:     DefaultIRSteps,
			SourceSerial: DefaultSerialSteps,
		},
		lastPress: c.NowMs(),
	}
}

func (m *Mapper) SetSteps(src Source, s Steps) {
	m.steps[src] = s
}

// LastPressMs is the clock reading of the last key that mapped to a command.
// Before any key it is the construction time.
func (m *Mapper) LastPressMs() uint32 {
	return m.lastPress
}

// Poll takes at most one key, IR first, and applies the command it maps to.
func (m *Mapper) Poll() Command {
	ev, ok := m.next()
	if !ok {
		return Command{Op: OpNone}
	}
	cmd := m.Normalize(ev)
	m.apply(cmd)
	return cmd
}

func (m *Mapper) next() (KeyEvent, bool) {
	if m.ir != nil {
		if code, ok := m.ir.ReadIR(); ok {
			return KeyEvent{Source: SourceIR, Code: code}, true
		}
	}
	if m.serial != nil {
		if b, ok := m.serial.TryReadByte(); ok {
			return KeyEvent{Source: SourceSerial, Code: uint32(b)}, true
		}
	}
	return KeyEvent{}, false
}

// Normalize maps a raw event to a command. An IR release/repeat code stands
// for the last real code seen, so a held key repeats its command; with no
// earlier code it maps to nothing.
func (m *Mapper) Normalize(ev KeyEvent) Command {
	code := ev.Code
	if ev.Source == SourceIR {
		if code == ReleaseCode {
			if !m.haveDown {
				return Command{Op: OpNone, Source: ev.Source, Raw: code}
			}
			code = m.keycodeDown
		} else {
			m.keycodeDown = code
			m.haveDown = true
		}
	}

	op, ok := m.keymap.Lookup(ev.Source, code)
	if !ok {
		return Command{Op: OpUnrecognized, Source: ev.Source, Raw: code}
	}
	return Command{Op: op, Source: ev.Source, Raw: code}
}

func (m *Mapper) apply(cmd Command) {
	now := m.clock.NowMs()
	step := m.steps[cmd.Source]

	switch cmd.Op {
	case OpNone:
		return
	case OpUnrecognized:
		logger.With(zap.Stringer("source", cmd.Source), zap.Uint32("code", cmd.Raw)).Info("Unrecognized key")
		return
	case OpIncreaseOnTime:
		m.live.AdjustOnDuration(step.OnTimeMs, now)
	case OpDecreaseOnTime:
		m.live.AdjustOnDuration(-step.OnTimeMs, now)
	case OpIncreaseSpacing:
		m.live.AdjustSpacing(step.SpacingMs, now)
	case OpDecreaseSpacing:
		m.live.AdjustSpacing(-step.SpacingMs, now)
	}
	m.lastPress = now

	s := m.live.Get()
	logger.With(
		zap.Stringer("command", cmd.Op),
		zap.Stringer("source", cmd.Source),
		zap.Uint32("onDurationMs", s.OnDurationMs),
		zap.Int32("spacingMs", s.SpacingMs)).
		Info("Settings changed")
}
