package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scheerer/light-cascade/internal/clock"
	"github.com/scheerer/light-cascade/internal/settings"
)

type fakeIR struct{ codes []uint32 }

func (f *fakeIR) ReadIR() (uint32, bool) {
	if len(f.codes) == 0 {
		return 0, false
	}
	c := f.codes[0]
	f.codes = f.codes[1:]
	return c, true
}

type fakeSerial struct{ bytes []byte }

func (f *fakeSerial) TryReadByte() (byte, bool) {
	if len(f.bytes) == 0 {
		return 0, false
	}
	b := f.bytes[0]
	f.bytes = f.bytes[1:]
	return b, true
}

func newMapper(ir *fakeIR, serial *fakeSerial) (*Mapper, *settings.Live, *clock.Manual) {
	c := clock.NewManual(0)
	live := settings.NewLive(settings.Defaults())
	// pass absent sources as nil interfaces, not typed nil pointers
	var irSrc IRSource
	if ir != nil {
		irSrc = ir
	}
	var serialSrc SerialSource
	if serial != nil {
		serialSrc = serial
	}
	return NewMapper(irSrc, serialSrc, MagicRemote(), live, c), live, c
}

func TestReleaseWithoutDownCodeIsNone(t *testing.T) {
	m, live, _ := newMapper(&fakeIR{codes: []uint32{ReleaseCode}}, nil)

	cmd := m.Poll()
	assert.Equal(t, OpNone, cmd.Op)
	assert.False(t, live.Dirty())
	assert.Equal(t, settings.Defaults(), live.Get())
}

func TestHeldKeyRepeats(t *testing.T) {
	ir := &fakeIR{codes: []uint32{MagicFlash, ReleaseCode, ReleaseCode}}
	m, live, c := newMapper(ir, nil)

	for i := 0; i < 3; i++ {
		c.Advance(110)
		cmd := m.Poll()
		assert.Equal(t, OpIncreaseOnTime, cmd.Op)
		assert.Equal(t, MagicFlash, cmd.Raw)
	}
	assert.Equal(t, uint32(1300), live.Get().OnDurationMs)
	assert.True(t, live.Dirty())
	assert.Equal(t, uint32(330), m.LastPressMs())
}

func TestIRIsPreferredOverSerial(t *testing.T) {
	ir := &fakeIR{codes: []uint32{MagicFade}}
	serial := &fakeSerial{bytes: []byte{'s'}}
	m, live, _ := newMapper(ir, serial)

	cmd := m.Poll()
	assert.Equal(t, SourceIR, cmd.Source)
	assert.Equal(t, OpIncreaseSpacing, cmd.Op)
	assert.Equal(t, int32(5), live.Get().SpacingMs)
	assert.Len(t, serial.bytes, 1, "one key per poll")

	cmd = m.Poll()
	assert.Equal(t, SourceSerial, cmd.Source)
	assert.Equal(t, OpDecreaseSpacing, cmd.Op)
	assert.Equal(t, int32(4), live.Get().SpacingMs)

	assert.Equal(t, OpNone, m.Poll().Op)
}

func TestSerialShortcuts(t *testing.T) {
	m, live, _ := newMapper(nil, &fakeSerial{bytes: []byte("qqaws")})
	for i := 0; i < 5; i++ {
		m.Poll()
	}
	assert.Equal(t, settings.Settings{OnDurationMs: 1100, SpacingMs: 0}, live.Get())
}

func TestUnrecognizedDoesNotMutate(t *testing.T) {
	ir := &fakeIR{codes: []uint32{0x00FF906F, ReleaseCode}}
	m, live, c := newMapper(ir, &fakeSerial{bytes: []byte{'x'}})
	c.Set(1000)

	assert.Equal(t, OpUnrecognized, m.Poll().Op)
	cmd := m.Poll()
	assert.Equal(t, OpUnrecognized, cmd.Op, "repeat of an unknown key stays unknown")
	assert.Equal(t, uint32(0x00FF906F), cmd.Raw)
	assert.Equal(t, OpUnrecognized, m.Poll().Op)

	assert.False(t, live.Dirty())
	assert.Equal(t, uint32(0), m.LastPressMs(), "unknown keys do not count as activity")
}

func TestStepsPerSource(t *testing.T) {
	ir := &fakeIR{codes: []uint32{MagicSmooth}}
	m, live, _ := newMapper(ir, &fakeSerial{bytes: []byte{'a'}})
	m.SetSteps(SourceIR, Steps{OnTimeMs: 50, SpacingMs: 25})
	m.SetSteps(SourceSerial, Steps{OnTimeMs: 250, SpacingMs: 1})

	m.Poll()
	m.Poll()
	assert.Equal(t, settings.Settings{OnDurationMs: 750, SpacingMs: -25}, live.Get())
}

func TestDecreaseOnTimeStopsAtZero(t *testing.T) {
	m, live, _ := newMapper(nil, &fakeSerial{bytes: []byte("aaaaaaaaaaaa")})
	for i := 0; i < 12; i++ {
		m.Poll()
	}
	assert.Equal(t, uint32(0), live.Get().OnDurationMs)
}

func TestNormalizeRemembersAcrossSources(t *testing.T) {
	m, _, _ := newMapper(nil, nil)
	assert.Equal(t, OpIncreaseOnTime, m.Normalize(KeyEvent{Source: SourceIR, Code: MagicPlus}).Op)
	assert.Equal(t, OpDecreaseSpacing, m.Normalize(KeyEvent{Source: SourceSerial, Code: 's'}).Op)
	// serial input does not disturb the held IR key
	assert.Equal(t, OpIncreaseOnTime, m.Normalize(KeyEvent{Source: SourceIR, Code: ReleaseCode}).Op)
	assert.Equal(t, OpUnrecognized, m.Normalize(KeyEvent{Source: SourceSerial, Code: 0x1FF}).Op)
}
