package clock

// Timer is a single-shot countdown checked by polling. A zero duration is
// always expired. Once Expired reports true it keeps doing so until the next
// Start, even if the counter later wraps past the start reading.
type Timer struct {
	clock    Clock
	start    uint32
	duration uint32
	fired    bool
}

func NewTimer(c Clock) *Timer {
	return &Timer{clock: c}
}

func (t *Timer) Start(durationMs uint32) {
	t.start = t.clock.NowMs()
	t.duration = durationMs
	t.fired = false
}

func (t *Timer) Expired() bool {
	if t.fired || t.duration == 0 {
		return true
	}
	if t.Elapsed() >= t.duration {
		t.fired = true
	}
	return t.fired
}

// Elapsed is the time since the last Start. Unsigned subtraction keeps it
// correct when the counter wrapped in between.
func (t *Timer) Elapsed() uint32 {
	return t.clock.NowMs() - t.start
}

func (t *Timer) Remaining() uint32 {
	if t.Expired() {
		return 0
	}
	e := t.Elapsed()
	if e >= t.duration {
		return 0
	}
	return t.duration - e
}

func (t *Timer) Duration() uint32 {
	return t.duration
}
