package lights

import (
	"sync"

	"github.com/scheerer/light-cascade/internal/clock"
	"github.com/scheerer/light-cascade/lights"
)

// Change is one observed light transition.
type Change struct {
	AtMs uint32
	ID   lights.PositionID
	On   bool
}

// Recorder is a Driver that keeps the state of every light and a log of the
// transitions, stamped with the clock it was given. Repeated calls with the
// current level are counted but not logged.
type Recorder struct {
	mu      sync.Mutex
	clock   clock.Clock
	state   map[lights.PositionID]bool
	changes []Change
	calls   int
}

var _ lights.Driver = (*Recorder)(nil)

func NewRecorder(c clock.Clock) *Recorder {
	return &Recorder{clock: c, state: make(map[lights.PositionID]bool)}
}

func (r *Recorder) SetLight(id lights.PositionID, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if prev, ok := r.state[id]; ok && prev == on {
		return
	}
	r.state[id] = on
	r.changes = append(r.changes, Change{AtMs: r.clock.NowMs(), ID: id, On: on})
}

func (r *Recorder) IsOn(id lights.PositionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state[id]
}

// Lit returns how many lights are currently on.
func (r *Recorder) Lit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, on := range r.state {
		if on {
			n++
		}
	}
	return n
}

func (r *Recorder) Changes() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := make([]Change, len(r.changes))
	copy(c, r.changes)
	return c
}

func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = nil
}
