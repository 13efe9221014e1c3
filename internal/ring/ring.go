// Package ring holds the ordered light positions and the cursor marking the
// active one.
package ring

import (
	"errors"

	"github.com/scheerer/light-cascade/lights"
)

var ErrEmpty = errors.New("ring needs at least one position")

type Ring struct {
	positions []lights.PositionID
	current   int
}

func New(positions []lights.PositionID) (*Ring, error) {
	if len(positions) == 0 {
		return nil, ErrEmpty
	}
	p := make([]lights.PositionID, len(positions))
	copy(p, positions)
	return &Ring{positions: p}, nil
}

func (r *Ring) Current() lights.PositionID {
	return r.positions[r.current]
}

// PeekNext returns the position after the current one without moving.
func (r *Ring) PeekNext() lights.PositionID {
	return r.positions[r.nextIndex()]
}

func (r *Ring) Advance() {
	r.current = r.nextIndex()
}

func (r *Ring) Index() int {
	return r.current
}

func (r *Ring) Len() int {
	return len(r.positions)
}

func (r *Ring) Positions() []lights.PositionID {
	p := make([]lights.PositionID, len(r.positions))
	copy(p, r.positions)
	return p
}

func (r *Ring) nextIndex() int {
	return (r.current + 1) % len(r.positions)
}
