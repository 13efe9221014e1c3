package lights

import "fmt"

// PositionID identifies one light in the ring. Its meaning is up to the
// driver: a pin index, a bulb index, a cell on the console.
type PositionID int

func (p PositionID) String() string {
	return fmt.Sprintf("#%d", int(p))
}

// Driver switches a single light. Calls must not block the caller for longer
// than it takes to latch the new level, and setting the current level again
// must be harmless.
type Driver interface {
	SetLight(id PositionID, on bool)
}

// Closer is implemented by drivers holding hardware or network resources.
type Closer interface {
	Close() error
}

// Sequential returns the ids 0..n-1.
func Sequential(n int) []PositionID {
	ids := make([]PositionID, n)
	for i := range ids {
		ids[i] = PositionID(i)
	}
	return ids
}
