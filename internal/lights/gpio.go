package lights

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/scheerer/light-cascade/internal/logging"
	"github.com/scheerer/light-cascade/lights"
)

var logger = logging.New("lights")

// GPIO drives one output pin per position. Position i maps to pins[i].
type GPIO struct {
	mu        sync.Mutex
	pins      []gpio.PinIO
	activeLow bool
	levels    []gpio.Level
	known     []bool
}

var _ lights.Driver = (*GPIO)(nil)

// LookupPins resolves pin names such as "GPIO13" through the periph
// registry. host.Init must have run first.
func LookupPins(names []string) ([]gpio.PinIO, error) {
	pins := make([]gpio.PinIO, 0, len(names))
	for _, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("unknown gpio pin %q", name)
		}
		pins = append(pins, p)
	}
	return pins, nil
}

func NewGPIO(pins []gpio.PinIO, activeLow bool) *GPIO {
	return &GPIO{
		pins:      pins,
		activeLow: activeLow,
		levels:    make([]gpio.Level, len(pins)),
		known:     make([]bool, len(pins)),
	}
}

func (g *GPIO) SetLight(id lights.PositionID, on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := int(id)
	if i < 0 || i >= len(g.pins) {
		logger.With(zap.Stringer("position", id)).Warn("No pin for position")
		return
	}
	level := gpio.Level(on != g.activeLow)
	if g.known[i] && g.levels[i] == level {
		return
	}
	if err := g.pins[i].Out(level); err != nil {
		logger.With(zap.String("pin", g.pins[i].Name()), zap.Error(err)).Error("Failed to set pin")
		return
	}
	g.levels[i] = level
	g.known[i] = true
}

// Close drives every pin to its off level.
func (g *GPIO) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var firstErr error
	for _, p := range g.pins {
		if err := p.Out(gpio.Level(g.activeLow)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
