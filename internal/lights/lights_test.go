package lights

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/scheerer/light-cascade/internal/clock"
	"github.com/scheerer/light-cascade/lights"
)

func TestRecorderIsIdempotent(t *testing.T) {
	c := clock.NewManual(10)
	r := NewRecorder(c)

	r.SetLight(3, true)
	r.SetLight(3, true)
	c.Advance(5)
	r.SetLight(3, false)

	assert.Equal(t, 3, r.Calls())
	assert.Equal(t, []Change{{AtMs: 10, ID: 3, On: true}, {AtMs: 15, ID: 3, On: false}}, r.Changes())
	assert.Equal(t, 0, r.Lit())

	r.Reset()
	assert.Empty(t, r.Changes())
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, lights.Sequential(3))

	c.SetLight(1, true)
	first := buf.String()
	assert.True(t, strings.HasPrefix(first, "\r"))
	assert.Equal(t, 1, strings.Count(first, "●"))
	assert.Equal(t, 2, strings.Count(first, "○"))

	c.SetLight(1, true)
	assert.Equal(t, first, buf.String(), "same level does not redraw")

	c.SetLight(9, true)
	assert.Equal(t, first, buf.String(), "unknown position is ignored")

	require.NoError(t, c.Close())
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestGPIO(t *testing.T) {
	pins := []*gpiotest.Pin{{N: "GPIO13"}, {N: "GPIO12"}}
	g := NewGPIO([]gpio.PinIO{pins[0], pins[1]}, false)

	g.SetLight(1, true)
	assert.Equal(t, gpio.High, pins[1].Read())
	assert.Equal(t, gpio.Low, pins[0].Read())

	g.SetLight(1, true)
	assert.Equal(t, gpio.High, pins[1].Read())

	g.SetLight(5, true)

	require.NoError(t, g.Close())
	assert.Equal(t, gpio.Low, pins[1].Read())
}

func TestGPIOActiveLow(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO6", L: gpio.High}
	g := NewGPIO([]gpio.PinIO{pin}, true)

	g.SetLight(0, true)
	assert.Equal(t, gpio.Low, pin.Read())
	g.SetLight(0, false)
	assert.Equal(t, gpio.High, pin.Read())

	require.NoError(t, g.Close())
	assert.Equal(t, gpio.High, pin.Read())
}

func TestLookupPinsUnknown(t *testing.T) {
	_, err := LookupPins([]string{"NO_SUCH_PIN"})
	assert.Error(t, err)
}
