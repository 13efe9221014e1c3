package lights

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/scheerer/light-cascade/lights"
)

var (
	litStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	darkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Console draws the ring as a row of dots on a terminal, redrawing the same
// line whenever a light changes.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	index map[lights.PositionID]int
	state []bool
}

var _ lights.Driver = (*Console)(nil)

func NewConsole(w io.Writer, positions []lights.PositionID) *Console {
	c := &Console{
		w:     w,
		index: make(map[lights.PositionID]int, len(positions)),
		state: make([]bool, len(positions)),
	}
	for i, id := range positions {
		c.index[id] = i
	}
	return c
}

func (c *Console) SetLight(id lights.PositionID, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		logger.Warnf("console has no position %v", id)
		return
	}
	if c.state[i] == on {
		return
	}
	c.state[i] = on
	fmt.Fprint(c.w, "\r"+c.render())
}

func (c *Console) render() string {
	cells := make([]string, len(c.state))
	for i, on := range c.state {
		if on {
			cells[i] = litStyle.Render("●")
		} else {
			cells[i] = darkStyle.Render("○")
		}
	}
	return strings.Join(cells, " ")
}

func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w)
	return err
}
