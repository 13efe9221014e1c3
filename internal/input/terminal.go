package input

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Terminal puts stdin into raw mode so single key presses arrive without
// waiting for enter.
type Terminal struct {
	fd       int
	oldState *term.State
}

func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func MakeRaw(f *os.File) (*Terminal, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", f.Name())
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	return &Terminal{fd: fd, oldState: oldState}, nil
}

// Restore puts the terminal back the way MakeRaw found it.
func (t *Terminal) Restore() error {
	return term.Restore(t.fd, t.oldState)
}

// ctrlC is what a raw terminal delivers instead of raising SIGINT.
const ctrlC = 0x03

// ByteSource matches keys.SerialSource.
type ByteSource interface {
	TryReadByte() (byte, bool)
}

// InterruptOnCtrlC passes bytes through and calls interrupt when Ctrl+C
// arrives, swallowing it.
type InterruptOnCtrlC struct {
	src       ByteSource
	interrupt func()
}

func NewInterruptOnCtrlC(src ByteSource, interrupt func()) *InterruptOnCtrlC {
	return &InterruptOnCtrlC{src: src, interrupt: interrupt}
}

func (i *InterruptOnCtrlC) TryReadByte() (byte, bool) {
	b, ok := i.src.TryReadByte()
	if ok && b == ctrlC {
		i.interrupt()
		return 0, false
	}
	return b, ok
}
