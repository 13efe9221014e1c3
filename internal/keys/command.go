// Package keys turns raw key codes from an IR decoder and a serial console
// into the small command vocabulary that edits the chase settings.
package keys

import "fmt"

type Source int

const (
	SourceIR Source = iota
	SourceSerial
)

func (s Source) String() string {
	switch s {
	case SourceIR:
		return "ir"
	case SourceSerial:
		return "serial"
	default:
		return "unknown"
	}
}

type Op int

const (
	OpNone Op = iota
	OpIncreaseOnTime
	OpDecreaseOnTime
	OpIncreaseSpacing
	OpDecreaseSpacing
	OpUnrecognized
)

var opNames = map[Op]string{
	OpNone:            "none",
	OpIncreaseOnTime:  "increase_on_time",
	OpDecreaseOnTime:  "decrease_on_time",
	OpIncreaseSpacing: "increase_spacing",
	OpDecreaseSpacing: "decrease_spacing",
	OpUnrecognized:    "unrecognized",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// ParseOp accepts the names used in keymap files. Only the four editing
// commands can be bound to a key.
func ParseOp(s string) (Op, error) {
	for op, name := range opNames {
		if name == s && op != OpNone && op != OpUnrecognized {
			return op, nil
		}
	}
	return OpNone, fmt.Errorf("unknown command %q", s)
}

// KeyEvent is one raw key as read from a source.
type KeyEvent struct {
	Source Source
	Code   uint32
}

// Command is the outcome of one poll. Raw is the effective key code, which
// for an IR repeat is the remembered code of the held key.
type Command struct {
	Op     Op
	Source Source
	Raw    uint32
}

func (c Command) String() string {
	if c.Op == OpNone {
		return "none"
	}
	return fmt.Sprintf("%s %s %#x", c.Source, c.Op, c.Raw)
}
