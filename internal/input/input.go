// Package input adapts blocking readers (serial ports, a terminal) to the
// non-blocking polls the key mapper uses. Each adapter runs one reader
// goroutine that feeds a buffered channel.
package input

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/scheerer/light-cascade/internal/logging"
)

var logger = logging.New("input")

const queueSize = 64

// IRLines reads IR codes printed one per line by an external decoder, for
// example an Arduino running an NEC receiver sketch on a serial port. Lines
// such as "0x00FFA05F", "FFA05F" or "16753247" are accepted; anything else
// is logged and skipped.
type IRLines struct {
	codes chan uint32
	done  chan struct{}
	err   error
	mu    sync.Mutex
}

func NewIRLines(r io.Reader) *IRLines {
	l := &IRLines{
		codes: make(chan uint32, queueSize),
		done:  make(chan struct{}),
	}
	go l.read(r)
	return l
}

func (l *IRLines) read(r io.Reader) {
	defer close(l.done)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		code, err := ParseCode(line)
		if err != nil {
			logger.With(zap.String("line", line)).Debug("Ignoring decoder output")
			continue
		}
		select {
		case l.codes <- code:
		default:
			logger.With(zap.Uint32("code", code)).Warn("IR queue full, dropping code")
		}
	}
	l.finish(sc.Err())
}

func (l *IRLines) finish(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
	if err != nil && !errors.Is(err, os.ErrClosed) {
		logger.With(zap.Error(err)).Error("IR reader stopped")
	}
}

// ReadIR returns the next queued code without blocking.
func (l *IRLines) ReadIR() (uint32, bool) {
	select {
	case c := <-l.codes:
		return c, true
	default:
		return 0, false
	}
}

// Done is closed when the underlying reader is exhausted.
func (l *IRLines) Done() <-chan struct{} {
	return l.done
}

func (l *IRLines) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// ParseCode reads a decoder line as a 32 bit code. A 0x prefix or any hex
// letter means hex; plain digits are taken as decimal.
func ParseCode(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err
	}
	if strings.ContainsAny(s, "abcdefABCDEF") {
		v, err := strconv.ParseUint(s, 16, 32)
		return uint32(v), err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

// Bytes turns a byte stream into a non-blocking byte source.
type Bytes struct {
	bytes chan byte
	done  chan struct{}
}

func NewBytes(r io.Reader) *Bytes {
	b := &Bytes{
		bytes: make(chan byte, queueSize),
		done:  make(chan struct{}),
	}
	go b.read(r)
	return b
}

func (b *Bytes) read(r io.Reader) {
	defer close(b.done)

	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, c := range buf[:n] {
			select {
			case b.bytes <- c:
			default:
				logger.With(zap.Uint8("byte", c)).Warn("Serial queue full, dropping byte")
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				logger.With(zap.Error(err)).Error("Serial reader stopped")
			}
			return
		}
	}
}

func (b *Bytes) TryReadByte() (byte, bool) {
	select {
	case c := <-b.bytes:
		return c, true
	default:
		return 0, false
	}
}

func (b *Bytes) Done() <-chan struct{} {
	return b.done
}
