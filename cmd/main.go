package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/scheerer/light-cascade/internal/clock"
	"github.com/scheerer/light-cascade/internal/input"
	"github.com/scheerer/light-cascade/internal/keys"
	"github.com/scheerer/light-cascade/internal/logging"
	"github.com/scheerer/light-cascade/internal/settings"
	"github.com/scheerer/light-cascade/internal/util"
)

var logger = logging.New("probe")

// Prints every key the IR decoder or serial console delivers together with
// the command it maps to. Use it to write a KEYMAP_FILE for a new remote.
func main() {
	defer logger.Sync()

	irDevice := util.Getenv("IR_DEVICE", "")
	irBaud := util.Getenv("IR_BAUD", 115200)
	serialDevice := util.Getenv("SERIAL_DEVICE", "")
	serialBaud := util.Getenv("SERIAL_BAUD", 115200)
	remote := util.Getenv("REMOTE", "MAGIC")
	keymapFile := util.Getenv("KEYMAP_FILE", "")
	pollInterval := util.Getenv("POLL_INTERVAL", 5*time.Millisecond)

	logger.With(
		zap.String("IR_DEVICE", irDevice),
		zap.Int("IR_BAUD", irBaud),
		zap.String("SERIAL_DEVICE", serialDevice),
		zap.Int("SERIAL_BAUD", serialBaud),
		zap.String("REMOTE", remote),
		zap.String("KEYMAP_FILE", keymapFile)).
		Info("Starting key probe")
	logger.Info("Press keys on the remote or the serial console. Press Ctrl+C to stop")

	var km keys.Keymap
	var err error
	if keymapFile != "" {
		km, err = keys.LoadFile(keymapFile)
	} else {
		km, err = keys.ByName(remote)
	}
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to load keymap")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ir keys.IRSource
	if irDevice != "" {
		port, err := input.OpenSerial(irDevice, irBaud)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to open IR decoder")
		}
		defer port.Close()
		ir = input.NewIRLines(port)
	}

	var serial keys.SerialSource
	if serialDevice != "" {
		port, err := input.OpenSerial(serialDevice, serialBaud)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to open serial console")
		}
		defer port.Close()
		serial = input.NewBytes(port)
	} else {
		serial = input.NewBytes(os.Stdin)
	}

	// the probe only maps keys, nothing it changes is kept
	c := clock.NewMonotonic()
	mapper := keys.NewMapper(nil, nil, km, settings.NewLive(settings.Defaults()), c)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			ev, ok := nextKey(ir, serial)
			if !ok {
				time.Sleep(pollInterval)
				continue
			}
			cmd := mapper.Normalize(ev)
			logger.With(
				zap.Stringer("source", ev.Source),
				zap.String("code", util.FormatCode(ev.Code)),
				zap.String("mappedCode", util.FormatCode(cmd.Raw)),
				zap.Stringer("command", cmd.Op)).
				Info("Key")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	logger.Info("Shutting down")
}

func nextKey(ir keys.IRSource, serial keys.SerialSource) (keys.KeyEvent, bool) {
	if ir != nil {
		if code, ok := ir.ReadIR(); ok {
			return keys.KeyEvent{Source: keys.SourceIR, Code: code}, true
		}
	}
	if serial != nil {
		if b, ok := serial.TryReadByte(); ok {
			return keys.KeyEvent{Source: keys.SourceSerial, Code: uint32(b)}, true
		}
	}
	return keys.KeyEvent{}, false
}
