package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"periph.io/x/host/v3"

	"github.com/caarlos0/env"
	"github.com/scheerer/light-cascade/cascade"
	"github.com/scheerer/light-cascade/internal/input"
	"github.com/scheerer/light-cascade/internal/keys"
	ilights "github.com/scheerer/light-cascade/internal/lights"
	"github.com/scheerer/light-cascade/internal/lights/lifx"
	"github.com/scheerer/light-cascade/internal/logging"
	"github.com/scheerer/light-cascade/internal/storage"
	"github.com/scheerer/light-cascade/lights"
)

var (
	logger = logging.New("main")
	config = cascade.Config{}
)

func main() {
	defer logger.Sync()

	err := env.Parse(&config)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}
	logging.GetLeveler().SetAll(logging.ParseLevel(config.LogLevel))
	if err := config.Validate(); err != nil {
		logger.With(zap.Error(err)).Fatal("Invalid configuration")
	}

	logger.With(zap.Any("config", config)).Info("Starting light cascade")

	logger.Info("Adjust LIGHT_TYPE to choose the lights. Valid values are: [CONSOLE, GPIO, LIFX]")
	logger.Info("Adjust LIGHT_PINS to list the GPIO pins in ring order.")
	logger.Info("Adjust LIFX_LABELS to list the LIFX bulb labels in ring order.")
	logger.Info("Adjust REMOTE to pick the IR remote. Valid values are: [MAGIC, DIRECTIONAL]. KEYMAP_FILE overrides it.")
	logger.Info("Set IR_DEVICE to the serial port of the IR decoder, SERIAL_DEVICE for a serial console.")
	logger.Info("Keys q/a change the on time, w/s the spacing.")
	logger.Info("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	positions := lights.Sequential(config.RingLength())
	driver := openLights(ctx, positions)

	km, err := loadKeymap()
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to load keymap")
	}

	var closers []io.Closer
	var ir keys.IRSource
	if config.IRDevice != "" {
		port, err := input.OpenSerial(config.IRDevice, config.IRBaud)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to open IR decoder")
		}
		closers = append(closers, port)
		ir = input.NewIRLines(port)
	}

	var serial keys.SerialSource
	var terminal *input.Terminal
	switch {
	case config.SerialDevice != "":
		port, err := input.OpenSerial(config.SerialDevice, config.SerialBaud)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to open serial console")
		}
		closers = append(closers, port)
		serial = input.NewBytes(port)
	case input.IsTerminal(os.Stdin):
		terminal, err = input.MakeRaw(os.Stdin)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to read the keyboard")
		}
		// raw mode swallows SIGINT, so Ctrl+C arrives as a key
		serial = input.NewInterruptOnCtrlC(input.NewBytes(os.Stdin), cancel)
	default:
		serial = input.NewBytes(os.Stdin)
	}

	store := storage.NewFile(config.StorageFile, storage.DefaultCapacity)
	ctrl, err := cascade.New(cascade.Options{
		Positions: positions,
		Driver:    driver,
		IR:        ir,
		Serial:    serial,
		Keymap:    km,
		Store:     store,
		Offset:    config.StorageOffset,
		IdleMs:    uint32(config.PersistIdle.Milliseconds()),
	})
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to set up the cascade")
	}

	s := ctrl.Settings()
	logger.With(
		zap.Uint32("onDurationMs", s.OnDurationMs),
		zap.Int32("spacingMs", s.SpacingMs),
		zap.Uint32("overlapMs", s.Overlap()),
		zap.String("keymap", km.Name),
		zap.String("storage", store.Path())).
		Info("Loaded settings")

	done := make(chan struct{})
	go func() {
		ctrl.Run(ctx, config.PollInterval)
		close(done)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-shutdown:
	case <-ctx.Done():
	}
	logger.Info("Shutting down")
	cancel()
	<-done

	if c, ok := driver.(lights.Closer); ok {
		if err := c.Close(); err != nil {
			logger.With(zap.Error(err)).Warn("Failed to close lights")
		}
	}
	for _, c := range closers {
		_ = c.Close()
	}
	if terminal != nil {
		_ = terminal.Restore()
	}
}

func openLights(ctx context.Context, positions []lights.PositionID) lights.Driver {
	switch strings.ToUpper(config.LightType) {
	case "GPIO":
		if _, err := host.Init(); err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to initialise GPIO host drivers")
		}
		pins, err := ilights.LookupPins(config.LightPins)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to find GPIO pins")
		}
		return ilights.NewGPIO(pins, config.ActiveLow)
	case "LIFX":
		l, err := lifx.NewLifx(ctx, lifx.Config{Labels: config.LifxLabels})
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to create LIFX light service")
		}
		return l
	case "CONSOLE":
		return ilights.NewConsole(os.Stdout, positions)
	default:
		logger.Fatalf("unknown light type: %v", config.LightType)
		return nil
	}
}

func loadKeymap() (keys.Keymap, error) {
	if config.KeymapFile != "" {
		return keys.LoadFile(config.KeymapFile)
	}
	return keys.ByName(config.Remote)
}
