package cascade

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scheerer/light-cascade/internal/clock"
	"github.com/scheerer/light-cascade/internal/keys"
	"github.com/scheerer/light-cascade/internal/logging"
	"github.com/scheerer/light-cascade/internal/persist"
	"github.com/scheerer/light-cascade/internal/ring"
	"github.com/scheerer/light-cascade/internal/sequencer"
	"github.com/scheerer/light-cascade/internal/settings"
	"github.com/scheerer/light-cascade/internal/storage"
	"github.com/scheerer/light-cascade/lights"
)

var logger = logging.New("cascade")

// Controller owns the settings and the three components the loop polls.
type Controller struct {
	clock   clock.Clock
	live    *settings.Live
	persist *persist.Policy
	seq     *sequencer.Sequencer
	keys    *keys.Mapper
}

type Options struct {
	Clock     clock.Clock
	Positions []lights.PositionID
	Driver    lights.Driver
	IR        keys.IRSource
	Serial    keys.SerialSource
	Keymap    keys.Keymap
	Store     storage.BlobStore
	Offset    int
	IdleMs    uint32
}

// New loads the stored settings and wires the components together. Nil
// IR or serial sources are allowed.
func New(opts Options) (*Controller, error) {
	r, err := ring.New(opts.Positions)
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewMonotonic()
	}
	if opts.IdleMs == 0 {
		opts.IdleMs = persist.DefaultIdleThresholdMs
	}

	live := persist.LoadLive(opts.Store, opts.Offset, opts.Clock)
	mapper := keys.NewMapper(opts.IR, opts.Serial, opts.Keymap, live, opts.Clock)

	return &Controller{
		clock:   opts.Clock,
		live:    live,
		persist: persist.NewPolicy(opts.Store, opts.Offset, live, opts.Clock, mapper, opts.IdleMs),
		seq:     sequencer.New(r, opts.Clock, live, opts.Driver),
		keys:    mapper,
	}, nil
}

func (c *Controller) Settings() settings.Settings {
	return c.live.Get()
}

func (c *Controller) Keys() *keys.Mapper {
	return c.keys
}

// Start switches all lights off and lights the first position.
func (c *Controller) Start() {
	c.seq.Start()
}

// Step runs one loop iteration. The order is fixed: persistence first so a
// flush sees the idle time before any new key, then the sequence, then keys.
func (c *Controller) Step() keys.Command {
	c.persist.MaybeFlush()
	c.seq.Poll()
	return c.keys.Poll()
}

// Shutdown switches the lights off and stores unsaved settings.
func (c *Controller) Shutdown() {
	c.seq.Stop()
	c.persist.Flush()
}

// Run starts the sequence and steps it every interval until ctx is done.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	c.Start()
	defer c.Shutdown()

	var lastWarning time.Time
	for {
		select {
		case <-ctx.Done():
			return
		default:
			startTime := time.Now()
			c.Step()
			stepDuration := time.Since(startTime)

			if stepDuration > interval {
				if time.Since(lastWarning) > 10*time.Second {
					logger.With(
						zap.Stringer("stepDuration", stepDuration),
						zap.Stringer("pollInterval", interval)).
						Warn("Cannot keep up with POLL_INTERVAL. Light timing will drift.")
					lastWarning = time.Now()
				}
			} else {
				time.Sleep(interval - stepDuration)
			}
		}
	}
}
