package lifx

import (
	"context"
	"sync"
	"time"

	"github.com/pdf/golifx"
	"github.com/pdf/golifx/common"
	"github.com/pdf/golifx/protocol"
	"go.uber.org/zap"

	"github.com/scheerer/light-cascade/internal/logging"
	"github.com/scheerer/light-cascade/lights"
)

var logger = logging.New("lifx")

// LifxLights uses a set of LIFX bulbs as the ring, one bulb label per
// position. Power changes are queued to a worker so SetLight never waits on
// the network.
type LifxLights struct {
	config Config
	client *golifx.Client

	lightsMu sync.RWMutex
	bulbs    []common.Light

	stateMu sync.Mutex
	wanted  []bool
	sent    []bool

	pending chan lights.PositionID
}

type Config struct {
	// Labels lists the bulb labels in ring order.
	Labels []string
	// Timeout bounds a single discovery attempt.
	Timeout time.Duration
}

var _ lights.Driver = (*LifxLights)(nil)

func NewLifx(ctx context.Context, config Config) (*LifxLights, error) {
	client, err := golifx.NewClient(&protocol.V2{})
	if err != nil {
		return nil, err
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	n := len(config.Labels)
	l := &LifxLights{
		config:  config,
		client:  client,
		bulbs:   make([]common.Light, n),
		wanted:  make([]bool, n),
		sent:    make([]bool, n),
		pending: make(chan lights.PositionID, 4*n+1),
	}
	go l.Start(ctx)
	go l.run(ctx)
	return l, nil
}

func (l *LifxLights) Start(ctx context.Context) {
	discoveryInterval := 15 * time.Second
	ticker := time.NewTicker(discoveryInterval)
	defer ticker.Stop()

	l.client.SetDiscoveryInterval(discoveryInterval)

	l.discover(ctx)
	for {
		select {
		case <-ticker.C:
			if l.LightCount() < len(l.config.Labels) {
				l.discover(ctx)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (l *LifxLights) discover(ctx context.Context) {
	logger.With(zap.Strings("labels", l.config.Labels)).Info("LIFX discovery starting...")

	for i, label := range l.config.Labels {
		l.lightsMu.RLock()
		known := l.bulbs[i] != nil
		l.lightsMu.RUnlock()
		if known {
			continue
		}

		completed := make(chan common.Light, 1)
		go func(label string) {
			bulb, err := l.client.GetLightByLabel(label)
			if err != nil {
				logger.With(zap.String("label", label), zap.Error(err)).Warn("Failed to get LIFX light by label")
				bulb = nil
			}
			completed <- bulb
		}(label)

		ctxWithTimeout, cancel := context.WithTimeout(ctx, l.config.Timeout)
		select {
		case <-ctxWithTimeout.Done():
			logger.With(zap.String("label", label), zap.Error(ctxWithTimeout.Err())).Warn("LIFX discovery timed out.")
		case bulb := <-completed:
			if bulb != nil {
				logger.With(zap.String("label", label), zap.Int("position", i)).Info("LIFX light found")
				l.lightsMu.Lock()
				l.bulbs[i] = bulb
				l.lightsMu.Unlock()
				// push whatever the sequence wants right now
				l.enqueue(lights.PositionID(i), true)
			}
		}
		cancel()
	}

	logger.Info("LIFX discovery complete")
}

func (l *LifxLights) LightCount() int {
	l.lightsMu.RLock()
	defer l.lightsMu.RUnlock()
	count := 0
	for _, b := range l.bulbs {
		if b != nil {
			count++
		}
	}
	return count
}

func (l *LifxLights) SetLight(id lights.PositionID, on bool) {
	i := int(id)
	if i < 0 || i >= len(l.wanted) {
		logger.With(zap.Stringer("position", id)).Warn("No LIFX light for position")
		return
	}
	l.stateMu.Lock()
	changed := l.wanted[i] != on
	l.wanted[i] = on
	l.stateMu.Unlock()
	if changed {
		l.enqueue(id, false)
	}
}

func (l *LifxLights) enqueue(id lights.PositionID, force bool) {
	if force {
		l.stateMu.Lock()
		l.sent[id] = !l.wanted[id]
		l.stateMu.Unlock()
	}
	select {
	case l.pending <- id:
	default:
		logger.With(zap.Stringer("position", id)).Warn("LIFX queue full, dropping update")
	}
}

func (l *LifxLights) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-l.pending:
			l.apply(id)
		}
	}
}

func (l *LifxLights) apply(id lights.PositionID) {
	l.lightsMu.RLock()
	bulb := l.bulbs[id]
	l.lightsMu.RUnlock()
	if bulb == nil {
		return
	}

	l.stateMu.Lock()
	on := l.wanted[id]
	if l.sent[id] == on {
		l.stateMu.Unlock()
		return
	}
	l.stateMu.Unlock()

	if err := bulb.SetPower(on); err != nil {
		logger.With(zap.Stringer("position", id), zap.Error(err)).Warn("Failed to set power for LIFX light")
		return
	}
	l.stateMu.Lock()
	l.sent[id] = on
	l.stateMu.Unlock()
}

// Close switches the ring off and releases the client.
func (l *LifxLights) Close() error {
	l.lightsMu.RLock()
	for i, b := range l.bulbs {
		if b == nil {
			continue
		}
		if err := b.SetPower(false); err != nil {
			logger.With(zap.Int("position", i), zap.Error(err)).Warn("Failed to switch off LIFX light")
		}
	}
	l.lightsMu.RUnlock()
	return l.client.Close()
}
