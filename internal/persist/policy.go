// Package persist decides when edited settings are written back to storage.
// Writes wait until the keys have been idle for a threshold so that holding a
// remote key down costs one write, not one per repeat.
package persist

import (
	"errors"

	"go.uber.org/zap"

	"github.com/scheerer/light-cascade/internal/clock"
	"github.com/scheerer/light-cascade/internal/logging"
	"github.com/scheerer/light-cascade/internal/settings"
	"github.com/scheerer/light-cascade/internal/storage"
)

var logger = logging.New("persist")

const DefaultIdleThresholdMs uint32 = 5000

// Activity reports the clock reading of the most recent key press.
type Activity interface {
	LastPressMs() uint32
}

type Policy struct {
	store    storage.BlobStore
	offset   int
	live     *settings.Live
	clock    clock.Clock
	activity Activity
	idleMs   uint32

	// set after a failed write so the next attempt waits a full idle window
	failedAt  uint32
	hasFailed bool
}

func NewPolicy(store storage.BlobStore, offset int, live *settings.Live, c clock.Clock, activity Activity, idleMs uint32) *Policy {
	return &Policy{
		store:    store,
		offset:   offset,
		live:     live,
		clock:    c,
		activity: activity,
		idleMs:   idleMs,
	}
}

// Load reads the stored settings. Anything unreadable, including a record
// without the expected magic, counts as a first run: defaults are returned
// and the second result is false. Callers mark defaults dirty so the first
// idle window stores them.
func Load(store storage.BlobStore, offset int) (settings.Settings, bool) {
	b, err := store.Load(offset, settings.RecordSize)
	if err != nil {
		logger.With(zap.Error(err)).Warn("Failed to read settings, using defaults")
		return settings.Defaults(), false
	}
	s, err := settings.Decode(b)
	if err != nil {
		var bad settings.ErrBadMagic
		if errors.As(err, &bad) {
			logger.With(zap.Uint32("magic", bad.Got)).Info("No stored settings, using defaults")
		} else {
			logger.With(zap.Error(err)).Warn("Stored settings unreadable, using defaults")
		}
		return settings.Defaults(), false
	}
	return s, true
}

// LoadLive loads the stored settings into a new Live, marked dirty when the
// defaults had to be used.
func LoadLive(store storage.BlobStore, offset int, c clock.Clock) *settings.Live {
	s, ok := Load(store, offset)
	live := settings.NewLive(s)
	if !ok {
		live.MarkDirty(c.NowMs())
	}
	return live
}

// MaybeFlush writes the settings if they are dirty and no key has been
// pressed for the idle threshold. It reports whether a write happened.
func (p *Policy) MaybeFlush() bool {
	if !p.live.Dirty() {
		return false
	}
	now := p.clock.NowMs()
	if now-p.activity.LastPressMs() < p.idleMs {
		return false
	}
	if p.hasFailed && now-p.failedAt < p.idleMs {
		return false
	}
	return p.write(now)
}

// Flush writes dirty settings regardless of key activity.
func (p *Policy) Flush() bool {
	if !p.live.Dirty() {
		return false
	}
	return p.write(p.clock.NowMs())
}

func (p *Policy) write(now uint32) bool {
	s := p.live.Get()
	b, err := settings.Encode(s)
	if err == nil {
		err = p.store.Store(p.offset, b)
	}
	if err != nil {
		p.hasFailed = true
		p.failedAt = now
		logger.With(zap.Error(err)).Warn("Failed to store settings")
		return false
	}
	p.hasFailed = false
	p.live.MarkClean()
	logger.With(
		zap.Uint32("onDurationMs", s.OnDurationMs),
		zap.Int32("spacingMs", s.SpacingMs)).
		Info("Stored settings")
	return true
}
