package persist

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/light-cascade/internal/clock"
	"github.com/scheerer/light-cascade/internal/settings"
	"github.com/scheerer/light-cascade/internal/storage"
)

type fakeActivity struct {
	last uint32
}

func (f *fakeActivity) LastPressMs() uint32 { return f.last }

type failingStore struct {
	*storage.Memory
	fail     bool
	attempts int
}

func (f *failingStore) Store(offset int, blob []byte) error {
	f.attempts++
	if f.fail {
		return errors.New("write protected")
	}
	return f.Memory.Store(offset, blob)
}

func TestLoad(t *testing.T) {
	t.Run("MismatchedMagicAdoptsDefaultsAndMarksDirty", func(t *testing.T) {
		store := storage.NewMemory(64)
		require.NoError(t, store.Store(0, []byte{0xDE, 0xAD, 0xBE, 0xEF, 1, 0, 0, 0, 2, 0, 0, 0}))

		live := LoadLive(store, 0, clock.NewManual(0))
		assert.Equal(t, settings.Settings{OnDurationMs: 1000, SpacingMs: 0}, live.Get())
		assert.True(t, live.Dirty())
	})

	t.Run("ErasedStorageIsFirstRun", func(t *testing.T) {
		s, ok := Load(storage.NewMemory(64), 0)
		assert.False(t, ok)
		assert.Equal(t, settings.Defaults(), s)
	})

	t.Run("ReadErrorIsFirstRun", func(t *testing.T) {
		s, ok := Load(storage.NewMemory(4), 0)
		assert.False(t, ok)
		assert.Equal(t, settings.Defaults(), s)
	})

	t.Run("StoredRecord", func(t *testing.T) {
		store := storage.NewMemory(64)
		b, err := settings.Encode(settings.Settings{OnDurationMs: 400, SpacingMs: -30})
		require.NoError(t, err)
		require.NoError(t, store.Store(16, b))

		live := LoadLive(store, 16, clock.NewManual(0))
		assert.Equal(t, settings.Settings{OnDurationMs: 400, SpacingMs: -30}, live.Get())
		assert.False(t, live.Dirty())
	})
}

func TestMaybeFlush(t *testing.T) {
	t.Run("WaitsForIdle", func(t *testing.T) {
		c := clock.NewManual(0)
		store := storage.NewMemory(64)
		act := &fakeActivity{}
		live := settings.NewLive(settings.Defaults())
		p := NewPolicy(store, 0, live, c, act, 5000)

		c.Set(1000)
		act.last = 1000
		live.AdjustOnDuration(100, 1000)

		c.Set(5999)
		assert.False(t, p.MaybeFlush())
		assert.Equal(t, 0, store.Writes())

		c.Set(6000)
		assert.True(t, p.MaybeFlush())
		assert.Equal(t, 1, store.Writes())
		assert.False(t, live.Dirty())

		got, ok := Load(store, 0)
		assert.True(t, ok)
		assert.Equal(t, uint32(1100), got.OnDurationMs)

		c.Set(20000)
		assert.False(t, p.MaybeFlush(), "clean settings are not rewritten")
		assert.Equal(t, 1, store.Writes())
	})

	t.Run("FirstRunDefaultsPersistAfterIdle", func(t *testing.T) {
		c := clock.NewManual(0)
		store := storage.NewMemory(64)
		live := LoadLive(store, 0, c)
		p := NewPolicy(store, 0, live, c, &fakeActivity{}, DefaultIdleThresholdMs)

		c.Set(4999)
		assert.False(t, p.MaybeFlush())
		c.Set(5000)
		assert.True(t, p.MaybeFlush())

		s, ok := Load(store, 0)
		assert.True(t, ok)
		assert.Equal(t, settings.Defaults(), s)
	})

	t.Run("NeverWritesWhileKeysActive", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		c := clock.NewManual(0)
		store := storage.NewMemory(64)
		act := &fakeActivity{}
		live := settings.NewLive(settings.Defaults())
		p := NewPolicy(store, 0, live, c, act, 5000)

		for i := 0; i < 5000; i++ {
			c.Advance(uint32(rng.Intn(300)))
			if rng.Intn(4) == 0 {
				act.last = c.NowMs()
				live.AdjustSpacing(int32(rng.Intn(11)-5), c.NowMs())
			}
			before := store.Writes()
			p.MaybeFlush()
			if store.Writes() != before {
				assert.GreaterOrEqual(t, c.NowMs()-act.last, uint32(5000), "write at %d", c.NowMs())
			}
		}
	})

	t.Run("FailedWriteKeepsDirtyAndBacksOff", func(t *testing.T) {
		c := clock.NewManual(0)
		store := &failingStore{Memory: storage.NewMemory(64), fail: true}
		live := settings.NewLive(settings.Defaults())
		live.MarkDirty(0)
		p := NewPolicy(store, 0, live, c, &fakeActivity{}, 5000)

		c.Set(5000)
		assert.False(t, p.MaybeFlush())
		assert.True(t, live.Dirty())
		assert.Equal(t, 1, store.attempts)

		c.Set(9999)
		assert.False(t, p.MaybeFlush())
		assert.Equal(t, 1, store.attempts)

		store.fail = false
		c.Set(10000)
		assert.True(t, p.MaybeFlush())
		assert.False(t, live.Dirty())
		assert.Equal(t, 2, store.attempts)
	})
}

func TestFlushIgnoresIdle(t *testing.T) {
	c := clock.NewManual(100)
	store := storage.NewMemory(64)
	act := &fakeActivity{last: 100}
	live := settings.NewLive(settings.Defaults())
	p := NewPolicy(store, 0, live, c, act, 5000)

	assert.False(t, p.Flush(), "nothing to flush")

	live.AdjustSpacing(5, 100)
	assert.True(t, p.Flush())
	assert.Equal(t, 1, store.Writes())
}
