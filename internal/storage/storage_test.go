package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) BlobStore{
		"Memory": func(t *testing.T) BlobStore { return NewMemory(64) },
		"File": func(t *testing.T) BlobStore {
			return NewFile(filepath.Join(t.TempDir(), "eeprom.bin"), 64)
		},
	}

	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("FreshIsErased", func(t *testing.T) {
				s := mk(t)
				b, err := s.Load(8, 4)
				require.NoError(t, err)
				assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, b)
			})

			t.Run("StoreThenLoad", func(t *testing.T) {
				s := mk(t)
				require.NoError(t, s.Store(16, []byte{1, 2, 3}))
				b, err := s.Load(15, 5)
				require.NoError(t, err)
				assert.Equal(t, []byte{0xFF, 1, 2, 3, 0xFF}, b)
			})

			t.Run("OutOfRange", func(t *testing.T) {
				s := mk(t)
				_, err := s.Load(60, 8)
				assert.ErrorIs(t, err, ErrOutOfRange)
				assert.ErrorIs(t, s.Store(-1, []byte{1}), ErrOutOfRange)
			})
		})
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "eeprom.bin")
	require.NoError(t, NewFile(path, 0).Store(4, []byte{0xAA, 0xBB}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(6), info.Size())

	b, err := NewFile(path, 0).Load(0, 6)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xAA, 0xBB}, b)
}

func TestMemoryCountsWrites(t *testing.T) {
	m := NewMemory(16)
	assert.Equal(t, 0, m.Writes())
	require.NoError(t, m.Store(0, []byte{1}))
	require.NoError(t, m.Store(0, []byte{2}))
	assert.Equal(t, 2, m.Writes())
}
