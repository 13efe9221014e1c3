// Package storage provides byte-addressed blob stores standing in for the
// EEPROM a microcontroller would keep its settings in.
package storage

import (
	"errors"
	"fmt"
)

// BlobStore reads and writes byte ranges. Load of a never written range
// returns erased bytes (0xFF) rather than an error.
type BlobStore interface {
	Load(offset, size int) ([]byte, error)
	Store(offset int, blob []byte) error
}

const Erased byte = 0xFF

var ErrOutOfRange = errors.New("range outside store")

func checkRange(offset, size, capacity int) error {
	if offset < 0 || size < 0 || offset+size > capacity {
		return fmt.Errorf("%w: offset %d size %d capacity %d", ErrOutOfRange, offset, size, capacity)
	}
	return nil
}

func erased(size int) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = Erased
	}
	return b
}
