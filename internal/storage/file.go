package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultCapacity matches the 1KiB EEPROM of the boards this pattern
// usually runs on.
const DefaultCapacity = 1024

// File keeps an EEPROM image in a regular file. A missing file reads as
// erased; the file is created on the first Store.
type File struct {
	path     string
	capacity int
}

func NewFile(path string, capacity int) *File {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &File{path: path, capacity: capacity}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Load(offset, size int) ([]byte, error) {
	if err := checkRange(offset, size, f.capacity); err != nil {
		return nil, err
	}
	b := erased(size)

	fh, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer fh.Close()

	// a short image leaves the tail erased
	n, err := fh.ReadAt(b, int64(offset))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	for i := n; i < size; i++ {
		b[i] = Erased
	}
	return b, nil
}

func (f *File) Store(offset int, blob []byte) error {
	if err := checkRange(offset, len(blob), f.capacity); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}

	fh, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return err
	}
	// fill the gap before offset with erased bytes, not the zeros a sparse
	// write would leave behind
	if size := info.Size(); size < int64(offset) {
		if _, err := fh.WriteAt(erased(offset-int(size)), size); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	if _, err := fh.WriteAt(blob, int64(offset)); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return fh.Sync()
}
