package storage

import "sync"

// Memory is an in-process BlobStore. It counts writes so wear can be
// checked.
type Memory struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

func NewMemory(capacity int) *Memory {
	return &Memory{data: erased(capacity)}
}

func (m *Memory) Load(offset, size int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkRange(offset, size, len(m.data)); err != nil {
		return nil, err
	}
	b := make([]byte, size)
	copy(b, m.data[offset:offset+size])
	return b, nil
}

func (m *Memory) Store(offset int, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkRange(offset, len(blob), len(m.data)); err != nil {
		return err
	}
	copy(m.data[offset:], blob)
	m.writes++
	return nil
}

func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
