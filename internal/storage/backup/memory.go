package backup

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/yndnr/medrec/internal/core/domain"
)

// MemoryTarget keeps the backup in memory.
type MemoryTarget struct {
	mu       sync.RWMutex
	data     []byte
	stored   bool
	modified time.Time
}

// NewMemoryTarget returns an empty in-memory target.
func NewMemoryTarget() *MemoryTarget {
	return &MemoryTarget{}
}

func (t *MemoryTarget) Driver() Driver { return DriverMemory }

func (t *MemoryTarget) Put(_ context.Context, r io.Reader, _ int64) (Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, domain.ErrUnwritable.WithCause(err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = data
	t.stored = true
	t.modified = time.Now()
	return t.info(), nil
}

func (t *MemoryTarget) Get(_ context.Context) (io.ReadCloser, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.stored {
		return nil, domain.ErrNoBackupFound.WithDetails("memory")
	}
	return io.NopCloser(bytes.NewReader(t.data)), nil
}

func (t *MemoryTarget) Stat(_ context.Context) (Info, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.stored {
		return Info{}, domain.ErrNoBackupFound.WithDetails("memory")
	}
	return t.info(), nil
}

// Bytes returns a copy of the stored backup.
func (t *MemoryTarget) Bytes() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return bytes.Clone(t.data)
}

// SetBytes replaces the stored backup.
func (t *MemoryTarget) SetBytes(b []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = bytes.Clone(b)
	t.stored = true
	t.modified = time.Now()
}

func (t *MemoryTarget) info() Info {
	return Info{Location: "memory", Size: int64(len(t.data)), LastModified: t.modified}
}
