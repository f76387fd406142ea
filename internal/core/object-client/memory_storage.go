package objectclient

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/markdave123-py/docquery/internal/core"
)

var _ core.BlobStore = (*MemoryStore)(nil)

type memoryBlob struct {
	data      []byte
	createdAt time.Time
}

// MemoryStore keeps blobs in process memory. Build one per process or per test.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob), now: time.Now}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = memoryBlob{data: slices.Clone(data), createdAt: m.now()}
	return key, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, core.ErrBlobNotFound
	}
	return slices.Clone(b.data), nil
}

// List returns blobs ordered by key.
func (m *MemoryStore) List(_ context.Context) ([]core.BlobInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.BlobInfo, 0, len(m.blobs))
	for k, b := range m.blobs {
		out = append(out, core.BlobInfo{Key: k, Size: int64(len(b.data)), CreatedAt: b.createdAt})
	}
	slices.SortFunc(out, func(a, b core.BlobInfo) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return core.ErrBlobNotFound
	}
	delete(m.blobs, key)
	return nil
}
