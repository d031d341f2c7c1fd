package docgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps artifacts in a map. It names duplicates the same way the
// filesystem store does, so tests see the keys a user would.
type MemoryStore struct {
	Overwrite bool
	Now       func() time.Time

	mu      sync.RWMutex
	objects map[string]storedArtifact
}

type storedArtifact struct {
	data []byte
	meta ArtifactMeta
}

// NewMemoryStore creates an empty in-memory artifact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]storedArtifact{}, Now: time.Now}
}

// Put saves a copy of r under key, or under "key (n)" when key is taken.
func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error) {
	if key == "" {
		return ArtifactRef{}, NewError(KindValidation, "artifact key is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return ArtifactRef{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ArtifactRef{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Overwrite {
		key = s.freeKeyLocked(key)
	}
	meta.Size = int64(len(data))
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.Filename == "" {
		meta.Filename = path.Base(key)
	}
	if meta.ContentType == "" {
		meta.ContentType = Format(strings.TrimPrefix(path.Ext(key), ".")).ContentType()
	}
	s.objects[key] = storedArtifact{data: data, meta: meta}
	return ArtifactRef{Key: key, Meta: meta}, nil
}

// Open returns a reader over the stored bytes.
func (s *MemoryStore) Open(_ context.Context, key string) (io.ReadCloser, ArtifactMeta, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ArtifactMeta{}, NewError(KindNotFound, fmt.Sprintf("artifact %q not found", key), nil)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.meta, nil
}

// Delete drops key. Unknown keys are ignored.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// List returns every artifact ordered by key.
func (s *MemoryStore) List(_ context.Context) ([]ArtifactRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]ArtifactRef, 0, len(s.objects))
	for _, key := range slices.Sorted(maps.Keys(s.objects)) {
		refs = append(refs, ArtifactRef{Key: key, Meta: s.objects[key].meta})
	}
	return refs, nil
}

// Keys lists stored keys in order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.objects))
}

func (s *MemoryStore) freeKeyLocked(key string) string {
	if _, taken := s.objects[key]; !taken {
		return key
	}
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if _, taken := s.objects[candidate]; !taken {
			return candidate
		}
	}
}

func (s *MemoryStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// MemoryKV is a KVStore backed by a map. Writes counts Set calls so tests can
// observe debouncing.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

// NewMemoryKV creates an empty key/value store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string][]byte{}}
}

// Get returns a copy of the stored value.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Set stores a copy of value.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.values[key] = bytes.Clone(value)
	m.writes++
	m.mu.Unlock()
	return nil
}

// Writes reports how many times Set ran.
func (m *MemoryKV) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
