package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local development.
// Documents are deep-copied on the way in and out so callers never share
// mutable state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]any)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (map[string]any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, ok := s.collections[collection]
	if !ok {
		return nil, false, nil
	}
	data, ok := docs[id]
	if !ok {
		return nil, false, nil
	}
	return deepCopy(data), true, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := normalize(value)
	var out []Document
	for id, data := range s.collections[collection] {
		if normalize(data[field]) == want {
			out = append(out, Document{ID: id, Data: deepCopy(data)})
		}
	}
	return out, nil
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for id, data := range s.collections[collection] {
		out = append(out, Document{ID: id, Data: deepCopy(data)})
	}
	return out, nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	id := uuid.New().String()
	doc := deepCopy(data)
	doc["id"] = id
	s.collections[collection][id] = doc
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		return errDocMissing(collection, id)
	}
	doc, ok := docs[id]
	if !ok {
		return errDocMissing(collection, id)
	}
	for k, v := range deepCopy(patch) {
		doc[k] = v
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Seed inserts a document with a fixed id, for test fixtures.
func (s *MemoryStore) Seed(collection, id string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	doc := deepCopy(data)
	doc["id"] = id
	s.collections[collection][id] = doc
}

func errDocMissing(collection, id string) error {
	return fmt.Errorf("document %s/%s does not exist", collection, id)
}

// deepCopy round-trips through JSON so stored documents hold only plain
// JSON-typed values, matching what a remote store would return.
func deepCopy(m map[string]any) map[string]any {
	raw, err := json.Marshal(m)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	if out == nil {
		out = map[string]any{}
	}
	return out
}

// normalize renders a value in its canonical JSON form for equality
// comparison, so time values, numbers and strings compare the way the
// DynamoDB filter expression would.
func normalize(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
