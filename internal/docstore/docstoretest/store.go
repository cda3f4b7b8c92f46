// Package docstoretest provides an in-process docstore for tests of the
// remote catalog and order stores.
package docstoretest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"WonderFarm/internal/docstore"
)

// MemStore mirrors docstore.Store in process. Now pins creation times and a
// non-nil Fail makes every call return it.
type MemStore struct {
	mu   sync.RWMutex
	m    map[string][]docstore.Document
	Now  func() time.Time
	Fail error
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string][]docstore.Document{}, Now: time.Now}
}

func (s *MemStore) Ping(ctx context.Context) error { return s.Fail }

func (s *MemStore) Insert(ctx context.Context, collection string, body any) (docstore.Document, error) {
	if s.Fail != nil {
		return docstore.Document{}, s.Fail
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := docstore.Document{ID: uuid.NewString(), Body: raw, CreatedAt: s.Now().UTC()}
	s.m[collection] = append(s.m[collection], d)
	return d, nil
}

// Put stores a document under a caller chosen id, replacing any previous one.
func (s *MemStore) Put(collection, id string, body json.RawMessage, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.m[collection]
	for i := range docs {
		if docs[i].ID == id {
			docs[i] = docstore.Document{ID: id, Body: body, CreatedAt: createdAt}
			return
		}
	}
	s.m[collection] = append(docs, docstore.Document{ID: id, Body: body, CreatedAt: createdAt})
}

func (s *MemStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if s.Fail != nil {
		return docstore.Document{}, s.Fail
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.m[collection] {
		if d.ID == id {
			return d, nil
		}
	}
	return docstore.Document{}, docstore.ErrNoDocument
}

func (s *MemStore) List(ctx context.Context, collection string, order docstore.Order) ([]docstore.Document, error) {
	return s.find(collection, nil, order)
}

func (s *MemStore) Find(ctx context.Context, collection string, f docstore.Filter, order docstore.Order) ([]docstore.Document, error) {
	return s.find(collection, &f, order)
}

func (s *MemStore) find(collection string, f *docstore.Filter, order docstore.Order) ([]docstore.Document, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]docstore.Document, 0, len(s.m[collection]))
	for _, d := range s.m[collection] {
		if f != nil && !matches(d, *f) {
			continue
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if order == docstore.NewestFirst {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func matches(d docstore.Document, f docstore.Filter) bool {
	var v any
	if err := json.Unmarshal(d.Body, &v); err != nil {
		return false
	}
	for _, k := range f.Path {
		obj, ok := v.(map[string]any)
		if !ok {
			return false
		}
		v = obj[k]
	}

	var got string
	switch x := v.(type) {
	case string:
		got = x
	case nil:
		return false
	default:
		b, _ := json.Marshal(x)
		got = string(b)
	}

	if f.FoldCase {
		return strings.EqualFold(got, f.Value)
	}
	return got == f.Value
}
