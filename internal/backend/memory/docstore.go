// Package memory implements the backend contracts in process memory. It
// backs BACKEND=memory for local development and the test suites.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
)

type entry struct {
	data map[string]any
	seq  uint64
}

// DocStore is a mutex guarded map of collections. Values are deep-copied
// on the way in and out so callers never share maps with the store.
type DocStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*entry
	seq         uint64
}

func NewDocStore() *DocStore {
	return &DocStore{collections: make(map[string]map[string]*entry)}
}

func (s *DocStore) Get(ctx context.Context, collection, id string) (backend.Document, error) {
	if err := ctx.Err(); err != nil {
		return backend.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.collections[collection][id]
	if !ok {
		return backend.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, backend.ErrNotFound)
	}
	return backend.Document{ID: id, Data: cloneMap(e.data)}, nil
}

func (s *DocStore) Set(ctx context.Context, collection, id string, data map[string]any, mode backend.WriteMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collection(collection)
	if e, ok := coll[id]; ok && mode == backend.Merge {
		mergeInto(e.data, data)
		return nil
	}
	s.seq++
	coll[id] = &entry{data: cloneMap(data), seq: s.seq}
	return nil
}

func (s *DocStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := backend.NewDocumentID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.collection(collection)[id] = &entry{data: cloneMap(data), seq: s.seq}
	return id, nil
}

// Query returns matching documents in insertion order.
func (s *DocStore) Query(ctx context.Context, collection string, filters ...backend.Filter) ([]backend.Document, error) {
	if err := backend.ValidateFilters(filters); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		id string
		e  *entry
	}
	var hits []hit
	for id, e := range s.collections[collection] {
		if matches(e.data, filters) {
			hits = append(hits, hit{id, e})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].e.seq < hits[j].e.seq })

	docs := make([]backend.Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, backend.Document{ID: h.id, Data: cloneMap(h.e.data)})
	}
	return docs, nil
}

func (s *DocStore) collection(name string) map[string]*entry {
	coll, ok := s.collections[name]
	if !ok {
		coll = make(map[string]*entry)
		s.collections[name] = coll
	}
	return coll
}

func matches(data map[string]any, filters []backend.Filter) bool {
	for _, f := range filters {
		v := data[f.Field]
		switch f.Op {
		case backend.OpEqual:
			if !equalValues(v, f.Value) {
				return false
			}
		case backend.OpIn:
			s, ok := v.(string)
			if !ok || !contains(f.Values, s) {
				return false
			}
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// mergeInto merges src into dst recursively, the way a merge write treats
// nested maps.
func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeInto(dm, sm)
				continue
			}
		}
		dst[k] = cloneValue(v)
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
