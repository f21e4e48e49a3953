// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package memory provides an in-memory vector store for development and
// tests. Exact cosine scan over every record in the namespace; fine for the
// corpus sizes a single organization ingests in development, not a
// production index.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/poiesic/traingen/storage"
)

type record struct {
	values   []float32
	metadata map[string]any
	seq      uint64
}

// Store is a thread-safe in-memory vector store.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]record
	nextSeq    uint64
	closed     bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		namespaces: make(map[string]map[string]record),
	}
}

// CreateNamespace ensures a namespace exists.
func (s *Store) CreateNamespace(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStoreClosed
	}
	if _, ok := s.namespaces[name]; !ok {
		s.namespaces[name] = make(map[string]record)
	}
	return nil
}

// DeleteNamespace removes a namespace and all its records.
func (s *Store) DeleteNamespace(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStoreClosed
	}
	delete(s.namespaces, name)
	return nil
}

// Upsert inserts or replaces records, creating the namespace on first use.
func (s *Store) Upsert(ctx context.Context, namespace string, records []storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStoreClosed
	}

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]record)
		s.namespaces[namespace] = ns
	}

	for _, r := range records {
		values := make([]float32, len(r.Values))
		copy(values, r.Values)
		// Replacing a record keeps its original position in the
		// insertion order; only new IDs advance the sequence.
		seq := s.nextSeq
		if prev, ok := ns[r.ID]; ok {
			seq = prev.seq
		} else {
			s.nextSeq++
		}
		ns[r.ID] = record{values: values, metadata: maps.Clone(r.Metadata), seq: seq}
	}
	return nil
}

// Query scans the namespace and returns the topK most similar records.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int, filter storage.Filter) ([]storage.Match, error) {
	if topK <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStoreClosed
	}

	ns, ok := s.namespaces[namespace]
	if !ok {
		return []storage.Match{}, nil
	}

	type scored struct {
		match storage.Match
		seq   uint64
	}
	hits := make([]scored, 0, len(ns))
	for id, r := range ns {
		if !storage.MatchesFilter(r.metadata, filter) {
			continue
		}
		hits = append(hits, scored{
			match: storage.Match{
				ID:       id,
				Score:    storage.CosineSimilarity(vector, r.values),
				Metadata: r.metadata,
				Text:     storage.TextFromMetadata(r.metadata),
			},
			seq: r.seq,
		})
	}

	// Descending score, ties broken by insertion order.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].match.Score != hits[j].match.Score {
			return hits[i].match.Score > hits[j].match.Score
		}
		return hits[i].seq < hits[j].seq
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	matches := make([]storage.Match, len(hits))
	for i, h := range hits {
		matches[i] = h.match
	}
	return matches, nil
}

// List returns every record in the namespace.
func (s *Store) List(ctx context.Context, namespace string) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStoreClosed
	}

	ns := s.namespaces[namespace]
	records := make([]storage.Record, 0, len(ns))
	for id, r := range ns {
		values := make([]float32, len(r.values))
		copy(values, r.values)
		records = append(records, storage.Record{ID: id, Values: values, Metadata: r.metadata})
	}
	return records, nil
}

// Delete removes records by ID; missing IDs are ignored.
func (s *Store) Delete(ctx context.Context, namespace string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStoreClosed
	}

	ns, ok := s.namespaces[namespace]
	if !ok {
		return nil
	}
	for _, id := range ids {
		delete(ns, id)
	}
	return nil
}

// Ping always succeeds while the store is open.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrStoreClosed
	}
	return nil
}

// Close releases all stored records.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.namespaces = nil
	return nil
}
