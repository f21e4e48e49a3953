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


// Package badger provides a persistent local vector store backed by
// BadgerDB. It fills the gap between the in-memory store (lost on restart)
// and Pinecone (needs a managed index): single-node deployments keep their
// ingested corpus across restarts without external services.
//
// Queries are exact cosine scans over the namespace prefix, same as the
// in-memory store.
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/poiesic/traingen/storage"
)

// vecPrefix namespaces all vector keys within the database.
const vecPrefix = "vec"

type storedRecord struct {
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Store is a BadgerDB-backed vector store.
type Store struct {
	db     *badgerdb.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badgerdb.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a store at the given directory, creating it if needed. With
// inMemory set the database lives entirely in RAM, which is what tests use.
func Open(path string, inMemory bool) (*Store, error) {
	var opts badgerdb.Options

	if inMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if err := os.MkdirAll(path, 0o755); err != nil {
				return nil, err
			}
		} else if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}
		opts = badgerdb.DefaultOptions(path)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "badger-store"),
	}, nil
}

// recordKey builds "vec:<namespace>:<id>". Namespace names are organization
// IDs and never contain colons.
func recordKey(namespace, id string) []byte {
	return []byte(vecPrefix + ":" + namespace + ":" + id)
}

func namespacePrefix(namespace string) []byte {
	return []byte(vecPrefix + ":" + namespace + ":")
}

// CreateNamespace is a no-op; namespaces exist implicitly through their
// records.
func (s *Store) CreateNamespace(ctx context.Context, name string) error {
	return nil
}

// DeleteNamespace removes every record under the namespace prefix.
func (s *Store) DeleteNamespace(ctx context.Context, name string) error {
	if s.db.IsClosed() {
		return storage.ErrStoreClosed
	}
	return s.db.DropPrefix(namespacePrefix(name))
}

// Upsert inserts or replaces records in a single transaction per batch.
func (s *Store) Upsert(ctx context.Context, namespace string, records []storage.Record) error {
	if s.db.IsClosed() {
		return storage.ErrStoreClosed
	}
	if len(records) == 0 {
		return nil
	}

	batch := s.db.NewWriteBatch()
	defer batch.Cancel()

	for _, r := range records {
		payload, err := json.Marshal(storedRecord{Values: r.Values, Metadata: r.Metadata})
		if err != nil {
			return fmt.Errorf("marshaling record %s: %w", r.ID, err)
		}
		if err := batch.Set(recordKey(namespace, r.ID), payload); err != nil {
			return err
		}
	}

	if err := batch.Flush(); err != nil {
		s.logger.Error("upsert flush failed", "namespace", namespace, "count", len(records), "err", err)
		return err
	}
	return nil
}

// Query scans the namespace prefix and returns the topK most similar
// records.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int, filter storage.Filter) ([]storage.Match, error) {
	if topK <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	if s.db.IsClosed() {
		return nil, storage.ErrStoreClosed
	}

	prefix := namespacePrefix(namespace)
	var matches []storage.Match

	err := s.db.View(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = prefix
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			id := string(item.Key()[len(prefix):])

			err := item.Value(func(val []byte) error {
				var rec storedRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					// A corrupted record should not fail the query.
					s.logger.Warn("skipping unreadable record", "id", id, "err", err)
					return nil
				}
				if !storage.MatchesFilter(rec.Metadata, filter) {
					return nil
				}
				matches = append(matches, storage.Match{
					ID:       id,
					Score:    storage.CosineSimilarity(vector, rec.Values),
					Metadata: rec.Metadata,
					Text:     storage.TextFromMetadata(rec.Metadata),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	if matches == nil {
		matches = []storage.Match{}
	}
	return matches, nil
}

// List returns every record under the namespace prefix.
func (s *Store) List(ctx context.Context, namespace string) ([]storage.Record, error) {
	if s.db.IsClosed() {
		return nil, storage.ErrStoreClosed
	}

	prefix := namespacePrefix(namespace)
	records := []storage.Record{}

	err := s.db.View(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = prefix
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			id := string(item.Key()[len(prefix):])

			err := item.Value(func(val []byte) error {
				var rec storedRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					s.logger.Warn("skipping unreadable record", "id", id, "err", err)
					return nil
				}
				records = append(records, storage.Record{
					ID:       id,
					Values:   rec.Values,
					Metadata: rec.Metadata,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes records by ID; missing IDs are ignored.
func (s *Store) Delete(ctx context.Context, namespace string, ids []string) error {
	if s.db.IsClosed() {
		return storage.ErrStoreClosed
	}

	batch := s.db.NewWriteBatch()
	defer batch.Cancel()

	for _, id := range ids {
		if err := batch.Delete(recordKey(namespace, id)); err != nil {
			return err
		}
	}
	return batch.Flush()
}

// Ping reports whether the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return storage.ErrStoreClosed
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
