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

package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/traingen/storage"
)

// Embedder produces vectors for batches of text. *llm.Service satisfies it.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds configuration for a reindexing run.
type Config struct {
	// BatchSize is the number of records to embed per provider call
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Summary reports what a reindexing run did.
type Summary struct {
	// Total is the number of records found in the namespace.
	Total int

	// Reindexed is the number of records whose vectors were refreshed.
	Reindexed int

	// Skipped is the number of records left untouched because they carry
	// no source text to re-embed.
	Skipped int
}

// Reindexer re-embeds every record in a namespace.
type Reindexer struct {
	store    storage.Store
	lister   storage.Lister
	embedder Embedder
	config   *Config
	progress io.Writer
}

// NewReindexer creates a reindexer. The store must support namespace
// listing; progress output goes to progress (typically os.Stderr).
func NewReindexer(store storage.Store, embedder Embedder, config *Config, progress io.Writer) (*Reindexer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	lister, ok := store.(storage.Lister)
	if !ok {
		return nil, ErrListingUnsupported
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		store:    store,
		lister:   lister,
		embedder: embedder,
		config:   config,
		progress: progress,
	}, nil
}

// Run re-embeds the namespace. Records without a "text" metadata entry
// keep their existing vectors and are counted as skipped.
func (r *Reindexer) Run(ctx context.Context, namespace string) (*Summary, error) {
	records, err := r.lister.List(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("listing namespace %s: %w", namespace, err)
	}

	summary := &Summary{Total: len(records)}
	if len(records) == 0 {
		fmt.Fprintf(r.progress, "No records found in namespace %s\n", namespace)
		return summary, nil
	}

	embeddable := records[:0]
	for _, record := range records {
		if storage.TextFromMetadata(record.Metadata) == "" {
			summary.Skipped++
			continue
		}
		embeddable = append(embeddable, record)
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d records in %s (batch size: %d, %d without text skipped)\n",
		len(embeddable), namespace, r.config.BatchSize, summary.Skipped)

	tracker := NewProgressTracker(r.progress, len(embeddable), r.config.ReportInterval)
	tracker.Start()

	for start := 0; start < len(embeddable); start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > len(embeddable) {
			end = len(embeddable)
		}
		batch := embeddable[start:end]

		if err := r.processBatch(ctx, namespace, batch); err != nil {
			return nil, err
		}

		summary.Reindexed += len(batch)
		tracker.Update(summary.Reindexed)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Refreshed %d records in %v (%.1f records/sec)\n",
		summary.Reindexed, elapsed.Round(time.Second), float64(summary.Reindexed)/elapsed.Seconds())

	return summary, nil
}

func (r *Reindexer) processBatch(ctx context.Context, namespace string, batch []storage.Record) error {
	texts := make([]string, len(batch))
	for i, record := range batch {
		texts[i] = storage.TextFromMetadata(record.Metadata)
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = r.embedder.EmbedBatch(ctx, texts)
		return embedErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding batch: got %d vectors for %d records", len(vectors), len(batch))
	}

	updated := make([]storage.Record, len(batch))
	for i, record := range batch {
		updated[i] = storage.Record{
			ID:       record.ID,
			Values:   vectors[i],
			Metadata: record.Metadata,
		}
	}

	err = RetryWithBackoff(ctx, func() error {
		return r.store.Upsert(ctx, namespace, updated)
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("writing batch: %w", err)
	}
	return nil
}
