package reindex

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/traingen/storage"
	"github.com/poiesic/traingen/storage/memory"
)

type fakeEmbedder struct {
	calls    int
	failures int
	batches  [][]string
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batches = append(f.batches, texts)
	if f.calls <= f.failures {
		return nil, errors.New("provider overloaded")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1}
	}
	return vectors, nil
}

// noListStore wraps a Store without exposing List.
type noListStore struct {
	storage.Store
}

func testConfig() *Config {
	return &Config{BatchSize: 2, ReportInterval: 1, MaxRetries: 3, RetryDelay: time.Millisecond}
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Upsert(context.Background(), "org-1", []storage.Record{
		{ID: "a", Values: []float32{0, 0}, Metadata: map[string]any{"text": "alpha"}},
		{ID: "b", Values: []float32{0, 0}, Metadata: map[string]any{"text": "beta text"}},
		{ID: "c", Values: []float32{0, 0}, Metadata: map[string]any{"text": "gamma"}},
		{ID: "no-text", Values: []float32{9, 9}, Metadata: map[string]any{"type": "marker"}},
	}))
	return store
}

func TestNewReindexerValidation(t *testing.T) {
	store := memory.New()
	defer store.Close()

	_, err := NewReindexer(nil, &fakeEmbedder{}, nil, nil)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewReindexer(store, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewReindexer(noListStore{Store: store}, &fakeEmbedder{}, nil, nil)
	assert.ErrorIs(t, err, ErrListingUnsupported)
}

func TestRunRefreshesVectors(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	embedder := &fakeEmbedder{}
	var progress bytes.Buffer

	r, err := NewReindexer(store, embedder, testConfig(), &progress)
	require.NoError(t, err)

	summary, err := r.Run(ctx, "org-1")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Reindexed)
	assert.Equal(t, 1, summary.Skipped)

	// batch size 2: two embed calls
	assert.Equal(t, 2, embedder.calls)

	records, err := store.List(ctx, "org-1")
	require.NoError(t, err)
	byID := make(map[string]storage.Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	assert.Equal(t, []float32{5, 1}, byID["a"].Values, "vector refreshed from text length")
	assert.Equal(t, []float32{9, 1}, byID["b"].Values)
	assert.Equal(t, []float32{9, 9}, byID["no-text"].Values, "records without text keep their vectors")
	assert.Equal(t, "alpha", byID["a"].Metadata["text"], "metadata preserved")

	out := progress.String()
	assert.Contains(t, out, "Starting reindex of 3 records")
	assert.Contains(t, out, "1 without text skipped")
	assert.Contains(t, out, "Reindex complete")
}

func TestRunEmptyNamespace(t *testing.T) {
	store := memory.New()
	defer store.Close()
	var progress bytes.Buffer

	r, err := NewReindexer(store, &fakeEmbedder{}, testConfig(), &progress)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), "org-empty")
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Contains(t, progress.String(), "No records found")
}

func TestRunRetriesTransientFailures(t *testing.T) {
	store := seedStore(t)
	embedder := &fakeEmbedder{failures: 1}

	r, err := NewReindexer(store, embedder, testConfig(), nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Reindexed)
	// first batch took two attempts, second batch one
	assert.Equal(t, 3, embedder.calls)
}

func TestRunGivesUpAfterMaxRetries(t *testing.T) {
	store := seedStore(t)
	embedder := &fakeEmbedder{failures: 100}

	r, err := NewReindexer(store, embedder, testConfig(), nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "org-1")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "embedding batch"))
	assert.Equal(t, 3, embedder.calls, "stops at MaxRetries")
}
