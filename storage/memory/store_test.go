package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/traingen/storage"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	records := []storage.Record{
		{ID: "a", Values: []float32{1, 0, 0}, Metadata: map[string]any{"text": "alpha", "type": "chunk"}},
		{ID: "b", Values: []float32{0, 1, 0}, Metadata: map[string]any{"text": "beta", "type": "chunk"}},
		{ID: "c", Values: []float32{0.9, 0.1, 0}, Metadata: map[string]any{"text": "gamma", "type": "org_context"}},
	}
	require.NoError(t, s.Upsert(ctx, "org-1", records))

	t.Run("query ranks by similarity", func(t *testing.T) {
		matches, err := s.Query(ctx, "org-1", []float32{1, 0, 0}, 2, nil)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "a", matches[0].ID)
		assert.Equal(t, "c", matches[1].ID)
		assert.Greater(t, matches[0].Score, matches[1].Score)
		assert.Equal(t, "alpha", matches[0].Text)
	})

	t.Run("filter narrows results", func(t *testing.T) {
		matches, err := s.Query(ctx, "org-1", []float32{1, 0, 0}, 10, storage.Filter{"type": "org_context"})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "c", matches[0].ID)
	})

	t.Run("unknown namespace is empty not error", func(t *testing.T) {
		matches, err := s.Query(ctx, "org-2", []float32{1, 0, 0}, 5, nil)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		require.NoError(t, s.Upsert(ctx, "org-1", []storage.Record{
			{ID: "a", Values: []float32{0, 0, 1}, Metadata: map[string]any{"text": "alpha v2"}},
		}))
		matches, err := s.Query(ctx, "org-1", []float32{0, 0, 1}, 1, nil)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "a", matches[0].ID)
		assert.Equal(t, "alpha v2", matches[0].Text)
	})

	t.Run("list returns all records", func(t *testing.T) {
		listed, err := s.List(ctx, "org-1")
		require.NoError(t, err)
		require.Len(t, listed, 3)

		byID := make(map[string]storage.Record, len(listed))
		for _, r := range listed {
			byID[r.ID] = r
		}
		assert.Equal(t, []float32{0, 0, 1}, byID["a"].Values)
		assert.Equal(t, "beta", byID["b"].Metadata["text"])

		empty, err := s.List(ctx, "org-2")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("delete removes ids", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "org-1", []string{"a", "missing"}))
		matches, err := s.Query(ctx, "org-1", []float32{0, 0, 1}, 10, nil)
		require.NoError(t, err)
		for _, m := range matches {
			assert.NotEqual(t, "a", m.ID)
		}
	})

	t.Run("delete namespace drops everything", func(t *testing.T) {
		require.NoError(t, s.DeleteNamespace(ctx, "org-1"))
		matches, err := s.Query(ctx, "org-1", []float32{1, 0, 0}, 10, nil)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("invalid topK", func(t *testing.T) {
		_, err := s.Query(ctx, "org-1", []float32{1}, 0, nil)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestQueryTieBreakByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	ids := []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	for _, id := range ids {
		require.NoError(t, s.Upsert(ctx, "ns", []storage.Record{
			{ID: id, Values: []float32{1, 0, 0}},
		}))
	}

	t.Run("ties come back in insertion order", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			matches, err := s.Query(ctx, "ns", []float32{1, 0, 0}, len(ids), nil)
			require.NoError(t, err)
			require.Len(t, matches, len(ids))
			for j, m := range matches {
				assert.Equal(t, ids[j], m.ID)
			}
		}
	})

	t.Run("topK cut at a tie boundary is deterministic", func(t *testing.T) {
		matches, err := s.Query(ctx, "ns", []float32{1, 0, 0}, 3, nil)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, "r0", matches[0].ID)
		assert.Equal(t, "r1", matches[1].ID)
		assert.Equal(t, "r2", matches[2].ID)
	})

	t.Run("replacing a record keeps its position", func(t *testing.T) {
		require.NoError(t, s.Upsert(ctx, "ns", []storage.Record{
			{ID: "r0", Values: []float32{1, 0, 0}, Metadata: map[string]any{"text": "v2"}},
		}))
		matches, err := s.Query(ctx, "ns", []float32{1, 0, 0}, len(ids), nil)
		require.NoError(t, err)
		assert.Equal(t, "r0", matches[0].ID)
		assert.Equal(t, "v2", matches[0].Text)
	})
}

func TestUpsertCopiesMetadata(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	meta := map[string]any{"text": "original"}
	require.NoError(t, s.Upsert(ctx, "ns", []storage.Record{
		{ID: "a", Values: []float32{1}, Metadata: meta},
	}))

	meta["text"] = "mutated"

	matches, err := s.Query(ctx, "ns", []float32{1}, 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "original", matches[0].Text)

	listed, err := s.List(ctx, "ns")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "original", listed[0].Metadata["text"])
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ping(ctx), storage.ErrStoreClosed)
	assert.ErrorIs(t, s.Upsert(ctx, "ns", nil), storage.ErrStoreClosed)
	_, err := s.Query(ctx, "ns", []float32{1}, 1, nil)
	assert.ErrorIs(t, err, storage.ErrStoreClosed)
	_, err = s.List(ctx, "ns")
	assert.ErrorIs(t, err, storage.ErrStoreClosed)
}

func TestStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				_ = s.Upsert(ctx, "ns", []storage.Record{
					{ID: "shared", Values: []float32{float32(n), float32(j)}},
				})
				_, _ = s.Query(ctx, "ns", []float32{1, 1}, 3, nil)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
