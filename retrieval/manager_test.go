package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/traingen/core"
	"github.com/poiesic/traingen/storage"
	"github.com/poiesic/traingen/storage/memory"
)

// testEmbedder maps known texts to fixed vectors so similarity ordering in
// tests is controlled. Unknown texts get a far-away default.
type testEmbedder struct {
	vectors map[string][]float32
	dim     int
	fail    error
}

func newTestEmbedder(dim int) *testEmbedder {
	return &testEmbedder{vectors: map[string][]float32{}, dim: dim}
}

func (e *testEmbedder) set(text string, v []float32) { e.vectors[text] = v }

func (e *testEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.fail != nil {
		return nil, e.fail
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	v := make([]float32, e.dim)
	v[e.dim-1] = 1
	return v, nil
}

func (e *testEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newTestManager(t *testing.T, opts ...ManagerOption) (*Manager, *testEmbedder, storage.Store) {
	t.Helper()
	store := memory.New()
	embedder := newTestEmbedder(4)
	opts = append([]ManagerOption{WithEmbeddingDimension(4)}, opts...)
	m, err := NewManager(store, embedder, opts...)
	require.NoError(t, err)
	return m, embedder, store
}

func TestNewManagerValidation(t *testing.T) {
	_, err := NewManager(nil, newTestEmbedder(4))
	assert.ErrorIs(t, err, ErrNilStore)

	_, err = NewManager(memory.New(), nil)
	assert.ErrorIs(t, err, ErrNilEmbedder)
}

func TestOrganizationalContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _, store := newTestManager(t)

	octx := &core.OrganizationalContext{
		OrganizationID: "org-1",
		Name:           "Acme Corp",
		Industry:       "manufacturing",
		Tools:          []string{"SAP", "Slack"},
		Concepts:       []string{"lean manufacturing"},
		Compliance:     []string{"OSHA"},
	}
	require.NoError(t, m.StoreOrganizationalContext(ctx, octx))

	t.Run("served from cache", func(t *testing.T) {
		got, err := m.GetOrganizationalContext(ctx, "org-1")
		require.NoError(t, err)
		assert.Same(t, octx, got)
	})

	t.Run("reconstructed from store on cache miss", func(t *testing.T) {
		fresh, err := NewManager(store, newTestEmbedder(4), WithEmbeddingDimension(4))
		require.NoError(t, err)

		got, err := fresh.GetOrganizationalContext(ctx, "org-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Acme Corp", got.Name)
		assert.Equal(t, []string{"SAP", "Slack"}, got.Tools)
		assert.Equal(t, []string{"lean manufacturing"}, got.Concepts)
		assert.Equal(t, []string{"OSHA"}, got.Compliance)
	})

	t.Run("unknown organization returns nil", func(t *testing.T) {
		got, err := m.GetOrganizationalContext(ctx, "org-none")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("empty organization id rejected", func(t *testing.T) {
		err := m.StoreOrganizationalContext(ctx, &core.OrganizationalContext{})
		assert.ErrorIs(t, err, core.ErrEmptyOrganizationID)
	})
}

func TestModuleContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _, store := newTestManager(t)

	mctx := &core.ModuleContext{
		ModuleID:           "mod-1",
		Title:              "Workplace Safety",
		Category:           "compliance",
		LearningObjectives: []string{"Identify hazards", "Report incidents"},
	}
	require.NoError(t, m.StoreModuleContext(ctx, mctx))

	fresh, err := NewManager(store, newTestEmbedder(4), WithEmbeddingDimension(4))
	require.NoError(t, err)

	got, err := fresh.GetModuleContext(ctx, "mod-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Workplace Safety", got.Title)
	assert.Equal(t, []string{"Identify hazards", "Report incidents"}, got.LearningObjectives)

	missing, err := m.GetModuleContext(ctx, "mod-none")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func indexSampleChunks(t *testing.T, m *Manager, embedder *testEmbedder) {
	t.Helper()
	embedder.set("forklift operation procedures", []float32{1, 0, 0, 0})
	embedder.set("cafeteria menu rotation", []float32{0, 1, 0, 0})

	chunks := []core.ContentChunk{
		{
			ID: core.ChunkID("doc1", 0), ContentID: "doc1",
			Text:     "forklift operation procedures",
			Metadata: core.ChunkMetadata{Source: "safety.pdf", PageNumber: 3, Type: "procedure"},
		},
		{
			ID: core.ChunkID("doc1", 1), ContentID: "doc1",
			Text:     "cafeteria menu rotation",
			Metadata: core.ChunkMetadata{Source: "safety.pdf", Type: "general"},
		},
	}
	require.NoError(t, m.IndexContentChunks(context.Background(), "org-1", chunks))
}

func TestSearchContent(t *testing.T) {
	ctx := context.Background()
	m, embedder, _ := newTestManager(t)
	indexSampleChunks(t, m, embedder)

	embedder.set("how do I operate a forklift", []float32{0.9, 0.1, 0, 0})

	t.Run("ranks by similarity and filters by score", func(t *testing.T) {
		results, err := m.SearchContent(ctx, "org-1", "how do I operate a forklift", 10, 0.6)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "doc1-chunk-0", results[0].Chunk.ID)
		assert.Equal(t, "forklift operation procedures", results[0].Chunk.Text)
		assert.Equal(t, "safety.pdf", results[0].Chunk.Metadata.Source)
		assert.Equal(t, 3, results[0].Chunk.Metadata.PageNumber)
		assert.Equal(t, "procedure", results[0].Chunk.Metadata.Type)
		assert.GreaterOrEqual(t, results[0].Score, float32(0.6))
		assert.LessOrEqual(t, results[0].Score, float32(1))
	})

	t.Run("low threshold returns both", func(t *testing.T) {
		results, err := m.SearchContent(ctx, "org-1", "how do I operate a forklift", 10, 0)
		require.NoError(t, err)
		assert.Len(t, results, 2)
		assert.Equal(t, "doc1-chunk-0", results[0].Chunk.ID)
	})

	t.Run("empty query rejected", func(t *testing.T) {
		_, err := m.SearchContent(ctx, "org-1", "", 10, 0.5)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})
}

func TestConversationHistory(t *testing.T) {
	m, _, _ := newTestManager(t)

	for i := 0; i < 5; i++ {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		_, err := m.AddConversationMessage("conv-1", role, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	t.Run("full history in order", func(t *testing.T) {
		history := m.ConversationHistory("conv-1", 0)
		require.Len(t, history, 5)
		assert.Equal(t, "message 0", history[0].Content)
		assert.Equal(t, "message 4", history[4].Content)
		assert.NotEmpty(t, history[0].ID)
		assert.False(t, history[0].Timestamp.After(history[4].Timestamp))
	})

	t.Run("tail truncation", func(t *testing.T) {
		history := m.ConversationHistory("conv-1", 2)
		require.Len(t, history, 2)
		assert.Equal(t, "message 3", history[0].Content)
		assert.Equal(t, "message 4", history[1].Content)
	})

	t.Run("unknown conversation is empty", func(t *testing.T) {
		assert.Empty(t, m.ConversationHistory("conv-none", 0))
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		_, err := m.AddConversationMessage("conv-1", core.Role("moderator"), "hi")
		assert.ErrorIs(t, err, core.ErrInvalidRole)
	})
}

func TestConversationLimit(t *testing.T) {
	m, _, _ := newTestManager(t, WithConversationLimit(3))

	for i := 0; i < 6; i++ {
		_, err := m.AddConversationMessage("conv-1", core.RoleUser, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	history := m.ConversationHistory("conv-1", 0)
	require.Len(t, history, 3)
	assert.Equal(t, "message 3", history[0].Content)
	assert.Equal(t, "message 5", history[2].Content)
}

func TestRetrieveContext(t *testing.T) {
	ctx := context.Background()
	m, embedder, _ := newTestManager(t)
	indexSampleChunks(t, m, embedder)
	embedder.set("forklift training", []float32{1, 0, 0, 0})

	require.NoError(t, m.StoreOrganizationalContext(ctx, &core.OrganizationalContext{
		OrganizationID: "org-1",
		Name:           "Acme Corp",
		Tools:          []string{"SAP"},
		Concepts:       []string{},
		Compliance:     []string{"OSHA"},
	}))
	require.NoError(t, m.StoreModuleContext(ctx, &core.ModuleContext{
		ModuleID:           "mod-1",
		Title:              "Workplace Safety",
		LearningObjectives: []string{"Identify hazards"},
	}))
	for i := 0; i < 25; i++ {
		_, err := m.AddConversationMessage("conv-1", core.RoleUser, fmt.Sprintf("turn %d", i))
		require.NoError(t, err)
	}

	t.Run("full bundle", func(t *testing.T) {
		rc, err := m.RetrieveContext(ctx, Query{
			Text:           "forklift training",
			OrganizationID: "org-1",
			ModuleID:       "mod-1",
			ConversationID: "conv-1",
			MinRelevance:   0.6,
		})
		require.NoError(t, err)

		require.Len(t, rc.Chunks, 1)
		assert.Equal(t, "doc1-chunk-0", rc.Chunks[0].Chunk.ID)
		require.NotNil(t, rc.OrganizationalContext)
		assert.Equal(t, "Acme Corp", rc.OrganizationalContext.Name)
		require.NotNil(t, rc.ModuleContext)
		assert.Equal(t, "Workplace Safety", rc.ModuleContext.Title)

		// history is capped at the last 20 messages
		require.Len(t, rc.ConversationHistory, 20)
		assert.Equal(t, "turn 5", rc.ConversationHistory[0].Content)
		assert.Equal(t, "turn 24", rc.ConversationHistory[19].Content)
	})

	t.Run("placeholder when organization unknown", func(t *testing.T) {
		rc, err := m.RetrieveContext(ctx, Query{
			Text:           "forklift training",
			OrganizationID: "org-unseen",
		})
		require.NoError(t, err)
		require.NotNil(t, rc.OrganizationalContext)
		assert.Equal(t, "org-unseen", rc.OrganizationalContext.OrganizationID)
		assert.Equal(t, "Unknown Organization", rc.OrganizationalContext.Name)
		assert.Empty(t, rc.OrganizationalContext.Tools)
		assert.Empty(t, rc.Chunks)
	})

	t.Run("skip flags suppress sections", func(t *testing.T) {
		rc, err := m.RetrieveContext(ctx, Query{
			Text:                    "forklift training",
			OrganizationID:          "org-1",
			ModuleID:                "mod-1",
			ConversationID:          "conv-1",
			SkipModuleContext:       true,
			SkipConversationHistory: true,
		})
		require.NoError(t, err)
		assert.Nil(t, rc.ModuleContext)
		assert.Empty(t, rc.ConversationHistory)
		assert.NotNil(t, rc.OrganizationalContext)
	})

	t.Run("organization id required", func(t *testing.T) {
		_, err := m.RetrieveContext(ctx, Query{Text: "anything"})
		assert.ErrorIs(t, err, core.ErrEmptyOrganizationID)
	})
}
