package traingen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/traingen/ai"
	"github.com/poiesic/traingen/llm"
	"github.com/poiesic/traingen/roleplay"
	"github.com/poiesic/traingen/storage"
	"github.com/poiesic/traingen/storage/memory"
)

func testLLMConfig() llm.ServiceConfig {
	return llm.ServiceConfig{
		OrganizationID: "org-test",
		Default:        ai.NewConfig(ai.WithAPIKey("test-key")),
		Embedding:      ai.NewConfig(ai.WithAPIKey("test-key"), ai.WithModel("text-embedding-3-small")),
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp("org-test",
		WithStore(memory.New()),
		WithLLMConfig(testLLMConfig()),
	)
	require.NoError(t, err)
	require.NotNil(t, app)
	return app
}

func TestNewApp(t *testing.T) {
	t.Run("wires components", func(t *testing.T) {
		app := newTestApp(t)
		defer app.Close()

		assert.NotNil(t, app.Store())
		assert.NotNil(t, app.LLM())
		assert.NotNil(t, app.Retriever())
	})

	t.Run("rejects config without default provider", func(t *testing.T) {
		app, err := NewApp("org-test",
			WithStore(memory.New()),
			WithLLMConfig(llm.ServiceConfig{}),
		)
		assert.ErrorIs(t, err, llm.ErrNoDefaultProvider)
		assert.Nil(t, app)
	})
}

func TestApp_Close(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Close())

	// The store is closed with the app.
	err := app.Store().Ping(context.Background())
	assert.Error(t, err)
}

func TestApp_FactoryMethods(t *testing.T) {
	app := newTestApp(t)
	defer app.Close()

	t.Run("ingestion pipeline", func(t *testing.T) {
		pipeline, err := app.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("generator", func(t *testing.T) {
		gen, err := app.NewGenerator()
		require.NoError(t, err)
		require.NotNil(t, gen)
		gen.Release()
	})

	t.Run("searcher", func(t *testing.T) {
		searcher, err := app.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("reindexer", func(t *testing.T) {
		reindexer, err := app.NewReindexer(nil, nil)
		require.NoError(t, err)
		require.NotNil(t, reindexer)
	})

	t.Run("roleplay session", func(t *testing.T) {
		session, err := app.NewRoleplaySession(roleplay.Config{
			Scenario: "A customer calls about a delayed order.",
			AIRole:   "Upset customer",
		})
		require.NoError(t, err)
		require.NotNil(t, session)
	})
}

func TestOpenStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := openStore(storage.EnvConfig{Backend: storage.BackendMemory})
		require.NoError(t, err)
		require.NotNil(t, store)
		store.Close()
	})

	t.Run("badger", func(t *testing.T) {
		store, err := openStore(storage.EnvConfig{
			Backend:    storage.BackendBadger,
			BadgerPath: t.TempDir(),
		})
		require.NoError(t, err)
		require.NotNil(t, store)
		store.Close()
	})
}
