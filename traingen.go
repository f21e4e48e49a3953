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

package traingen

import (
	"io"
	"log/slog"

	"github.com/poiesic/traingen/generation"
	"github.com/poiesic/traingen/ingestion"
	"github.com/poiesic/traingen/llm"
	"github.com/poiesic/traingen/reindex"
	"github.com/poiesic/traingen/retrieval"
	"github.com/poiesic/traingen/roleplay"
	"github.com/poiesic/traingen/search"
	"github.com/poiesic/traingen/storage"
	"github.com/poiesic/traingen/storage/badger"
	"github.com/poiesic/traingen/storage/memory"
	"github.com/poiesic/traingen/storage/pinecone"
)

// App wires the vector store, the LLM routing service and the retrieval
// manager together, and hands out the higher-level components built on
// top of them.
type App struct {
	store     storage.Store
	llm       *llm.Service
	retriever *retrieval.Manager
	logger    *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	store     storage.Store
	llmConfig *llm.ServiceConfig
	registry  *llm.Registry
	logger    *slog.Logger
}

// WithStore supplies a pre-built vector store instead of the one selected
// from the environment.
func WithStore(store storage.Store) AppOption {
	return func(o *appOptions) {
		o.store = store
	}
}

// WithLLMConfig supplies a routing configuration instead of
// llm.ConfigFromEnv.
func WithLLMConfig(config llm.ServiceConfig) AppOption {
	return func(o *appOptions) {
		o.llmConfig = &config
	}
}

// WithRegistry shares a provider registry across Apps.
func WithRegistry(registry *llm.Registry) AppOption {
	return func(o *appOptions) {
		o.registry = registry
	}
}

// WithAppLogger sets the logger used by the App and its components.
func WithAppLogger(logger *slog.Logger) AppOption {
	return func(o *appOptions) {
		o.logger = logger
	}
}

// NewApp builds the application from the environment: the store backend per
// storage.FromEnv and the LLM routing per llm.ConfigFromEnv, unless options
// override either.
func NewApp(organizationID string, opts ...AppOption) (*App, error) {
	options := &appOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	store := options.store
	if store == nil {
		var err error
		store, err = openStore(storage.FromEnv())
		if err != nil {
			return nil, err
		}
	}

	llmConfig := llm.ConfigFromEnv(organizationID)
	if options.llmConfig != nil {
		llmConfig = *options.llmConfig
	}
	service, err := llm.NewService(llmConfig, options.registry)
	if err != nil {
		if options.store == nil {
			store.Close()
		}
		return nil, err
	}

	retriever, err := retrieval.NewManager(store, service,
		retrieval.WithLogger(options.logger.With("component", "retrieval")))
	if err != nil {
		if options.store == nil {
			store.Close()
		}
		return nil, err
	}

	return &App{
		store:     store,
		llm:       service,
		retriever: retriever,
		logger:    options.logger,
	}, nil
}

func openStore(cfg storage.EnvConfig) (storage.Store, error) {
	switch cfg.Backend {
	case storage.BackendPinecone:
		return pinecone.New(pinecone.Config{
			APIKey:    cfg.PineconeAPIKey,
			IndexHost: cfg.PineconeIndexHost,
		})
	case storage.BackendBadger:
		return badger.Open(cfg.BadgerPath, false)
	default:
		return memory.New(), nil
	}
}

// Close releases the vector store. Components created by the factory
// methods that hold worker pools must be released separately.
func (a *App) Close() error {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}

// Store returns the vector store backend.
func (a *App) Store() storage.Store {
	return a.store
}

// LLM returns the task-routing LLM service.
func (a *App) LLM() *llm.Service {
	return a.llm
}

// Retriever returns the RAG context manager.
func (a *App) Retriever() *retrieval.Manager {
	return a.retriever
}

// NewIngestionPipeline builds a document ingestion pipeline over the
// retrieval manager. Call Release on the pipeline when done.
func (a *App) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(a.retriever, opts...)
}

// NewGenerator builds a module generator over the LLM service and the
// retrieval manager. Call Release on the generator when done.
func (a *App) NewGenerator(opts ...generation.Option) (*generation.Generator, error) {
	return generation.NewGenerator(a.llm, a.retriever, opts...)
}

// NewSearcher builds a hybrid content searcher over the retrieval manager.
func (a *App) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(a.retriever, opts...)
}

// NewReindexer builds a re-embedding reindexer over the store and the LLM
// service. progress may be nil to suppress terminal output.
func (a *App) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(a.store, a.llm, config, progress)
}

// NewRoleplaySession starts a roleplay practice session driven by the LLM
// service.
func (a *App) NewRoleplaySession(config roleplay.Config, opts ...roleplay.SessionOption) (*roleplay.Session, error) {
	return roleplay.NewSession(a.llm, config, opts...)
}
