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


package llm

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/traingen/ai"
	"github.com/poiesic/traingen/ai/anthropic"
	"github.com/poiesic/traingen/ai/google"
	"github.com/poiesic/traingen/ai/openai"
)

// Factory builds a provider from a validated config. Overridable in tests.
type Factory func(config *ai.Config) (ai.Provider, error)

// Registry caches provider instances by config identity so repeated lookups
// for the same provider, model, and credential reuse one instance. Safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ai.Provider
	factory   Factory
	logger    *slog.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]ai.Provider),
		factory:   defaultFactory,
		logger:    slog.Default().With("component", "llm-registry"),
	}
}

// NewRegistryWithFactory creates a registry with a custom provider factory.
// Used by tests to install mock providers.
func NewRegistryWithFactory(factory Factory) *Registry {
	r := NewRegistry()
	r.factory = factory
	return r
}

func defaultFactory(config *ai.Config) (ai.Provider, error) {
	switch config.Provider {
	case "openai", "azure":
		// Azure exposes the OpenAI wire format behind a per-deployment URL.
		return openai.New(config)
	case "anthropic":
		return anthropic.New(config)
	case "google":
		return google.New(config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, config.Provider)
	}
}

// Get returns the cached provider for the config, creating it on first use.
func (r *Registry) Get(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	key := config.CacheKey()

	r.mu.RLock()
	p, ok := r.providers[key]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[key]; ok {
		return p, nil
	}

	p, err := r.factory(config)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("created provider", "provider", config.Provider, "model", config.Model)
	r.providers[key] = p
	return p, nil
}

// Size returns the number of cached provider instances.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
