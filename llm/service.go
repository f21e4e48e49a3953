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
	"context"
	"log/slog"

	"github.com/poiesic/traingen/ai"
)

// ServiceConfig is the per-organization routing table: a default provider,
// optional per-task overrides, and an optional dedicated embedding provider.
type ServiceConfig struct {
	OrganizationID string

	// Default serves every task without an override.
	Default *ai.Config

	// Tasks maps task types to their dedicated provider configs.
	Tasks map[TaskType]*ai.Config

	// Embedding, when set, serves all embedding traffic regardless of the
	// default.
	Embedding *ai.Config
}

// Service routes AI work to providers by task type. Provider instances are
// cached in the registry, so two tasks configured identically share one
// instance.
type Service struct {
	config   ServiceConfig
	registry *Registry
	logger   *slog.Logger
}

// NewService creates a routing service over the registry. The registry may
// be shared across services for cross-organization instance reuse.
func NewService(config ServiceConfig, registry *Registry) (*Service, error) {
	if config.Default == nil {
		return nil, ErrNoDefaultProvider
	}
	if err := config.Default.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{
		config:   config,
		registry: registry,
		logger:   slog.Default().With("component", "llm-service", "org", config.OrganizationID),
	}, nil
}

// ProviderFor resolves the provider for a task: the task override when
// configured, the default otherwise.
func (s *Service) ProviderFor(task TaskType) (ai.Provider, error) {
	if cfg, ok := s.config.Tasks[task]; ok && cfg != nil {
		return s.registry.Get(cfg)
	}
	return s.registry.Get(s.config.Default)
}

// EmbeddingProvider resolves the provider for embedding traffic, preferring
// the dedicated embedding config over the default.
func (s *Service) EmbeddingProvider() (ai.Provider, error) {
	if s.config.Embedding != nil {
		return s.registry.Get(s.config.Embedding)
	}
	return s.registry.Get(s.config.Default)
}

// GenerateText produces a completion for a single prompt, optionally wrapped
// with a system prompt via messages assembled by the caller's options.
func (s *Service) GenerateText(ctx context.Context, task TaskType, prompt string, opts ...ai.CallOption) (string, error) {
	completion, err := s.Chat(ctx, task, []ai.Message{ai.UserMessage(prompt)}, opts...)
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

// Chat produces a completion for a conversation.
func (s *Service) Chat(ctx context.Context, task TaskType, messages []ai.Message, opts ...ai.CallOption) (*ai.Completion, error) {
	provider, err := s.ProviderFor(task)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("routing chat", "task", task, "provider", provider.Name(), "model", provider.Model())
	return provider.Complete(ctx, messages, opts...)
}

// StreamText streams a completion for a single prompt.
func (s *Service) StreamText(ctx context.Context, task TaskType, prompt string, opts ...ai.CallOption) (<-chan ai.StreamEvent, error) {
	return s.StreamChat(ctx, task, []ai.Message{ai.UserMessage(prompt)}, opts...)
}

// StreamChat streams a completion for a conversation.
func (s *Service) StreamChat(ctx context.Context, task TaskType, messages []ai.Message, opts ...ai.CallOption) (<-chan ai.StreamEvent, error) {
	provider, err := s.ProviderFor(task)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("routing stream", "task", task, "provider", provider.Name(), "model", provider.Model())
	return provider.Stream(ctx, messages, opts...)
}

// Embed generates an embedding for a single text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	provider, err := s.EmbeddingProvider()
	if err != nil {
		return nil, err
	}
	return provider.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	provider, err := s.EmbeddingProvider()
	if err != nil {
		return nil, err
	}
	return provider.EmbedBatch(ctx, texts)
}

// connectionValidator is implemented by adapters that can probe their
// backend.
type connectionValidator interface {
	ValidateConnection(ctx context.Context) bool
}

// ValidateProviders probes every distinct configured provider and returns a
// named pass/fail map. Meant for operational health checks, not the hot
// path.
func (s *Service) ValidateProviders(ctx context.Context) map[string]bool {
	results := make(map[string]bool)

	check := func(name string, cfg *ai.Config) {
		provider, err := s.registry.Get(cfg)
		if err != nil {
			results[name] = false
			return
		}
		if v, ok := provider.(connectionValidator); ok {
			results[name] = v.ValidateConnection(ctx)
			return
		}
		// No probe available; reachability is unknown, report configured.
		results[name] = true
	}

	check("default:"+s.config.Default.Provider, s.config.Default)
	for task, cfg := range s.config.Tasks {
		if cfg != nil {
			check(string(task)+":"+cfg.Provider, cfg)
		}
	}
	if s.config.Embedding != nil {
		check("embedding:"+s.config.Embedding.Provider, s.config.Embedding)
	}
	return results
}
