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

package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/traingen/core"
	"github.com/poiesic/traingen/storage"
)

// Metadata type tags distinguishing record kinds within a namespace.
const (
	typeOrganizationalContext = "organizational_context"
	typeModuleContext         = "module_context"
	typeContentChunk          = "content_chunk"
)

// moduleNamespace holds module context records for all organizations.
const moduleNamespace = "modules"

const (
	defaultEmbeddingDimension = 1536 // text-embedding-3-small
	defaultMaxChunks          = 10
	defaultMinRelevance       = 0.7
	historyLimit              = 20
)

// Embedder produces embedding vectors. *llm.Service satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Manager owns context storage and retrieval. All methods are safe for
// concurrent use; the in-process caches are write-through with the vector
// store holding the authoritative copy.
type Manager struct {
	store    storage.Store
	embedder Embedder
	logger   *slog.Logger

	embeddingDim      int
	conversationLimit int

	mu            sync.RWMutex
	orgCache      map[string]*core.OrganizationalContext
	moduleCache   map[string]*core.ModuleContext
	conversations map[string][]core.ConversationMessage
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger.With("component", "retrieval")
		}
	}
}

// WithEmbeddingDimension sets the vector length used for filter-only lookups.
// It must match the configured embedding model's output dimension.
func WithEmbeddingDimension(dim int) ManagerOption {
	return func(m *Manager) {
		if dim > 0 {
			m.embeddingDim = dim
		}
	}
}

// WithConversationLimit caps how many messages are retained per conversation.
// Older messages are dropped from the head once the cap is exceeded. Zero
// means unbounded retention.
func WithConversationLimit(limit int) ManagerOption {
	return func(m *Manager) {
		if limit >= 0 {
			m.conversationLimit = limit
		}
	}
}

// NewManager creates a context manager over the given store and embedder.
func NewManager(store storage.Store, embedder Embedder, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if embedder == nil {
		return nil, ErrNilEmbedder
	}

	m := &Manager{
		store:         store,
		embedder:      embedder,
		logger:        slog.Default().With("component", "retrieval"),
		embeddingDim:  defaultEmbeddingDimension,
		orgCache:      make(map[string]*core.OrganizationalContext),
		moduleCache:   make(map[string]*core.ModuleContext),
		conversations: make(map[string][]core.ConversationMessage),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func orgNamespace(organizationID string) string {
	return "org-" + organizationID
}

// StoreOrganizationalContext writes the profile to the vector store under a
// stable per-organization record ID and caches it in-process.
func (m *Manager) StoreOrganizationalContext(ctx context.Context, octx *core.OrganizationalContext) error {
	if octx == nil || octx.OrganizationID == "" {
		return core.ErrEmptyOrganizationID
	}

	text := serializeOrganizationalContext(octx)
	vector, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding organizational context: %w", err)
	}

	record := storage.Record{
		ID:     "org-context-" + octx.OrganizationID,
		Values: vector,
		Metadata: map[string]any{
			"type":           typeOrganizationalContext,
			"organizationId": octx.OrganizationID,
			"name":           octx.Name,
			"industry":       octx.Industry,
			"size":           octx.Size,
			"tools":          octx.Tools,
			"concepts":       octx.Concepts,
			"compliance":     octx.Compliance,
			"values":         octx.Values,
			"culture":        octx.Culture,
			"text":           text,
		},
	}
	if err := m.store.Upsert(ctx, orgNamespace(octx.OrganizationID), []storage.Record{record}); err != nil {
		return fmt.Errorf("storing organizational context: %w", err)
	}

	m.mu.Lock()
	m.orgCache[octx.OrganizationID] = octx
	m.mu.Unlock()
	return nil
}

// GetOrganizationalContext returns the stored profile, or nil when the
// organization has none. The cache is consulted first; on a miss the record
// is fetched by filter with a zero query vector, so ranking plays no part.
func (m *Manager) GetOrganizationalContext(ctx context.Context, organizationID string) (*core.OrganizationalContext, error) {
	if organizationID == "" {
		return nil, core.ErrEmptyOrganizationID
	}

	m.mu.RLock()
	cached, ok := m.orgCache[organizationID]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	matches, err := m.store.Query(ctx, orgNamespace(organizationID), make([]float32, m.embeddingDim), 1,
		storage.Filter{"type": typeOrganizationalContext})
	if err != nil {
		return nil, fmt.Errorf("fetching organizational context: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	md := matches[0].Metadata
	octx := &core.OrganizationalContext{
		OrganizationID: organizationID,
		Name:           metadataString(md, "name"),
		Industry:       metadataString(md, "industry"),
		Size:           metadataString(md, "size"),
		Tools:          metadataStrings(md, "tools"),
		Concepts:       metadataStrings(md, "concepts"),
		Compliance:     metadataStrings(md, "compliance"),
		Values:         metadataStrings(md, "values"),
		Culture:        metadataString(md, "culture"),
	}

	m.mu.Lock()
	m.orgCache[organizationID] = octx
	m.mu.Unlock()
	return octx, nil
}

// StoreModuleContext writes module metadata to the shared module namespace.
func (m *Manager) StoreModuleContext(ctx context.Context, mctx *core.ModuleContext) error {
	if mctx == nil || mctx.ModuleID == "" {
		return fmt.Errorf("%w: module id is empty", core.ErrInvalidTemplate)
	}

	text := serializeModuleContext(mctx)
	vector, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding module context: %w", err)
	}

	record := storage.Record{
		ID:     "module-context-" + mctx.ModuleID,
		Values: vector,
		Metadata: map[string]any{
			"type":               typeModuleContext,
			"moduleId":           mctx.ModuleID,
			"title":              mctx.Title,
			"description":        mctx.Description,
			"category":           mctx.Category,
			"targetAudience":     mctx.TargetAudience,
			"difficulty":         mctx.Difficulty,
			"learningObjectives": mctx.LearningObjectives,
			"text":               text,
		},
	}
	if err := m.store.Upsert(ctx, moduleNamespace, []storage.Record{record}); err != nil {
		return fmt.Errorf("storing module context: %w", err)
	}

	m.mu.Lock()
	m.moduleCache[mctx.ModuleID] = mctx
	m.mu.Unlock()
	return nil
}

// GetModuleContext returns the module metadata, or nil when unknown.
func (m *Manager) GetModuleContext(ctx context.Context, moduleID string) (*core.ModuleContext, error) {
	m.mu.RLock()
	cached, ok := m.moduleCache[moduleID]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	matches, err := m.store.Query(ctx, moduleNamespace, make([]float32, m.embeddingDim), 1,
		storage.Filter{"type": typeModuleContext, "moduleId": moduleID})
	if err != nil {
		return nil, fmt.Errorf("fetching module context: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	md := matches[0].Metadata
	mctx := &core.ModuleContext{
		ModuleID:           moduleID,
		Title:              metadataString(md, "title"),
		Description:        metadataString(md, "description"),
		Category:           metadataString(md, "category"),
		TargetAudience:     metadataString(md, "targetAudience"),
		Difficulty:         metadataString(md, "difficulty"),
		LearningObjectives: metadataStrings(md, "learningObjectives"),
	}

	m.mu.Lock()
	m.moduleCache[moduleID] = mctx
	m.mu.Unlock()
	return mctx, nil
}

// IndexContentChunks embeds and stores document chunks under the
// organization's namespace. Embeddings are generated in a single batch call.
func (m *Manager) IndexContentChunks(ctx context.Context, organizationID string, chunks []core.ContentChunk) error {
	if organizationID == "" {
		return core.ErrEmptyOrganizationID
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		chunk := &chunks[i]
		if err := core.ValidateChunk(chunk); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		texts[i] = chunk.Text
	}

	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(vectors), len(chunks))
	}

	records := make([]storage.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = storage.Record{
			ID:     chunk.ID,
			Values: vectors[i],
			Metadata: map[string]any{
				"type":           typeContentChunk,
				"organizationId": organizationID,
				"contentId":      chunk.ContentID,
				"source":         chunk.Metadata.Source,
				"pageNumber":     chunk.Metadata.PageNumber,
				"section":        chunk.Metadata.Section,
				"chunkType":      chunk.Metadata.Type,
				"text":           chunk.Text,
			},
		}
	}

	if err := m.store.Upsert(ctx, orgNamespace(organizationID), records); err != nil {
		return fmt.Errorf("indexing chunks: %w", err)
	}
	m.logger.Info("indexed content chunks", "organizationId", organizationID, "count", len(chunks))
	return nil
}

// SearchContent performs a similarity search over the organization's indexed
// chunks, dropping results below minScore. Scores are clamped to [0,1].
func (m *Manager) SearchContent(ctx context.Context, organizationID, query string, topK int, minScore float32) ([]core.ScoredChunk, error) {
	if organizationID == "" {
		return nil, core.ErrEmptyOrganizationID
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = defaultMaxChunks
	}

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := m.store.Query(ctx, orgNamespace(organizationID), vector, topK,
		storage.Filter{"type": typeContentChunk})
	if err != nil {
		return nil, fmt.Errorf("searching content: %w", err)
	}

	chunks := make([]core.ScoredChunk, 0, len(matches))
	for _, match := range matches {
		score := clamp01(match.Score)
		if score < minScore {
			continue
		}
		chunks = append(chunks, core.ScoredChunk{
			Chunk: core.ContentChunk{
				ID:        match.ID,
				ContentID: metadataString(match.Metadata, "contentId"),
				Text:      match.Text,
				Metadata: core.ChunkMetadata{
					Source:     metadataString(match.Metadata, "source"),
					PageNumber: metadataInt(match.Metadata, "pageNumber"),
					Section:    metadataString(match.Metadata, "section"),
					Type:       metadataString(match.Metadata, "chunkType"),
				},
			},
			Score: score,
		})
	}
	return chunks, nil
}

// AddConversationMessage appends a message to the conversation's history and
// returns it with its assigned ID and timestamp.
func (m *Manager) AddConversationMessage(conversationID string, role core.Role, content string) (core.ConversationMessage, error) {
	msg := core.ConversationMessage{
		ID:        "msg-" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := core.ValidateMessage(&msg); err != nil {
		return core.ConversationMessage{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	history := append(m.conversations[conversationID], msg)
	if m.conversationLimit > 0 && len(history) > m.conversationLimit {
		history = history[len(history)-m.conversationLimit:]
	}
	m.conversations[conversationID] = history
	return msg, nil
}

// ConversationHistory returns the last maxMessages messages of a
// conversation, oldest first. maxMessages <= 0 returns the full history.
func (m *Manager) ConversationHistory(conversationID string, maxMessages int) []core.ConversationMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.conversations[conversationID]
	if maxMessages > 0 && len(history) > maxMessages {
		history = history[len(history)-maxMessages:]
	}
	out := make([]core.ConversationMessage, len(history))
	copy(out, history)
	return out
}

// Query describes one unified retrieval request. The zero value of the Skip
// fields includes every section.
type Query struct {
	Text           string
	OrganizationID string
	ModuleID       string
	ConversationID string

	// MaxChunks caps retrieved chunks; <= 0 means 10.
	MaxChunks int

	// MinRelevance filters chunks below this similarity; <= 0 means 0.7.
	MinRelevance float32

	SkipOrganizationalContext bool
	SkipModuleContext         bool
	SkipConversationHistory   bool
}

// RetrieveContext composes content search, organizational context, optional
// module context, and the conversation tail into one bundle. A missing
// organizational profile never fails the call; a placeholder record is
// returned instead.
func (m *Manager) RetrieveContext(ctx context.Context, q Query) (*core.RetrievedContext, error) {
	if q.OrganizationID == "" {
		return nil, core.ErrEmptyOrganizationID
	}
	maxChunks := q.MaxChunks
	if maxChunks <= 0 {
		maxChunks = defaultMaxChunks
	}
	minRelevance := q.MinRelevance
	if minRelevance <= 0 {
		minRelevance = defaultMinRelevance
	}

	chunks, err := m.SearchContent(ctx, q.OrganizationID, q.Text, maxChunks, minRelevance)
	if err != nil {
		return nil, err
	}

	orgContext := core.PlaceholderOrganizationalContext(q.OrganizationID)
	if !q.SkipOrganizationalContext {
		stored, err := m.GetOrganizationalContext(ctx, q.OrganizationID)
		if err != nil {
			m.logger.Warn("organizational context lookup failed, using placeholder",
				"organizationId", q.OrganizationID, "err", err)
		} else if stored != nil {
			orgContext = stored
		}
	}

	var moduleContext *core.ModuleContext
	if !q.SkipModuleContext && q.ModuleID != "" {
		moduleContext, err = m.GetModuleContext(ctx, q.ModuleID)
		if err != nil {
			m.logger.Warn("module context lookup failed", "moduleId", q.ModuleID, "err", err)
			moduleContext = nil
		}
	}

	var history []core.ConversationMessage
	if !q.SkipConversationHistory && q.ConversationID != "" {
		history = m.ConversationHistory(q.ConversationID, historyLimit)
	}

	return &core.RetrievedContext{
		Chunks:                chunks,
		OrganizationalContext: orgContext,
		ModuleContext:         moduleContext,
		ConversationHistory:   history,
	}, nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func metadataString(md map[string]any, key string) string {
	if s, ok := md[key].(string); ok {
		return s
	}
	return ""
}

func metadataInt(md map[string]any, key string) int {
	switch v := md[key].(type) {
	case int:
		return v
	case float64: // JSON round trips numbers as float64
		return int(v)
	}
	return 0
}

func metadataStrings(md map[string]any, key string) []string {
	switch v := md[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}
