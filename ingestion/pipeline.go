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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/traingen/core"
)

// Indexer is the slice of the context manager the pipeline needs.
// *retrieval.Manager satisfies it.
type Indexer interface {
	IndexContentChunks(ctx context.Context, organizationID string, chunks []core.ContentChunk) error
	GetOrganizationalContext(ctx context.Context, organizationID string) (*core.OrganizationalContext, error)
	StoreOrganizationalContext(ctx context.Context, octx *core.OrganizationalContext) error
}

// Document is one uploaded file to ingest.
type Document struct {
	FileName string
	MimeType string
	Data     []byte
}

// Result reports the outcome of processing one document. Err is set when the
// document failed; the rest of the batch is unaffected.
type Result struct {
	FileName   string
	ContentID  string
	ChunkCount int
	Pages      int
	Analysis   core.ContentAnalysis
	Err        error
}

// Pipeline ingests documents: extract, chunk, analyze, index, and merge the
// analysis into the organization's profile.
type Pipeline struct {
	indexer  Indexer
	registry *Registry
	pool     *ants.Pool
	chunkOpt ChunkOptions
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for batch processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkOptions sets the chunking parameters used for every document.
func WithChunkOptions(opts ChunkOptions) Option {
	return func(p *Pipeline) error {
		p.chunkOpt = opts
		return nil
	}
}

// WithRegistry replaces the built-in analysis pattern registry.
func WithRegistry(registry *Registry) Option {
	return func(p *Pipeline) error {
		if registry != nil {
			p.registry = registry
		}
		return nil
	}
}

// WithPipelineLogger sets a custom logger.
func WithPipelineLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger.With("component", "ingestion")
		}
		return nil
	}
}

// NewPipeline creates a document ingestion pipeline.
func NewPipeline(indexer Indexer, opts ...Option) (*Pipeline, error) {
	if indexer == nil {
		return nil, ErrIndexerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		indexer:  indexer,
		registry: NewRegistry(),
		pool:     pool,
		logger:   slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Process ingests a single document and merges its analysis into the
// organization's profile.
func (p *Pipeline) Process(ctx context.Context, organizationID string, doc Document) (Result, error) {
	result := p.processOne(ctx, organizationID, doc)
	if result.Err != nil {
		return result, result.Err
	}

	if err := p.mergeAnalysis(ctx, organizationID, result.Analysis); err != nil {
		p.logger.Warn("merging analysis into organization profile failed",
			"organizationId", organizationID, "file", doc.FileName, "err", err)
	}
	return result, nil
}

// ProcessBatch ingests documents concurrently. A failing document yields a
// Result with Err set and does not affect the others. The combined analysis
// of all successful documents is merged into the organization's profile in
// one update after the batch completes. Results are returned in input order.
func (p *Pipeline) ProcessBatch(ctx context.Context, organizationID string, docs []Document) []Result {
	results := make([]Result, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		i, doc := i, doc
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			results[i] = p.processOne(ctx, organizationID, doc)
		})
		if submitErr != nil {
			results[i] = Result{FileName: doc.FileName, Err: submitErr}
			wg.Done()
		}
	}
	wg.Wait()

	combined := core.ContentAnalysis{}
	succeeded := 0
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		succeeded++
		combined.Tools = appendUnique(combined.Tools, r.Analysis.Tools)
		combined.Concepts = appendUnique(combined.Concepts, r.Analysis.Concepts)
		combined.Compliance = appendUnique(combined.Compliance, r.Analysis.Compliance)
	}

	if succeeded > 0 {
		if err := p.mergeAnalysis(ctx, organizationID, combined); err != nil {
			p.logger.Warn("merging batch analysis into organization profile failed",
				"organizationId", organizationID, "err", err)
		}
	}

	p.logger.Info("processed document batch",
		"organizationId", organizationID, "total", len(docs), "succeeded", succeeded)
	return results
}

func (p *Pipeline) processOne(ctx context.Context, organizationID string, doc Document) Result {
	result := Result{FileName: doc.FileName}

	extracted, err := ExtractText(ctx, doc.Data, doc.FileName, doc.MimeType)
	if err != nil {
		result.Err = err
		return result
	}
	if len(extracted.Text) == 0 {
		result.Err = fmt.Errorf("%w: %s", ErrEmptyDocument, doc.FileName)
		return result
	}

	contentID := core.IDFromContent(doc.Data)
	chunks := BuildChunks(contentID, extracted.Text, doc.FileName, p.chunkOpt)

	if err := p.indexer.IndexContentChunks(ctx, organizationID, chunks); err != nil {
		result.Err = fmt.Errorf("indexing %s: %w", doc.FileName, err)
		return result
	}

	result.ContentID = contentID
	result.ChunkCount = len(chunks)
	result.Pages = extracted.Metadata.Pages
	result.Analysis = p.registry.Analyze(extracted.Text)

	p.logger.Debug("processed document",
		"file", doc.FileName, "contentId", contentID, "chunks", len(chunks))
	return result
}

// mergeAnalysis unions detected tools, concepts, and compliance references
// into the stored organizational context, creating the profile on first
// ingestion.
func (p *Pipeline) mergeAnalysis(ctx context.Context, organizationID string, analysis core.ContentAnalysis) error {
	if len(analysis.Tools) == 0 && len(analysis.Concepts) == 0 && len(analysis.Compliance) == 0 {
		return nil
	}

	octx, err := p.indexer.GetOrganizationalContext(ctx, organizationID)
	if err != nil {
		return err
	}
	if octx == nil {
		octx = core.PlaceholderOrganizationalContext(organizationID)
	}

	// copy before mutating; the indexer may hand back a cached pointer
	updated := *octx
	updated.Tools = appendUnique(append([]string{}, octx.Tools...), analysis.Tools)
	updated.Concepts = appendUnique(append([]string{}, octx.Concepts...), analysis.Concepts)
	updated.Compliance = appendUnique(append([]string{}, octx.Compliance...), analysis.Compliance)

	return p.indexer.StoreOrganizationalContext(ctx, &updated)
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func appendUnique(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range added {
		if !seen[s] {
			seen[s] = true
			existing = append(existing, s)
		}
	}
	return existing
}
