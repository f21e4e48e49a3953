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

package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/traingen/core"
	"github.com/poiesic/traingen/ingestion"
)

// Scoring model. Semantic hits carry their similarity score; chunks that
// also match a detected term are boosted 1.5x; term-only matches below the
// semantic threshold score a flat 1.2; a full verbatim query match adds 0.3.
const (
	semanticThreshold = 0.60
	candidateFloor    = 0.40

	combinedBoost   = 1.5
	conceptualScore = 1.2
	verbatimBoost   = 0.3

	poolFactor = 3
)

// Result pairs a content chunk with its hybrid relevance score. Unlike raw
// similarity, hybrid scores can exceed 1.
type Result struct {
	Chunk core.ContentChunk
	Score float32
}

// ContentSearcher is the semantic retrieval surface the searcher builds
// on. *retrieval.Manager satisfies it.
type ContentSearcher interface {
	SearchContent(ctx context.Context, organizationID, query string, topK int, minScore float32) ([]core.ScoredChunk, error)
}

// Searcher provides hybrid semantic and conceptual search over indexed
// organization content.
type Searcher struct {
	retriever ContentSearcher
	registry  *ingestion.Registry
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// WithRegistry sets the pattern registry used for term detection.
func WithRegistry(registry *ingestion.Registry) Option {
	return func(s *Searcher) error {
		if registry != nil {
			s.registry = registry
		}
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(retriever ContentSearcher, opts ...Option) (*Searcher, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}

	s := &Searcher{
		retriever: retriever,
		registry:  ingestion.NewRegistry(),
		logger:    slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches the organization's content for chunks relevant to
// the query. Returns up to maxHits results, ranked by hybrid score.
func (s *Searcher) FindSimilar(ctx context.Context, organizationID, query string, maxHits int) ([]Result, error) {
	return s.FindSimilarWithMonitor(ctx, organizationID, query, maxHits, nil)
}

// FindSimilarWithMonitor searches with monitoring. The monitor receives
// callbacks at each stage of the search process.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, organizationID, query string, maxHits int, monitor SearchMonitor) ([]Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if maxHits <= 0 {
		maxHits = 10
	}

	monitor.Start(query)

	// 1. Pull a deep candidate pool so term-only matches below the
	// semantic threshold stay in play.
	candidates, err := s.retriever.SearchContent(ctx, organizationID, query, maxHits*poolFactor, candidateFloor)
	if err != nil {
		s.logger.Error("error querying for similar content", "query", query, "err", err)
		return nil, err
	}

	semanticIDs := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Score >= semanticThreshold {
			semanticIDs = append(semanticIDs, candidate.Chunk.ID)
		}
	}
	monitor.AfterSemanticSearch(semanticIDs)

	// 2. Detect known tools, concepts, and compliance terms in the query.
	analysis := s.registry.Analyze(query)
	terms := make([]string, 0, len(analysis.Tools)+len(analysis.Concepts)+len(analysis.Compliance))
	terms = append(terms, analysis.Tools...)
	terms = append(terms, analysis.Concepts...)
	terms = append(terms, analysis.Compliance...)
	monitor.AfterConceptDetection(terms)

	// 3. Combine and score
	results := make([]Result, 0, len(candidates))
	for _, candidate := range candidates {
		inSemantic := candidate.Score >= semanticThreshold
		inConceptual := containsAnyTerm(candidate.Chunk.Text, terms)

		var score float32
		switch {
		case inSemantic && inConceptual:
			score = combinedBoost * candidate.Score
			monitor.SemanticAndConceptualHit(candidate.Chunk)
		case inConceptual:
			score = conceptualScore
			monitor.ConceptualHit(candidate.Chunk)
		case inSemantic:
			score = candidate.Score
			monitor.SemanticHit(candidate.Chunk)
		default:
			continue
		}

		if containsAllQueryWords(candidate.Chunk.Text, query) {
			score += verbatimBoost
		}

		results = append(results, Result{Chunk: candidate.Chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
