package search

import "github.com/poiesic/traingen/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during
// search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(chunkIDs []string)
	AfterConceptDetection(terms []string)
	SemanticAndConceptualHit(chunk core.ContentChunk)
	SemanticHit(chunk core.ContentChunk)
	ConceptualHit(chunk core.ContentChunk)
	Finish(results []Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterSemanticSearch(_ []string)             {}
func (n *noopMonitor) AfterConceptDetection(_ []string)           {}
func (n *noopMonitor) SemanticAndConceptualHit(_ core.ContentChunk) {}
func (n *noopMonitor) SemanticHit(_ core.ContentChunk)            {}
func (n *noopMonitor) ConceptualHit(_ core.ContentChunk)          {}
func (n *noopMonitor) Finish(_ []Result)                          {}
