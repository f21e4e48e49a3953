package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{name: "identical vectors", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal vectors", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite vectors", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch scores zero", a: []float32{1, 2}, b: []float32{1, 2, 3}, want: 0},
		{name: "zero vector scores zero", a: []float32{0, 0}, b: []float32{1, 2}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}

	t.Run("scale invariant", func(t *testing.T) {
		a := []float32{0.3, 0.4, 0.5}
		scaled := []float32{3, 4, 5}
		assert.InDelta(t, 1.0, CosineSimilarity(a, scaled), 1e-6)
	})
}

func TestMatchesFilter(t *testing.T) {
	metadata := map[string]any{"type": "org_context", "organizationId": "org-1"}

	assert.True(t, MatchesFilter(metadata, nil))
	assert.True(t, MatchesFilter(metadata, Filter{"type": "org_context"}))
	assert.True(t, MatchesFilter(metadata, Filter{"type": "org_context", "organizationId": "org-1"}))
	assert.False(t, MatchesFilter(metadata, Filter{"type": "chunk"}))
	assert.False(t, MatchesFilter(metadata, Filter{"missing": "value"}))
}

func TestTextFromMetadata(t *testing.T) {
	assert.Equal(t, "hello", TextFromMetadata(map[string]any{"text": "hello"}))
	assert.Equal(t, "", TextFromMetadata(map[string]any{"text": 42}))
	assert.Equal(t, "", TextFromMetadata(nil))
}
