package storage

import "math"

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths and zero vectors score 0 rather than erroring, so a
// malformed record ranks last instead of failing the whole query.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}

// MatchesFilter reports whether metadata satisfies every filter key with an
// exact value match.
func MatchesFilter(metadata map[string]any, filter Filter) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

// TextFromMetadata extracts the conventional "text" metadata value.
func TextFromMetadata(metadata map[string]any) string {
	if text, ok := metadata["text"].(string); ok {
		return text
	}
	return ""
}
