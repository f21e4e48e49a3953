package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/traingen/core"
)

func TestTemplatesCatalogIsValid(t *testing.T) {
	templates := Templates()
	require.NotEmpty(t, templates)

	seen := make(map[string]bool)
	for _, tmpl := range templates {
		tmpl := tmpl
		assert.NoError(t, core.ValidateTemplate(&tmpl), "template %s", tmpl.ID)
		assert.False(t, seen[tmpl.ID], "duplicate template id %s", tmpl.ID)
		seen[tmpl.ID] = true
	}
}

func TestTemplatesReturnsCopy(t *testing.T) {
	first := Templates()
	first[0].Title = "mutated"

	fresh := Templates()
	assert.NotEqual(t, "mutated", fresh[0].Title)
}

func TestTemplateByID(t *testing.T) {
	tmpl, ok := TemplateByID("effective-feedback")
	require.True(t, ok)
	assert.Equal(t, "Giving and Receiving Feedback", tmpl.Title)

	_, ok = TemplateByID("does-not-exist")
	assert.False(t, ok)
}

func TestTemplatesByCategory(t *testing.T) {
	compliance := TemplatesByCategory(CategoryCompliance)
	require.NotEmpty(t, compliance)
	for _, tmpl := range compliance {
		assert.Equal(t, CategoryCompliance, tmpl.Category)
	}

	assert.Empty(t, TemplatesByCategory("no-such-category"))
}

func TestSearchTemplates(t *testing.T) {
	t.Run("matches keywords case-insensitively", func(t *testing.T) {
		results := SearchTemplates("HIPAA")
		require.NotEmpty(t, results)
		assert.Equal(t, "hipaa-essentials", results[0].ID)
	})

	t.Run("matches title substrings", func(t *testing.T) {
		results := SearchTemplates("feedback")
		found := false
		for _, tmpl := range results {
			if tmpl.ID == "effective-feedback" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, SearchTemplates("zzzzzz"))
	})
}

func TestTemplatesWithSimulation(t *testing.T) {
	results := TemplatesWithSimulation()
	require.NotEmpty(t, results)
	for _, tmpl := range results {
		assert.True(t, tmpl.HasSimulation, "template %s", tmpl.ID)
		assert.NoError(t, core.ValidateSimulationType(tmpl.SimulationType))
	}
}
