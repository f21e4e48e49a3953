package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"uppercase tag", "```JSON\n[1,2]\n```", `[1,2]`},
		{"surrounding whitespace", "  ```json\n[1]\n```  ", `[1]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}

func TestFirstArray(t *testing.T) {
	t.Run("with prose around it", func(t *testing.T) {
		got, err := FirstArray("Here are the lessons:\n[{\"title\":\"Intro\"}]\nLet me know!")
		require.NoError(t, err)
		assert.Equal(t, `[{"title":"Intro"}]`, got)
	})

	t.Run("inside a fence", func(t *testing.T) {
		got, err := FirstArray("```json\n[1, 2, 3]\n```")
		require.NoError(t, err)
		assert.Equal(t, "[1, 2, 3]", got)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := FirstArray("no array here")
		assert.ErrorIs(t, err, ErrNoArray)
	})

	t.Run("bracket order wrong", func(t *testing.T) {
		_, err := FirstArray("] backwards [")
		assert.ErrorIs(t, err, ErrNoArray)
	})
}

func TestFirstObject(t *testing.T) {
	got, err := FirstObject("Sure! {\"introduction\":\"hi\",\"branches\":[]} Done.")
	require.NoError(t, err)
	assert.Equal(t, `{"introduction":"hi","branches":[]}`, got)

	_, err = FirstObject("nothing")
	assert.ErrorIs(t, err, ErrNoObject)
}

func TestUnmarshalArray(t *testing.T) {
	type lesson struct {
		Title string `json:"title"`
		Order int    `json:"order"`
	}

	t.Run("clean payload", func(t *testing.T) {
		var lessons []lesson
		err := UnmarshalArray(`[{"title":"A","order":1},{"title":"B","order":2}]`, &lessons)
		require.NoError(t, err)
		require.Len(t, lessons, 2)
		assert.Equal(t, "B", lessons[1].Title)
	})

	t.Run("repairs broken keys", func(t *testing.T) {
		var lessons []lesson
		err := UnmarshalArray(`[{title":"A","order":1}]`, &lessons)
		require.NoError(t, err)
		require.Len(t, lessons, 1)
		assert.Equal(t, "A", lessons[0].Title)
	})

	t.Run("unparseable reports original error", func(t *testing.T) {
		var lessons []lesson
		err := UnmarshalArray(`[{"title": broken}]`, &lessons)
		assert.Error(t, err)
	})
}

func TestUnmarshalObject(t *testing.T) {
	var script struct {
		Introduction string `json:"introduction"`
	}
	err := UnmarshalObject("```json\n{\"introduction\":\"Welcome\"}\n```", &script)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", script.Introduction)
}

func TestRepairKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing open quote after comma", `{"a":1, type":"x"}`, `{"a":1, "type":"x"}`},
		{"missing open quote after brace", `{type":"x"}`, `{"type":"x"}`},
		{"already valid untouched", `{"type":"x"}`, `{"type":"x"}`},
		{"bare word not a key untouched", `{"a": true}`, `{"a": true}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RepairKeys(tc.in))
		})
	}
}
