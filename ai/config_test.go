package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, 1.0, cfg.TopP)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, "gpt-4o-mini", cfg.Model)
	})

	t.Run("with provider and model", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider("anthropic"),
			WithModel("claude-sonnet-4-20250514"),
			WithAPIKey("sk-ant-test"),
		)

		assert.Equal(t, "anthropic", cfg.Provider)
		assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model)
		assert.Equal(t, "sk-ant-test", cfg.APIKey)
	})

	t.Run("with generation defaults", func(t *testing.T) {
		cfg := NewConfig(
			WithDefaultTemperature(0.2),
			WithDefaultMaxTokens(8192),
			WithDefaultTopP(0.95),
		)

		assert.Equal(t, 0.2, cfg.Temperature)
		assert.Equal(t, 8192, cfg.MaxTokens)
		assert.Equal(t, 0.95, cfg.TopP)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid openai config", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("sk-test"))
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := NewConfig()
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingAPIKey))
	})

	t.Run("unsupported provider", func(t *testing.T) {
		cfg := NewConfig(WithProvider("cohere"), WithAPIKey("k"))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported provider")
	})

	t.Run("azure requires base url", func(t *testing.T) {
		cfg := NewConfig(WithProvider("azure"), WithAPIKey("k"))
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingBaseURL))

		cfg = NewConfig(
			WithProvider("azure"),
			WithAPIKey("k"),
			WithBaseURL("https://myorg.openai.azure.com/openai/deployments/gpt4"),
		)
		require.NoError(t, cfg.Validate())
	})

	t.Run("normalizes provider case and base url", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider("OpenAI"),
			WithAPIKey("sk-test"),
			WithBaseURL("https://gateway.example.com/v1/"),
		)
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, "https://gateway.example.com/v1", cfg.BaseURL)
	})
}

func TestConfigCacheKey(t *testing.T) {
	t.Run("uses credential tail", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("sk-proj-abcdefgh12345678"))
		assert.Equal(t, "openai:gpt-4o-mini:12345678", cfg.CacheKey())
	})

	t.Run("short key used whole", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("short"))
		assert.Equal(t, "openai:gpt-4o-mini:short", cfg.CacheKey())
	})

	t.Run("distinct models distinct keys", func(t *testing.T) {
		a := NewConfig(WithAPIKey("sk-test-12345678"))
		b := NewConfig(WithAPIKey("sk-test-12345678"), WithModel("gpt-4o"))
		assert.NotEqual(t, a.CacheKey(), b.CacheKey())
	})
}

func TestApplyCallOptions(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		o := ApplyCallOptions(nil)
		assert.Nil(t, o.Temperature)
		assert.Nil(t, o.MaxTokens)
		assert.False(t, o.JSONMode)
	})

	t.Run("zero temperature is explicit", func(t *testing.T) {
		o := ApplyCallOptions([]CallOption{WithTemperature(0)})
		require.NotNil(t, o.Temperature)
		assert.Equal(t, 0.0, *o.Temperature)
	})

	t.Run("all options", func(t *testing.T) {
		o := ApplyCallOptions([]CallOption{
			WithTemperature(0.8),
			WithMaxTokens(2048),
			WithTopP(0.9),
			WithStopSequences("END", "STOP"),
			WithSystemPrompt("You are terse."),
			WithJSONMode(),
		})
		require.NotNil(t, o.Temperature)
		assert.Equal(t, 0.8, *o.Temperature)
		require.NotNil(t, o.MaxTokens)
		assert.Equal(t, 2048, *o.MaxTokens)
		require.NotNil(t, o.TopP)
		assert.Equal(t, 0.9, *o.TopP)
		assert.Equal(t, []string{"END", "STOP"}, o.StopSequences)
		assert.Equal(t, "You are terse.", o.SystemPrompt)
		assert.True(t, o.JSONMode)
	})
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 25, EstimateTokens(string(make([]byte, 100))))
}
