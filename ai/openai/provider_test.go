package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/traingen/ai"
)

func testConfig(baseURL string) *ai.Config {
	return ai.NewConfig(
		ai.WithAPIKey("sk-test-key"),
		ai.WithBaseURL(baseURL),
	)
}

func TestComplete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotReq chatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

			json.NewEncoder(w).Encode(map[string]any{
				"id":    "chatcmpl-1",
				"model": "gpt-4o-mini",
				"choices": []map[string]any{{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": "Hello there"},
					"finish_reason": "stop",
				}},
				"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
			})
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		completion, err := p.Complete(context.Background(), []ai.Message{
			ai.SystemMessage("Be brief."),
			ai.UserMessage("Say hello"),
		})
		require.NoError(t, err)

		assert.Equal(t, "Hello there", completion.Content)
		assert.Equal(t, "stop", completion.FinishReason)
		assert.Equal(t, 15, completion.Usage.TotalTokens)

		require.Len(t, gotReq.Messages, 2)
		assert.Equal(t, "system", gotReq.Messages[0].Role)
		assert.Equal(t, "gpt-4o-mini", gotReq.Model)
		assert.Equal(t, 0.7, gotReq.Temperature)
		assert.Equal(t, 1.0, gotReq.TopP)
	})

	t.Run("per-call options override defaults", func(t *testing.T) {
		var gotReq chatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			json.NewEncoder(w).Encode(map[string]any{
				"model": "gpt-4o-mini",
				"choices": []map[string]any{{
					"message":       map[string]string{"role": "assistant", "content": "{}"},
					"finish_reason": "stop",
				}},
			})
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		_, err = p.Complete(context.Background(), []ai.Message{ai.UserMessage("hi")},
			ai.WithTemperature(0), ai.WithMaxTokens(256), ai.WithTopP(0.9),
			ai.WithStopSequences("END"), ai.WithSystemPrompt("Respond in French."),
			ai.WithJSONMode())
		require.NoError(t, err)

		assert.Equal(t, 0.0, gotReq.Temperature)
		assert.Equal(t, 256, gotReq.MaxTokens)
		assert.Equal(t, 0.9, gotReq.TopP)
		assert.Equal(t, []string{"END"}, gotReq.Stop)
		require.NotNil(t, gotReq.ResponseFormat)
		assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
		require.Len(t, gotReq.Messages, 2)
		assert.Equal(t, "system", gotReq.Messages[0].Role)
		assert.Equal(t, "Respond in French.", gotReq.Messages[0].Content)
	})

	t.Run("api error is classified", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		_, err = p.Complete(context.Background(), []ai.Message{ai.UserMessage("hi")})
		require.Error(t, err)
		assert.True(t, ai.IsRetryable(err))
		assert.Contains(t, err.Error(), "Rate limit reached")
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"model": "gpt-4o-mini", "choices": []any{}})
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		_, err = p.Complete(context.Background(), []ai.Message{ai.UserMessage("hi")})
		assert.ErrorIs(t, err, ai.ErrEmptyResponse)
	})

	t.Run("no messages", func(t *testing.T) {
		p, err := New(testConfig("http://unused.invalid"))
		require.NoError(t, err)

		_, err = p.Complete(context.Background(), nil)
		assert.ErrorIs(t, err, ai.ErrNoMessages)
	})
}

func TestStream(t *testing.T) {
	t.Run("collects deltas until done", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Write([]byte(`data: {"choices":[{"delta":{"content":"Hel"}}]}` + "\n\n"))
			w.Write([]byte(`data: {"choices":[{"delta":{"content":"lo"}}]}` + "\n\n"))
			w.Write([]byte("data: not-json\n\n")) // must be skipped
			w.Write([]byte("data: [DONE]\n\n"))
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		events, err := p.Stream(context.Background(), []ai.Message{ai.UserMessage("hi")})
		require.NoError(t, err)

		var full string
		var done bool
		for ev := range events {
			require.NoError(t, ev.Err)
			full += ev.Content
			done = done || ev.Done
		}
		assert.Equal(t, "Hello", full)
		assert.True(t, done)
	})

	t.Run("stream error status surfaces before channel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"boom"}}`))
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		_, err = p.Stream(context.Background(), []ai.Message{ai.UserMessage("hi")})
		require.Error(t, err)
		assert.True(t, ai.IsRetryable(err))
	})
}

func TestEmbed(t *testing.T) {
	t.Run("batch preserves order by index", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/embeddings", r.URL.Path)
			var req embeddingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "text-embedding-3-small", req.Model)

			// Return data out of order to exercise index-based placement.
			json.NewEncoder(w).Encode(map[string]any{
				"model": req.Model,
				"data": []map[string]any{
					{"index": 1, "embedding": []float32{0.4, 0.5}},
					{"index": 0, "embedding": []float32{0.1, 0.2}},
				},
				"usage": map[string]int{"total_tokens": 8},
			})
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		vectors, err := p.EmbedBatch(context.Background(), []string{"first", "second"})
		require.NoError(t, err)
		require.Len(t, vectors, 2)
		assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
		assert.Equal(t, []float32{0.4, 0.5}, vectors[1])
	})

	t.Run("single text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"index": 0, "embedding": []float32{1, 2, 3}}},
			})
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		vec, err := p.Embed(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3}, vec)
	})

	t.Run("empty input short-circuits", func(t *testing.T) {
		p, err := New(testConfig("http://unused.invalid"))
		require.NoError(t, err)

		vectors, err := p.EmbedBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, vectors)
	})
}

func TestCountTokens(t *testing.T) {
	p, err := New(testConfig("http://unused.invalid"))
	require.NoError(t, err)
	assert.Equal(t, 3, p.CountTokens("twelve chars"))
}
