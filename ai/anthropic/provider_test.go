package anthropic

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
		ai.WithProvider("anthropic"),
		ai.WithAPIKey("sk-ant-test"),
		ai.WithModel("claude-sonnet-4-20250514"),
		ai.WithBaseURL(baseURL),
	)
}

func TestComplete(t *testing.T) {
	t.Run("system prompt lifted to top level", func(t *testing.T) {
		var gotReq messagesRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/messages", r.URL.Path)
			assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
			assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

			json.NewEncoder(w).Encode(map[string]any{
				"id":    "msg_1",
				"model": "claude-sonnet-4-20250514",
				"content": []map[string]string{
					{"type": "text", "text": "Part one. "},
					{"type": "tool_use", "text": "ignored"},
					{"type": "text", "text": "Part two."},
				},
				"stop_reason": "end_turn",
				"usage":       map[string]int{"input_tokens": 10, "output_tokens": 5},
			})
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		completion, err := p.Complete(context.Background(), []ai.Message{
			ai.SystemMessage("You are a trainer."),
			ai.UserMessage("Teach me."),
			ai.AssistantMessage("Gladly."),
			ai.UserMessage("Go on."),
		})
		require.NoError(t, err)

		// Text blocks concatenated, non-text blocks dropped.
		assert.Equal(t, "Part one. Part two.", completion.Content)
		assert.Equal(t, "stop", completion.FinishReason)
		assert.Equal(t, 15, completion.Usage.TotalTokens)

		assert.Equal(t, "You are a trainer.", gotReq.System)
		require.Len(t, gotReq.Messages, 3)
		assert.Equal(t, "user", gotReq.Messages[0].Role)
		assert.Equal(t, "assistant", gotReq.Messages[1].Role)
	})

	t.Run("per-call sampling overrides", func(t *testing.T) {
		var gotReq messagesRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			json.NewEncoder(w).Encode(map[string]any{
				"model":       "claude-sonnet-4-20250514",
				"content":     []map[string]string{{"type": "text", "text": "ok"}},
				"stop_reason": "end_turn",
			})
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		_, err = p.Complete(context.Background(), []ai.Message{
			ai.SystemMessage("From the conversation."),
			ai.UserMessage("hi"),
		},
			ai.WithTopP(0.8), ai.WithStopSequences("###", "END"),
			ai.WithSystemPrompt("From the call option."))
		require.NoError(t, err)

		assert.Equal(t, 0.8, gotReq.TopP)
		assert.Equal(t, []string{"###", "END"}, gotReq.StopSequences)
		// The per-call system prompt wins over the system-role message.
		assert.Equal(t, "From the call option.", gotReq.System)
	})

	t.Run("max_tokens maps to length", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"model":       "claude-sonnet-4-20250514",
				"content":     []map[string]string{{"type": "text", "text": "truncated"}},
				"stop_reason": "max_tokens",
			})
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		completion, err := p.Complete(context.Background(), []ai.Message{ai.UserMessage("hi")})
		require.NoError(t, err)
		assert.Equal(t, "length", completion.FinishReason)
	})

	t.Run("api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"invalid model"}}`))
		}))
		defer server.Close()

		p, err := New(testConfig(server.URL))
		require.NoError(t, err)

		_, err = p.Complete(context.Background(), []ai.Message{ai.UserMessage("hi")})
		require.Error(t, err)
		assert.False(t, ai.IsRetryable(err))
		assert.Contains(t, err.Error(), "invalid model")
	})
}

func TestStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"type":"message_start"}` + "\n\n"))
		w.Write([]byte(`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Saf"}}` + "\n\n"))
		w.Write([]byte(`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"ety"}}` + "\n\n"))
		w.Write([]byte(`data: {"type":"message_stop"}` + "\n\n"))
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
	assert.Equal(t, "Safety", full)
	assert.True(t, done)
}

func TestEmbedUnsupported(t *testing.T) {
	p, err := New(testConfig("http://unused.invalid"))
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrEmbeddingsUnsupported)

	_, err = p.EmbedBatch(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, ErrEmbeddingsUnsupported)
}
