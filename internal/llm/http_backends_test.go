package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIBackend_Complete(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": " {\"skills\": []} "}}]}`))
	}))
	defer server.Close()

	backend, err := NewOpenAIBackend(Config{Provider: ProviderOpenAI, APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := backend.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)

	assert.Equal(t, `{"skills": []}`, text)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Equal(t, float32(0), got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user prompt", got.Messages[1].Content)
}

func TestOpenAIBackend_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	backend, err := NewOpenAIBackend(Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = backend.Complete(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestOpenAIBackend_RequiresKey(t *testing.T) {
	_, err := NewOpenAIBackend(Config{})
	assert.Error(t, err)
}

func TestAnthropicBackend_Complete(t *testing.T) {
	var got anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("Anthropic-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "{\"primary\": "}, {"type": "text", "text": "[]}"}]}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Config{Provider: ProviderAnthropic, APIKey: "ak-test", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := backend.Complete(context.Background(), "be careful", "order skills")
	require.NoError(t, err)

	assert.Equal(t, `{"primary": []}`, text)
	assert.Equal(t, "be careful", got.System)
	assert.Equal(t, anthropicMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "order skills", got.Messages[0].Content)
}

func TestAnthropicBackend_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Config{APIKey: "ak-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = backend.Complete(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
