package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAnthropicClient_GenerateResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-sonnet-4-5", body["model"])
		assert.Equal(t, "You write data documentation.", body["system"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "{\"table_description\": \"Orders\"}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 20, "output_tokens": 7}
		}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(&AnthropicConfig{
		APIKey:  "test-key",
		Model:   "claude-sonnet-4-5",
		BaseURL: server.URL + "/v1",
	}, zap.NewNop())
	require.NoError(t, err)

	result, err := client.GenerateResponse(context.Background(), "describe", "You write data documentation.", 0.3)
	require.NoError(t, err)
	assert.Equal(t, `{"table_description": "Orders"}`, result.Content)
	assert.Equal(t, 27, result.TotalTokens)
	assert.Equal(t, server.URL+"/v1", client.GetEndpoint())
}

func TestNewAnthropicClient_RequiresKey(t *testing.T) {
	_, err := NewAnthropicClient(&AnthropicConfig{Model: "m"}, zap.NewNop())
	assert.Error(t, err)
}
