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

// headerTransport stands in for the OAuth transport that authorises Databricks calls.
type headerTransport struct {
	token string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

func TestClient_GenerateResponse_ServingEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/serving-endpoints/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer m2m-token", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "databricks-meta-llama-3-3-70b-instruct", body.Model)
		assert.InDelta(t, 0.3, body.Temperature, 0.001)
		assert.Equal(t, 2048, body.MaxTokens)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "describe the table", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "m",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"table_description\": \"Orders\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 6, "total_tokens": 18}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(&Config{
		Endpoint:   server.URL + "/serving-endpoints/",
		Model:      "databricks-meta-llama-3-3-70b-instruct",
		MaxTokens:  2048,
		HTTPClient: &http.Client{Transport: &headerTransport{token: "m2m-token"}},
	}, zap.NewNop())
	require.NoError(t, err)

	result, err := client.GenerateResponse(context.Background(), "describe the table", "You write data documentation.", 0.3)
	require.NoError(t, err)
	assert.Equal(t, `{"table_description": "Orders"}`, result.Content)
	assert.Equal(t, 18, result.TotalTokens)
}

func TestClient_GenerateResponse_ClassifiesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "REQUEST_LIMIT_EXCEEDED", "type": "rate_limit"}}`))
	}))
	defer server.Close()

	client, err := NewClient(&Config{Endpoint: server.URL, Model: "m"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.GenerateResponse(context.Background(), "p", "", 0)
	require.Error(t, err)

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrorTypeRateLimit, llmErr.Type)
	assert.True(t, llmErr.Retryable)
	assert.Equal(t, "m", llmErr.Model)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(&Config{Model: "m"}, zap.NewNop())
	assert.Error(t, err)
	_, err = NewClient(&Config{Endpoint: "http://x"}, zap.NewNop())
	assert.Error(t, err)
}
