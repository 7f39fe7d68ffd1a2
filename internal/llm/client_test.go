package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestOpenAIComplete(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "hope you're doing well")
	defer srv.Close()

	c := NewOpenAI(srv.URL, "test-key", "gpt-4o-mini", 2*time.Second, 100)
	res, err := c.Complete(context.Background(), "be warm", "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hope you're doing well", res.Content)
	assert.Equal(t, "openai", res.Provider)
}

func TestOpenAICompleteUpstreamError(t *testing.T) {
	srv := completionServer(t, http.StatusBadGateway, "")
	defer srv.Close()

	c := NewOpenAI(srv.URL, "test-key", "gpt-4o-mini", 2*time.Second, 100)
	_, err := c.Complete(context.Background(), "be warm", "say hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestOpenAICompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewOpenAI(srv.URL, "", "gpt-4o-mini", 2*time.Second, 100)
	_, err := c.Complete(context.Background(), "s", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty completion")
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(Config{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c, "disabled generation yields no client, not an error")

	_, err = NewClient(Config{Enabled: true})
	require.Error(t, err, "enabled without a base_url is a config error")

	c, err = NewClient(Config{Enabled: true, BaseURL: "http://localhost:11434/v1"})
	require.NoError(t, err)
	require.NotNil(t, c)
}
