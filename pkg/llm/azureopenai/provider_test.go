package azureopenai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-webchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "hello there"}},
			},
		})
	}))
	defer srv.Close()

	p := NewAzureProvider(srv.URL, "test-key", "gpt-4o", "2024-02-01")
	content, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be helpful"},
		{Role: llm.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", content)
	assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions?api-version=2024-02-01", gotPath)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "hi", gotBody.Messages[1].Content)
	assert.Equal(t, 0.7, gotBody.Temperature)
	assert.Equal(t, 800, gotBody.MaxTokens)
}

func TestChatOptionsOverrideDefaults(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	p := NewAzureProvider(srv.URL, "k", "dep", "v")
	_, err := p.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		llm.WithTemperature(0.2), llm.WithMaxTokens(64),
	)
	require.NoError(t, err)
	assert.Equal(t, 0.2, gotBody.Temperature)
	assert.Equal(t, 64, gotBody.MaxTokens)
}

func TestChatNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limited"},
		})
	}))
	defer srv.Close()

	p := NewAzureProvider(srv.URL, "k", "dep", "v")
	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestChatEmptyContentFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{},
		})
	}))
	defer srv.Close()

	p := NewAzureProvider(srv.URL, "k", "dep", "v")
	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response content")
}

func TestChatUnreachableEndpointFails(t *testing.T) {
	p := NewAzureProvider("http://127.0.0.1:1", "k", "dep", "v")
	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	require.Error(t, err)
}
