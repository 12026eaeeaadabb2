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

func TestGeminiProvider_Complete(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[\"a\","},{"text":"\"b\"]"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	require.True(t, g.IsAvailable())

	out, err := g.Complete(context.Background(), "prompt", CompletionOptions{Temperature: 0.3, MaxTokens: 50, Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, out)
	assert.Equal(t, "prompt", got.Contents[0].Parts[0].Text)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
	assert.Equal(t, 50, got.GenerationConfig.MaxOutputTokens)
}

func TestGeminiProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	g := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := g.Complete(context.Background(), "prompt", CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGeminiProvider_BreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	for i := 0; i < 5; i++ {
		_, err := g.Complete(context.Background(), "prompt", CompletionOptions{})
		assert.Error(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestGeminiProvider_Unconfigured(t *testing.T) {
	for _, key := range []string{"", "  ", "your_gemini_api_key_here"} {
		g := NewGeminiProvider(GeminiConfig{APIKey: key}, nil)
		assert.False(t, g.IsAvailable())
		_, err := g.Complete(context.Background(), "p", CompletionOptions{})
		assert.Error(t, err)
	}
}
