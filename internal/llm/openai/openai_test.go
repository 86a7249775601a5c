package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/llm"
)

func newTestGenerator(t *testing.T, url string) *Generator {
	t.Helper()
	t.Setenv("PDFCHAT_TEST_KEY", "sk-test")
	params := llm.DefaultParams()
	params.ModelID = "gpt-4o-mini"
	g, err := NewGenerator(Config{BaseURL: url + "/", APIKeyEnv: "PDFCHAT_TEST_KEY"}, params)
	require.NoError(t, err)
	return g
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Equal(t, 512, req.MaxTokens)
		assert.Equal(t, 0.5, req.Temperature)
		assert.Equal(t, 0.9, req.TopP)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "hello", req.Messages[0].Content)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi there"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	out, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth"}}`))
	}))
	defer srv.Close()

	_, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "hello")
	assert.EqualError(t, err, "openai: invalid api key")
}

func TestGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "hello")
	assert.EqualError(t, err, "openai: no choices returned")
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	t.Setenv("PDFCHAT_EMPTY_KEY", "")
	_, err := NewGenerator(Config{APIKeyEnv: "PDFCHAT_EMPTY_KEY"}, llm.DefaultParams())
	assert.Error(t, err)
}
