package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemma2", req.Model)
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(generateResponse{Response: "a summary", Done: true})
	}))
	defer srv.Close()

	provider := New(srv.URL, "gemma2")
	assert.Equal(t, PROVIDER_NAME, provider.Name())

	got, err := provider.Generate(context.Background(), "summarize this file")
	require.NoError(t, err)
	assert.Equal(t, "a summary", got)
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	provider := New(srv.URL, "gemma2")

	_, err := provider.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}
