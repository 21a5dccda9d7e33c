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

func TestOllamaBackendChat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2:1b","message":{"role":"assistant","content":"{\"ok\":true}"},"done":true}`))
	}))
	defer srv.Close()

	b := NewOllamaBackend(srv.URL, 5*time.Second)
	reply, err := b.Chat(context.Background(), ChatRequest{
		Model: "llama3.2:1b", System: "sys", Prompt: "hello", Temperature: 0.1, TopP: 0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, reply)

	assert.Equal(t, "llama3.2:1b", got["model"])
	assert.Equal(t, false, got["stream"])
	opts := got["options"].(map[string]any)
	assert.Equal(t, 0.1, opts["temperature"])
	assert.Equal(t, 0.9, opts["top_p"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "hello", msgs[1].(map[string]any)["content"])
}

func TestOllamaBackendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model 'nope' not found"}`))
		case "/api/pull":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"pull failed"}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	b := NewOllamaBackend(srv.URL, 5*time.Second)

	_, err := b.Chat(context.Background(), ChatRequest{Model: "nope"})
	assert.ErrorContains(t, err, "model 'nope' not found")

	_, err = b.ListModels(context.Background())
	assert.ErrorContains(t, err, "invalid JSON")

	err = b.PullModel(context.Background(), "nope")
	assert.ErrorContains(t, err, "pull failed")
}

func TestOllamaBackendModels(t *testing.T) {
	var pulled string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:1b"},{"name":"mistral:latest"}]}`))
		case "/api/pull":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			pulled, _ = body["model"].(string)
			_, _ = w.Write([]byte(`{"status":"success"}`))
		}
	}))
	defer srv.Close()

	b := NewOllamaBackend(srv.URL, 5*time.Second)

	names, err := b.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:1b", "mistral:latest"}, names)

	require.NoError(t, b.PullModel(context.Background(), "llama3.2:1b"))
	assert.Equal(t, "llama3.2:1b", pulled)
}

func TestOllamaBackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	e := NewEvaluator(NewOllamaBackend(url, time.Second), DefaultOptions(), nil)
	res := e.EvaluateCV(context.Background(), "sql")
	assert.Equal(t, Fallback("sql"), res)
}
