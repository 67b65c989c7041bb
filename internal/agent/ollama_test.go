package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSuccess(t *testing.T) {
	var captured generatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{"response": "Tome agua y descanse."})
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "gemma3:4b")
	res, err := client.Generate(context.Background(), GenerateRequest{
		SystemPrompt: "Eres un asistente de salud.",
		Prompt:       "Me duele la cabeza",
		Temperature:  0.3,
		MaxTokens:    800,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tome agua y descanse.", res.Text)
	assert.Greater(t, res.Latency.Nanoseconds(), int64(0))

	assert.Equal(t, "gemma3:4b", captured.Model)
	assert.False(t, captured.Stream)
	assert.Equal(t, 0.3, captured.Options.Temperature)
	assert.Equal(t, 800, captured.Options.NumPredict)
	assert.Equal(t, "Eres un asistente de salud.\n\nUsuario: Me duele la cabeza", captured.Prompt)
	assert.Empty(t, captured.Images)
}

func TestGenerateWithImage(t *testing.T) {
	var captured generatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{"response": "Parece una picadura."})
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "gemma3:4b")
	_, err := client.Generate(context.Background(), GenerateRequest{
		Prompt:      "¿Qué es esto?",
		ImageBase64: "aW1hZ2Vu",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"aW1hZ2Vu"}, captured.Images)
	// No system prompt: the user text goes out unwrapped.
	assert.Equal(t, "¿Qué es esto?", captured.Prompt)
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "gemma3:4b")
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "hola"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inference API error")
	assert.Contains(t, err.Error(), "model not found")
}

func TestGenerateMissingResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"done_reason": "stop"})
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "gemma3:4b")
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "hola"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response field")
}

func TestGenerateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "gemma3:4b")
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "hola"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed inference response")
}

func TestGenerateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewOllamaClient(srv.URL, "gemma3:4b")
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "hola"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inference endpoint unreachable")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "gemma3:4b")
	assert.True(t, client.Ping(context.Background()))

	down := NewOllamaClient("http://127.0.0.1:1", "gemma3:4b")
	assert.False(t, down.Ping(context.Background()))
}
