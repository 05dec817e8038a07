package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"label": map[string]any{"type": "string"},
		"children": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
	},
	"required":             []string{"label"},
	"additionalProperties": false,
}

func TestGoogle_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "organize these", req.Contents[0].Parts[0].Text)
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		assert.Equal(t, "OBJECT", req.GenerationConfig.ResponseSchema["type"])
		_, hasAP := req.GenerationConfig.ResponseSchema["additionalProperties"]
		assert.False(t, hasAP)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"label\":"},{"text":"\"Root\"}"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	p, err := New(Settings{Type: TypeGoogle, BaseURL: server.URL, APIKey: "secret", Model: "gemini-test"})
	require.NoError(t, err)

	out, err := p.Generate(context.Background(), Request{Prompt: "organize these", Schema: testSchema, MIMEType: "application/json"})
	require.NoError(t, err)
	assert.Equal(t, `{"label":"Root"}`, out)
}

func TestGoogle_NoCandidatesIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	p, _ := New(Settings{Type: TypeGoogle, BaseURL: server.URL, APIKey: "k"})
	out, err := p.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestGoogle_MissingKey(t *testing.T) {
	p := NewGoogle("", "")
	_, err := p.Generate(context.Background(), Request{Prompt: "x"})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestGoogle_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	p, _ := New(Settings{Type: TypeGoogle, BaseURL: server.URL, APIKey: "k"})
	_, err := p.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "Resource has been exhausted")
	assert.False(t, errors.Is(err, ErrNotConfigured))
}

func TestOpenAI_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req oaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_schema", req.ResponseFormat.Type)
		assert.Equal(t, "mind_map", req.ResponseFormat.JSONSchema.Name)

		w.Write([]byte(`{"choices":[{"message":{"content":"{\"label\":\"Root\"}"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	p := NewOpenAI("test", server.URL, "key", "model")
	out, err := p.Generate(context.Background(), Request{System: "be brief", Prompt: "x", Schema: testSchema})
	require.NoError(t, err)
	assert.Equal(t, `{"label":"Root"}`, out)
}

func TestOpenAI_EmptyBaseURL(t *testing.T) {
	p := NewOpenAI("ollama", "", "", "m")
	_, err := p.Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAnthropic_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.System, "JSON schema")

		w.Write([]byte(`{"content":[{"type":"text","text":"{\"label\":\"Root\"}"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	p, err := New(Settings{Type: TypeAnthropic, BaseURL: server.URL, APIKey: "k"})
	require.NoError(t, err)
	out, err := p.Generate(context.Background(), Request{Prompt: "x", Schema: testSchema})
	require.NoError(t, err)
	assert.Equal(t, `{"label":"Root"}`, out)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(Settings{Type: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestGeminiSchema_Nested(t *testing.T) {
	got := geminiSchema(testSchema)
	props := got["properties"].(map[string]any)
	assert.Equal(t, "STRING", props["label"].(map[string]any)["type"])
	children := props["children"].(map[string]any)
	assert.Equal(t, "ARRAY", children["type"])
	assert.Equal(t, "OBJECT", children["items"].(map[string]any)["type"])
	assert.Nil(t, geminiSchema(nil))
}

func TestParseProviderError(t *testing.T) {
	assert.Equal(t, "bad key", parseProviderError("google", 400, []byte(`{"error":{"message":"bad key"}}`)))
	assert.Contains(t, parseProviderError("google", 401, []byte("nope")), "API key")
	assert.Contains(t, parseProviderError("google", 418, []byte("teapot")), "HTTP 418")
}
