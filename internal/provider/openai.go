package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIProvider speaks the OpenAI chat-completions API, which Ollama, vLLM
// and OpenAI itself all serve.
type OpenAIProvider struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewOpenAI(name, baseURL, apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
	}
}

func (o *OpenAIProvider) Name() string { return o.name }

func (o *OpenAIProvider) ModelName() string { return o.model }

type oaiRequest struct {
	Model          string             `json:"model"`
	Messages       []oaiMessage       `json:"messages"`
	Stream         bool               `json:"stream"`
	ResponseFormat *oaiResponseFormat `json:"response_format,omitempty"`
	Options        map[string]any     `json:"options,omitempty"` // For Ollama-specific parameters
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiResponseFormat struct {
	Type       string         `json:"type"`
	JSONSchema *oaiJSONSchema `json:"json_schema,omitempty"`
}

type oaiJSONSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

type oaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (o *OpenAIProvider) Generate(ctx context.Context, r Request) (string, error) {
	if o.baseURL == "" {
		return "", fmt.Errorf("provider %s: %w (base_url is empty)", o.name, ErrNotConfigured)
	}

	var msgs []oaiMessage
	if r.System != "" {
		msgs = append(msgs, oaiMessage{Role: "system", Content: r.System})
	}
	msgs = append(msgs, oaiMessage{Role: "user", Content: r.Prompt})

	reqBody := oaiRequest{Model: o.model, Messages: msgs}
	switch {
	case r.Schema != nil:
		reqBody.ResponseFormat = &oaiResponseFormat{
			Type:       "json_schema",
			JSONSchema: &oaiJSONSchema{Name: "mind_map", Schema: r.Schema},
		}
	case r.MIMEType == "application/json":
		reqBody.ResponseFormat = &oaiResponseFormat{Type: "json_object"}
	}

	// Ollama defaults to a 2048 token context which truncates a large library.
	if strings.Contains(o.baseURL, "11434") || strings.Contains(o.baseURL, "localhost") {
		reqBody.Options = map[string]any{"num_ctx": 32768}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider %s: %s", o.name, friendlyProviderError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("provider %s: read response: %s", o.name, friendlyProviderError(err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider %s: %s", o.name, parseProviderError(o.name, resp.StatusCode, body))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	var out oaiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("provider %s: decode response: %w", o.name, err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
