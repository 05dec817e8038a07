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

const anthropicBaseURL = "https://api.anthropic.com"

type AnthropicProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewAnthropic(apiKey, model string) *AnthropicProvider {
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	return &AnthropicProvider{apiKey: apiKey, model: model, baseURL: anthropicBaseURL, client: &http.Client{}}
}

func (a *AnthropicProvider) Name() string { return "anthropic" }

func (a *AnthropicProvider) ModelName() string { return a.model }

type anthropicRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system,omitempty"`
	Messages  []anthropicMsg `json:"messages"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Generate has no native structured-output switch on this API, so the
// requested schema is spelled out in the system prompt.
func (a *AnthropicProvider) Generate(ctx context.Context, r Request) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("anthropic: %w (set ANTHROPIC_API_KEY)", ErrNotConfigured)
	}

	system := r.System
	if r.Schema != nil {
		shape, err := json.MarshalIndent(r.Schema, "", "  ")
		if err != nil {
			return "", err
		}
		if system != "" {
			system += "\n\n"
		}
		system += "Respond with a single JSON document and nothing else. It must match this JSON schema:\n" + string(shape)
	}

	payload, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: 8192,
		System:    system,
		Messages:  []anthropicMsg{{Role: "user", Content: r.Prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %s", friendlyProviderError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: read response: %s", friendlyProviderError(err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic returned %d: %s", resp.StatusCode, parseProviderError("anthropic", resp.StatusCode, body))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	var out anthropicResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}
	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
