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

const googleBaseURL = "https://generativelanguage.googleapis.com"

type GoogleProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGoogle(apiKey, model string) *GoogleProvider {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GoogleProvider{apiKey: apiKey, model: model, baseURL: googleBaseURL, client: &http.Client{}}
}

func (g *GoogleProvider) Name() string { return "google" }

func (g *GoogleProvider) ModelName() string { return g.model }

type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

func (g *GoogleProvider) Generate(ctx context.Context, r Request) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("google: %w (set GEMINI_API_KEY or API_KEY)", ErrNotConfigured)
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: r.Prompt}}}},
	}
	if r.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: r.System}}}
	}
	if r.MIMEType != "" || r.Schema != nil {
		body.GenerationConfig = &geminiGenConfig{
			ResponseMimeType: r.MIMEType,
			ResponseSchema:   geminiSchema(r.Schema),
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	// Use header for API key instead of URL parameter
	apiURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google API error: %s", friendlyProviderError(err))
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("google: read response: %s", friendlyProviderError(err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google returned %d: %s", resp.StatusCode, parseProviderError("google", resp.StatusCode, b))
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return "", nil
	}

	var out geminiResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", fmt.Errorf("google: decode response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// geminiSchema rewrites a JSON-schema map into Gemini's OpenAPI subset:
// upper-case type names and no keywords the API rejects.
func geminiSchema(s map[string]any) map[string]any {
	if s == nil {
		return nil
	}
	out := make(map[string]any, len(s))
	for k, v := range s {
		switch k {
		case "$schema", "$ref", "definitions", "additionalProperties":
			continue
		case "type":
			if t, ok := v.(string); ok {
				out[k] = strings.ToUpper(t)
				continue
			}
		case "properties":
			if props, ok := v.(map[string]any); ok {
				conv := make(map[string]any, len(props))
				for name, p := range props {
					if pm, ok := p.(map[string]any); ok {
						conv[name] = geminiSchema(pm)
					}
				}
				out[k] = conv
				continue
			}
		case "items":
			if im, ok := v.(map[string]any); ok {
				out[k] = geminiSchema(im)
				continue
			}
		}
		out[k] = v
	}
	return out
}
