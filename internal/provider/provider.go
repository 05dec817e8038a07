// Package provider talks to the generative-AI services zenmap can use to
// build a mind map. Every provider makes one non-streaming request that asks
// for a JSON document and returns the raw text of the answer.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when the credential or endpoint a provider
// needs was never supplied.
var ErrNotConfigured = errors.New("provider not configured")

// Request is a single structured-output call.
type Request struct {
	System string
	Prompt string
	// Schema is a JSON-schema map (lowercase type names) describing the
	// document the service should answer with. Providers translate it into
	// their own structured-output dialect.
	Schema   map[string]any
	MIMEType string
}

type Provider interface {
	Name() string
	ModelName() string
	// Generate returns the text of the answer. An answer with no text is
	// returned as "" and a nil error.
	Generate(ctx context.Context, req Request) (string, error)
}

// Settings describe one configured provider.
type Settings struct {
	Name    string
	Type    string // google, openai or anthropic
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

const (
	TypeGoogle    = "google"
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
)

// New builds the provider described by s.
func New(s Settings) (Provider, error) {
	client := &http.Client{Timeout: s.Timeout}
	switch s.Type {
	case TypeGoogle:
		p := NewGoogle(s.APIKey, s.Model)
		p.client = client
		if s.BaseURL != "" {
			p.baseURL = strings.TrimRight(s.BaseURL, "/")
		}
		return p, nil
	case TypeOpenAI:
		p := NewOpenAI(s.Name, s.BaseURL, s.APIKey, s.Model)
		p.client = client
		return p, nil
	case TypeAnthropic:
		p := NewAnthropic(s.APIKey, s.Model)
		p.client = client
		if s.BaseURL != "" {
			p.baseURL = strings.TrimRight(s.BaseURL, "/")
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", s.Type)
	}
}
