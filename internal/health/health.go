// Package health checks the configured AI provider for the doctor command.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jeanpaul/zenmap/internal/provider"
)

const (
	googleBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	anthropicBaseURL = "https://api.anthropic.com"
)

type Status struct {
	Provider  string
	BaseURL   string
	Reachable bool
	Models    []string
	Error     string
	Latency   time.Duration
}

// OK reports whether the endpoint answered and accepted the credentials.
func (s Status) OK() bool { return s.Reachable && s.Error == "" }

// Check lists the models of the provider described by s. It never returns
// an error; problems are reported in Status.Error.
func Check(ctx context.Context, s provider.Settings) Status {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	start := time.Now()
	var st Status
	switch s.Type {
	case provider.TypeOpenAI:
		st = checkOpenAICompat(ctx, s.BaseURL, s.APIKey)
	case provider.TypeGoogle:
		st = checkGoogle(ctx, orDefault(s.BaseURL, googleBaseURL), s.APIKey)
	case provider.TypeAnthropic:
		st = checkAnthropic(ctx, orDefault(s.BaseURL, anthropicBaseURL), s.APIKey)
	default:
		st.Error = fmt.Sprintf("unknown provider type: %s", s.Type)
	}
	st.Provider = s.Name
	st.Latency = time.Since(start)
	return st
}

// CheckModel verifies that model is listed by the provider. Endpoints
// that list nothing are given the benefit of the doubt.
func CheckModel(ctx context.Context, s provider.Settings) error {
	st := Check(ctx, s)
	if !st.OK() {
		return fmt.Errorf("provider not reachable: %s", st.Error)
	}
	if len(st.Models) == 0 || s.Model == "" {
		return nil
	}
	for _, m := range st.Models {
		if m == s.Model || strings.TrimPrefix(m, "models/") == s.Model {
			return nil
		}
	}
	return fmt.Errorf("model %q not found, available: %s", s.Model, strings.Join(st.Models, ", "))
}

func checkOpenAICompat(ctx context.Context, baseURL, apiKey string) Status {
	s := Status{BaseURL: baseURL}
	if baseURL == "" {
		s.Error = "no base_url configured"
		return s
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/models", nil)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	var result struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if !fetch(req, &s, &result) {
		return s
	}
	for _, m := range result.Data {
		s.Models = append(s.Models, m.ID)
	}
	return s
}

func checkGoogle(ctx context.Context, baseURL, apiKey string) Status {
	s := Status{BaseURL: baseURL}
	if apiKey == "" {
		s.Error = "no API key configured (set GEMINI_API_KEY)"
		return s
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/models?pageSize=100", nil)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	req.Header.Set("x-goog-api-key", apiKey)

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if !fetch(req, &s, &result) {
		return s
	}
	for _, m := range result.Models {
		s.Models = append(s.Models, strings.TrimPrefix(m.Name, "models/"))
	}
	return s
}

func checkAnthropic(ctx context.Context, baseURL, apiKey string) Status {
	s := Status{BaseURL: baseURL}
	if apiKey == "" {
		s.Error = "no API key configured (set ANTHROPIC_API_KEY)"
		return s
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/v1/models", nil)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	var result struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if !fetch(req, &s, &result) {
		return s
	}
	for _, m := range result.Data {
		s.Models = append(s.Models, m.ID)
	}
	return s
}

// fetch runs req and decodes a JSON body into out. A reachable endpoint
// with an unexpected body still counts as reachable.
func fetch(req *http.Request, s *Status, out any) bool {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.Error = fmt.Sprintf("cannot reach %s: %s", s.BaseURL, friendlyError(err))
		return false
	}
	defer resp.Body.Close()
	s.Reachable = true

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		s.Error = "authentication failed, check your API key"
		return false
	case resp.StatusCode != http.StatusOK:
		s.Error = fmt.Sprintf("endpoint returned HTTP %d", resp.StatusCode)
		return false
	}
	_ = json.NewDecoder(resp.Body).Decode(out)
	return true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func friendlyError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "connection refused") {
		return "connection refused (is the service running?)"
	}
	if strings.Contains(msg, "no such host") {
		return "host not found (check the URL)"
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return "connection timed out"
	}
	return msg
}
