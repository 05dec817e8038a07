package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/zenmap/internal/provider"
)

func TestCheck_OpenAICompat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"id":"llama3"},{"id":"qwen2.5"}]}`))
	}))
	defer srv.Close()

	st := Check(context.Background(), provider.Settings{Name: "ollama", Type: provider.TypeOpenAI, BaseURL: srv.URL + "/v1"})
	assert.True(t, st.OK())
	assert.Equal(t, "ollama", st.Provider)
	assert.Equal(t, []string{"llama3", "qwen2.5"}, st.Models)
}

func TestCheck_Google(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "good" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"models/gemini-2.5-flash"}]}`))
	}))
	defer srv.Close()

	s := provider.Settings{Name: "google", Type: provider.TypeGoogle, BaseURL: srv.URL, APIKey: "good", Model: "gemini-2.5-flash"}
	st := Check(context.Background(), s)
	require.True(t, st.OK(), st.Error)
	assert.Equal(t, []string{"gemini-2.5-flash"}, st.Models)
	assert.NoError(t, CheckModel(context.Background(), s))

	s.Model = "gemini-ultra"
	assert.ErrorContains(t, CheckModel(context.Background(), s), "not found")

	s.APIKey = "bad"
	st = Check(context.Background(), s)
	assert.True(t, st.Reachable)
	assert.False(t, st.OK())
	assert.Contains(t, st.Error, "authentication failed")
}

func TestCheck_MissingKey(t *testing.T) {
	st := Check(context.Background(), provider.Settings{Type: provider.TypeGoogle})
	assert.False(t, st.Reachable)
	assert.Contains(t, st.Error, "GEMINI_API_KEY")
}

func TestCheck_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	st := Check(context.Background(), provider.Settings{Type: provider.TypeOpenAI, BaseURL: url})
	assert.False(t, st.Reachable)
	assert.Contains(t, st.Error, "cannot reach")
}

func TestCheck_UnknownType(t *testing.T) {
	st := Check(context.Background(), provider.Settings{Type: "carrier-pigeon"})
	assert.Contains(t, st.Error, "unknown provider type")
}
