package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfg "github.com/journey-app/server/internal/shared/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(&cfg.LLMConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "gemini-2.0-flash-lite",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func modelText(text string) []byte {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return body
}

func TestGeneratePlan(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash-lite:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write(modelText(`{"steps": ["stretch", "run 5k", "cool down"]}`))
	})

	steps, err := client.GeneratePlan(context.Background(), "run a 10k in 8 weeks")
	require.NoError(t, err)
	assert.Equal(t, []string{"stretch", "run 5k", "cool down"}, steps)
}

func TestGeneratePlanToleratesFencedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(modelText("Here is the plan:\n```json\n{\"steps\": [\"a\"]}\n```"))
	})

	steps, err := client.GeneratePlan(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, steps)
}

func TestGenerateKPI(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(modelText(`{"description": "run distance", "metrics": {"distance_km": "weekly total"}}`))
	})

	description, metrics, err := client.GenerateKPI(context.Background(), "10k", []string{"run 5k"})
	require.NoError(t, err)
	assert.Equal(t, "run distance", description)
	assert.Equal(t, "weekly total", metrics["distance_km"])
}

func TestGenerateWeeklySummary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(modelText(`{"summary": {"highlights": "consistent"}, "weekly_kpi": 80}`))
	})

	summary, err := client.GenerateWeeklySummary(context.Background(), []string{"ran daily"})
	require.NoError(t, err)
	assert.Equal(t, "consistent", summary.Summary["highlights"])
	require.NotNil(t, summary.WeeklyKPI)
	assert.Equal(t, 80, *summary.WeeklyKPI)
}

func TestGenerateErrors(t *testing.T) {
	t.Run("upstream error status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := client.GeneratePlan(context.Background(), "x")
		assert.Error(t, err)
	})

	t.Run("no json in output", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write(modelText("sorry, I cannot help with that"))
		})
		_, err := client.GeneratePlan(context.Background(), "x")
		assert.ErrorIs(t, err, ErrBadResponse)
	})

	t.Run("no candidates", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"candidates": []}`))
		})
		_, err := client.GeneratePlan(context.Background(), "x")
		assert.ErrorIs(t, err, ErrBadResponse)
	})
}
