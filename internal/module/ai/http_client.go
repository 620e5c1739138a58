package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	cfg "github.com/journey-app/server/internal/shared/config"
)

// HTTPClient talks to a Gemini-style generateContent endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *zap.Logger
}

// NewHTTPClient creates an LLM client from configuration.
func NewHTTPClient(c *cfg.LLMConfig, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(c.BaseURL, "/"),
		apiKey:  c.APIKey,
		model:   c.Model,
		http:    &http.Client{Timeout: c.Timeout},
		logger:  logger,
	}
}

const planPrompt = `You are a coaching assistant. Given a challenge description,
produce a short ordered plan. Respond with a JSON object only:
{"steps": ["...", "..."]}

Challenge description:
%s`

const kpiPrompt = `You are a coaching assistant. Given a challenge name and its
plan steps, propose how to measure success. Respond with a JSON object only:
{"description": "...", "metrics": {"metric_name": "how to measure"}}

Challenge: %s
Plan steps:
%s`

const weeklyPrompt = `You are a coaching assistant. Summarize the week's
retrospectives. Respond with a JSON object only:
{"summary": {"highlights": "...", "struggles": "...", "advice": "..."},
 "weekly_kpi": 0-100}

Retrospectives:
%s`

// GeneratePlan turns a challenge description into ordered plan steps.
func (c *HTTPClient) GeneratePlan(ctx context.Context, description string) ([]string, error) {
	text, err := c.generate(ctx, fmt.Sprintf(planPrompt, description))
	if err != nil {
		return nil, err
	}

	var out struct {
		Steps []string `json:"steps"`
	}
	if err := decodeModelJSON(text, &out); err != nil {
		return nil, err
	}
	if len(out.Steps) == 0 {
		return nil, fmt.Errorf("%w: empty plan", ErrBadResponse)
	}
	return out.Steps, nil
}

// GenerateKPI proposes a KPI description and metrics for a challenge.
func (c *HTTPClient) GenerateKPI(ctx context.Context, name string, steps []string) (string, map[string]string, error) {
	text, err := c.generate(ctx, fmt.Sprintf(kpiPrompt, name, strings.Join(steps, "\n")))
	if err != nil {
		return "", nil, err
	}

	var out struct {
		Description string            `json:"description"`
		Metrics     map[string]string `json:"metrics"`
	}
	if err := decodeModelJSON(text, &out); err != nil {
		return "", nil, err
	}
	if out.Description == "" {
		return "", nil, fmt.Errorf("%w: empty kpi description", ErrBadResponse)
	}
	return out.Description, out.Metrics, nil
}

// GenerateWeeklySummary condenses a week of retrospective contents.
func (c *HTTPClient) GenerateWeeklySummary(ctx context.Context, retrospects []string) (*WeeklySummary, error) {
	text, err := c.generate(ctx, fmt.Sprintf(weeklyPrompt, strings.Join(retrospects, "\n---\n")))
	if err != nil {
		return nil, err
	}

	var out WeeklySummary
	if err := decodeModelJSON(text, &out); err != nil {
		return nil, err
	}
	if len(out.Summary) == 0 {
		return nil, fmt.Errorf("%w: empty summary", ErrBadResponse)
	}
	return &out, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate performs one generateContent call and returns the raw model
// text.
func (c *HTTPClient) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("llm request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload))
		return "", fmt.Errorf("llm status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrBadResponse)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// decodeModelJSON parses the JSON object embedded in model output,
// tolerating surrounding prose and markdown fences.
func decodeModelJSON(text string, v any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("%w: no json object", ErrBadResponse)
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}
