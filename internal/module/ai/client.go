package ai

import (
	"context"
	"errors"
)

// AI module errors.
var (
	// ErrDisabled is returned when no LLM endpoint is configured.
	ErrDisabled = errors.New("llm client disabled")

	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("llm temporarily unavailable")

	// ErrBadResponse is returned when the model output cannot be parsed.
	ErrBadResponse = errors.New("unparseable llm response")
)

// WeeklySummary is the structured output of a weekly retrospective
// analysis.
type WeeklySummary struct {
	Summary   map[string]any `json:"summary"`
	WeeklyKPI *int           `json:"weekly_kpi,omitempty"`
}

// Client is the LLM collaborator used for challenge planning and weekly
// retrospective analysis. Callers treat every error as non-fatal and
// never retry.
type Client interface {
	// GeneratePlan turns a challenge description into ordered plan steps.
	GeneratePlan(ctx context.Context, description string) ([]string, error)

	// GenerateKPI proposes a KPI description and structured metrics for
	// a challenge and its plan.
	GenerateKPI(ctx context.Context, name string, steps []string) (string, map[string]string, error)

	// GenerateWeeklySummary condenses a week of retrospective contents.
	GenerateWeeklySummary(ctx context.Context, retrospects []string) (*WeeklySummary, error)
}

// Disabled returns a client whose calls all fail with ErrDisabled.
// Used when no LLM endpoint is configured.
func Disabled() Client {
	return disabledClient{}
}

type disabledClient struct{}

func (disabledClient) GeneratePlan(context.Context, string) ([]string, error) {
	return nil, ErrDisabled
}

func (disabledClient) GenerateKPI(context.Context, string, []string) (string, map[string]string, error) {
	return "", nil, ErrDisabled
}

func (disabledClient) GenerateWeeklySummary(context.Context, []string) (*WeeklySummary, error) {
	return nil, ErrDisabled
}
