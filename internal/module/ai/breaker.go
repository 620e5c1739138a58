package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/journey-app/server/internal/shared/metrics"
)

// BreakerClient wraps a Client with a circuit breaker. While the breaker
// is open every call fails fast with ErrUnavailable.
type BreakerClient struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker[any]
	metrics *metrics.Metrics
}

// BreakerConfig tunes the circuit breaker.
type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

// DefaultBreakerConfig returns the default breaker configuration.
func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
	}
}

// NewBreakerClient wraps a client with a circuit breaker.
func NewBreakerClient(inner Client, config *BreakerConfig, m *metrics.Metrics) *BreakerClient {
	if config == nil {
		config = DefaultBreakerConfig()
	}
	threshold := config.FailureThreshold
	if threshold == 0 {
		threshold = DefaultBreakerConfig().FailureThreshold
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultBreakerConfig().Timeout
	}

	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}

	return &BreakerClient{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		metrics: m,
	}
}

func (c *BreakerClient) GeneratePlan(ctx context.Context, description string) ([]string, error) {
	result, err := c.execute(ctx, "generate_plan", func() (any, error) {
		return c.inner.GeneratePlan(ctx, description)
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (c *BreakerClient) GenerateKPI(ctx context.Context, name string, steps []string) (string, map[string]string, error) {
	type kpi struct {
		description string
		metrics     map[string]string
	}
	result, err := c.execute(ctx, "generate_kpi", func() (any, error) {
		description, metrics, err := c.inner.GenerateKPI(ctx, name, steps)
		if err != nil {
			return nil, err
		}
		return kpi{description: description, metrics: metrics}, nil
	})
	if err != nil {
		return "", nil, err
	}
	out := result.(kpi)
	return out.description, out.metrics, nil
}

func (c *BreakerClient) GenerateWeeklySummary(ctx context.Context, retrospects []string) (*WeeklySummary, error) {
	result, err := c.execute(ctx, "weekly_summary", func() (any, error) {
		return c.inner.GenerateWeeklySummary(ctx, retrospects)
	})
	if err != nil {
		return nil, err
	}
	return result.(*WeeklySummary), nil
}

func (c *BreakerClient) execute(_ context.Context, operation string, fn func() (any, error)) (any, error) {
	start := time.Now()
	result, err := c.breaker.Execute(fn)
	c.record(operation, err, time.Since(start))

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	return result, err
}

func (c *BreakerClient) record(operation string, err error, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordLLMRequest(operation, status, duration)
}
