package providers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is a Client for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int64 // Fail after N requests (0 = never)
	ResponseText string
	Reason       string

	// Handler, when set, computes the response per request and overrides
	// ResponseText.
	Handler func(req *ChatRequest) (string, error)

	// Limiter, when set, gates requests like the real client.
	Limiter *RateLimiter

	// State
	requestCount atomic.Int64
}

// NewMockClient creates a mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Latency:      time.Millisecond,
		ResponseText: "mock response",
		Reason:       ReasonFinished,
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// RequestCount reports how many requests were issued.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Chat returns the configured response.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	content, _, err := c.ChatWithReason(ctx, req)
	return content, err
}

// ChatWithReason returns the configured response and reason.
func (c *MockClient) ChatWithReason(ctx context.Context, req *ChatRequest) (string, string, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Acquire(ctx); err != nil {
			return "", "", err
		}
		defer c.Limiter.Release()
	}

	count := c.requestCount.Add(1)

	select {
	case <-ctx.Done():
		return "", "", ctx.Err()
	case <-time.After(c.Latency):
	}

	if c.ShouldFail || (c.FailAfter > 0 && count > c.FailAfter) {
		return "", "", fmt.Errorf("mock failure on request %d", count)
	}

	if c.Handler != nil {
		content, err := c.Handler(req)
		if err != nil {
			return "", "", err
		}
		return content, c.reason(), nil
	}
	return c.ResponseText, c.reason(), nil
}

func (c *MockClient) reason() string {
	if c.Reason == "" {
		return ReasonFinished
	}
	return c.Reason
}

// Verify interface
var _ Client = (*MockClient)(nil)
