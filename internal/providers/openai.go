package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName = "openai"

	// DefaultMaxRetries is the shared attempt ceiling for all failure classes.
	DefaultMaxRetries = 10
	// DefaultRetryDelay is the base delay between attempts.
	DefaultRetryDelay = time.Second
	// maxBackoff caps exponential backoff on rate-limit failures.
	maxBackoff = 10 * time.Second
)

// OpenAIConfig holds configuration for the OpenAI-compatible client.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string // optional, for OpenAI-compatible endpoints
	DefaultModel string
	Timeout      time.Duration

	// Retry policy, created per client rather than shared state.
	MaxRetries int
	RetryDelay time.Duration

	// Limiter is the shared concurrency gate. Required for concurrent use;
	// a nil limiter means calls go out unpaced.
	Limiter *RateLimiter

	Logger *slog.Logger
}

// OpenAIClient implements Client against any OpenAI-compatible completion API.
type OpenAIClient struct {
	client       openai.Client
	defaultModel string
	maxRetries   int
	retryDelay   time.Duration
	limiter      *RateLimiter
	logger       *slog.Logger
}

// NewOpenAIClient creates a new client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		// Retries are handled here with class-dependent backoff, not by the SDK.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client:       openai.NewClient(opts...),
		defaultModel: cfg.DefaultModel,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		limiter:      cfg.Limiter,
		logger:       cfg.Logger,
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Chat sends a request and returns the model's text content.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	content, _, err := c.do(ctx, req)
	return content, err
}

// ChatWithReason sends a request and additionally reports whether the
// completion finished or hit the output limit.
func (c *OpenAIClient) ChatWithReason(ctx context.Context, req *ChatRequest) (string, string, error) {
	return c.do(ctx, req)
}

func (c *OpenAIClient) do(ctx context.Context, req *ChatRequest) (string, string, error) {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	// Append the new user turn to a copy of the history; the caller's
	// slice stays untouched.
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+1)
	for _, m := range req.History {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	var content, reason string
	err := retry.Do(
		func() error {
			if c.limiter != nil {
				if err := c.limiter.Acquire(ctx); err != nil {
					return retry.Unrecoverable(err)
				}
				defer c.limiter.Release()
			}

			resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
				Model:       openai.ChatModel(model),
				Messages:    messages,
				Temperature: openai.Float(0),
			})
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("no choices in response")
			}

			content = resp.Choices[0].Message.Content
			if resp.Choices[0].FinishReason == "length" {
				reason = ReasonMaxOutput
			} else {
				reason = ReasonFinished
			}
			return nil
		},
		retry.Attempts(uint(c.maxRetries)),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.DelayType(c.backoff),
		retry.OnRetry(func(n uint, err error) {
			if isRateLimit(err) {
				c.logger.Warn("rate limit hit, backing off",
					"attempt", n+1,
					"max_attempts", c.maxRetries,
					"request_id", requestID)
			} else {
				c.logger.Warn("model call failed, retrying",
					"attempt", n+1,
					"max_attempts", c.maxRetries,
					"request_id", requestID,
					"error", err)
			}
		}),
	)
	if err != nil {
		return "", "", fmt.Errorf("model call %s failed after %d attempts: %w", requestID, c.maxRetries, err)
	}

	return content, reason, nil
}

// backoff selects the delay before the next attempt: rate-limit failures
// back off exponentially (base * 2^attempt, capped), anything else waits the
// fixed base delay.
func (c *OpenAIClient) backoff(n uint, err error, _ *retry.Config) time.Duration {
	if isRateLimit(err) {
		delay := c.retryDelay << n
		if delay > maxBackoff || delay <= 0 {
			delay = maxBackoff
		}
		return delay
	}
	return c.retryDelay
}

// isRateLimit reports whether err is a rate-limit-class API failure.
func isRateLimit(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// Verify interface
var _ Client = (*OpenAIClient)(nil)
