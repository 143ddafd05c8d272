package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(baseURL string, maxRetries int) *OpenAIClient {
	return NewOpenAIClient(OpenAIConfig{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		DefaultModel: "test-model",
		MaxRetries:   maxRetries,
		RetryDelay:   time.Millisecond,
	})
}

func TestOpenAIClientRetry(t *testing.T) {
	t.Run("exhausted retries surface the failure", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error": {"message": "backend exploded", "type": "server_error"}}`)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL+"/", 3)
		_, err := c.Chat(context.Background(), &ChatRequest{Prompt: "hello"})
		if err == nil {
			t.Fatal("expected error after exhausted retries")
		}
		if !strings.Contains(err.Error(), "failed after 3 attempts") {
			t.Errorf("error should report the attempt budget, got %v", err)
		}
		if calls.Load() != 3 {
			t.Errorf("server calls = %d, want 3", calls.Load())
		}
	})

	t.Run("rate limit then success", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"error": {"message": "slow down", "type": "rate_limit_error"}}`)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "ok"}, "finish_reason": "length"}]}`)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL+"/", 5)
		content, reason, err := c.ChatWithReason(context.Background(), &ChatRequest{Prompt: "hello"})
		if err != nil {
			t.Fatalf("ChatWithReason() error = %v", err)
		}
		if content != "ok" {
			t.Errorf("content = %q, want ok", content)
		}
		if reason != ReasonMaxOutput {
			t.Errorf("reason = %q, want %q", reason, ReasonMaxOutput)
		}
		if calls.Load() != 2 {
			t.Errorf("server calls = %d, want 2", calls.Load())
		}
	})

	t.Run("finished reason on clean completion", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "done"}, "finish_reason": "stop"}]}`)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL+"/", 3)
		content, reason, err := c.ChatWithReason(context.Background(), &ChatRequest{Prompt: "hello"})
		if err != nil {
			t.Fatalf("ChatWithReason() error = %v", err)
		}
		if content != "done" || reason != ReasonFinished {
			t.Errorf("got (%q, %q), want (done, %q)", content, reason, ReasonFinished)
		}
	})
}
