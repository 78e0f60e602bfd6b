package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/resilkit/resilience"
)

func noBackoff(maxAttempts int) *resilience.RetryConfig {
	return &resilience.RetryConfig{
		MaxAttempts:    maxAttempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  1,
		RetryIf:        IsRetryable,
	}
}

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/ping" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.Get(context.Background(), "/v1/ping")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestPostEncodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.Post(context.Background(), "/v1/orders", map[string]int{"qty": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, Retry: noBackoff(3)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, Retry: noBackoff(3)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Get(context.Background(), "/missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, resilience.ErrNonRetryable) {
		t.Errorf("expected non-retryable classification, got %v", err)
	}
	var httpErr *Error
	if !errors.As(err, &httpErr) || httpErr.Code != ErrCodeNotFound {
		t.Errorf("expected not_found error, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
}

func TestCircuitOpensOnRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := New(Config{
		BaseURL: srv.URL,
		CircuitBreaker: &resilience.CircuitBreakerConfig{
			FailureThreshold: 2,
			BreakDuration:    time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		client.Get(ctx, "/")
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 requests before opening, got %d", got)
	}

	_, err = client.Get(ctx, "/")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected open circuit to skip the server, got %d requests", got)
	}
	if client.Breaker().State() != resilience.StateOpen {
		t.Errorf("expected open breaker, got %s", client.Breaker().State())
	}
}

func TestClientTimeoutTripsBreaker(t *testing.T) {
	var calls atomic.Int32
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client, err := New(Config{
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
		CircuitBreaker: &resilience.CircuitBreakerConfig{
			FailureThreshold: 1,
			BreakDuration:    time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// The client's own timeout error wraps context.DeadlineExceeded, but the
	// caller never cancelled: the breaker must count it as a failure.
	_, err = client.Get(context.Background(), "/")
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if errors.Is(err, context.Canceled) {
		t.Errorf("expected a dependency failure, got cancellation: %v", err)
	}
	var httpErr *Error
	if !errors.As(err, &httpErr) || httpErr.Code != ErrCodeTimeout {
		t.Errorf("expected a timeout classification, got %v", err)
	}
	if got := client.Breaker().Failures(); got != 1 {
		t.Errorf("expected the timeout to count as 1 failure, got %d", got)
	}
	if client.Breaker().State() != resilience.StateOpen {
		t.Fatalf("expected open breaker after timeout, got %s", client.Breaker().State())
	}

	_, err = client.Get(context.Background(), "/")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected open circuit to skip the server, got %d requests", got)
	}
}

func TestRetrySequenceCountsOnceTowardBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := New(Config{
		BaseURL: srv.URL,
		Retry:   noBackoff(3),
		CircuitBreaker: &resilience.CircuitBreakerConfig{
			FailureThreshold: 2,
			BreakDuration:    time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	client.Get(context.Background(), "/")
	if got := client.Breaker().Failures(); got != 1 {
		t.Errorf("expected 3 attempts to count as 1 failure, got %d", got)
	}
	if client.Breaker().State() != resilience.StateClosed {
		t.Errorf("expected breaker still closed, got %s", client.Breaker().State())
	}
}

func TestFallbackSubstitutesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cached := &Response{StatusCode: http.StatusOK, Body: []byte(`{"cached":true}`)}
	client, err := New(Config{
		BaseURL:  srv.URL,
		Fallback: resilience.StaticFallback(cached),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != cached {
		t.Errorf("expected cached fallback response, got %+v", resp)
	}
}

func TestCancellationPropagates(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client, err := New(Config{
		BaseURL:  srv.URL,
		Retry:    noBackoff(3),
		Fallback: resilience.StaticFallback(&Response{StatusCode: http.StatusOK}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded without fallback, got %v", err)
	}
}

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{401, ErrCodeAuth, false},
		{403, ErrCodeAuth, false},
		{404, ErrCodeNotFound, false},
		{422, ErrCodeValidation, false},
		{429, ErrCodeRateLimit, true},
		{500, ErrCodeServer, true},
		{503, ErrCodeServer, true},
	}

	for _, tc := range tests {
		e := ClassifyStatusCode(tc.status, nil)
		if e == nil {
			t.Fatalf("expected error for %d", tc.status)
		}
		if e.Code != tc.code {
			t.Errorf("status %d: expected code %s, got %s", tc.status, tc.code, e.Code)
		}
		if e.Retryable != tc.retryable {
			t.Errorf("status %d: expected retryable=%v", tc.status, tc.retryable)
		}
	}

	if ClassifyStatusCode(200, nil) != nil {
		t.Error("expected nil for 200")
	}
	if ClassifyStatusCode(204, nil) != nil {
		t.Error("expected nil for 204")
	}
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{Retry: &resilience.RetryConfig{MaxAttempts: -2}})
	if err == nil {
		t.Error("expected error for invalid retry config")
	}

	_, err = New(Config{CircuitBreaker: &resilience.CircuitBreakerConfig{BreakDuration: -time.Second}})
	if err == nil {
		t.Error("expected error for invalid breaker config")
	}
}
