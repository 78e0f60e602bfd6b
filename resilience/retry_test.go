package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	cfg := DefaultRetryConfig()
	callCount := 0

	result, err := Retry(context.Background(), cfg, func(context.Context) (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestRetry_SucceedsAfterFailure(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2.0,
	}
	callCount := 0

	result, err := Retry(context.Background(), cfg, func(context.Context) (string, error) {
		callCount++
		if callCount < 2 {
			return "", errors.New("temporary error")
		}
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 2 {
		t.Errorf("expected 2 calls, got %d", callCount)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	testErr := errors.New("persistent error")

	for _, maxAttempts := range []int{1, 2, 3, 5} {
		callCount := 0
		cfg := RetryConfig{
			MaxAttempts:    maxAttempts,
			InitialBackoff: time.Millisecond,
			BackoffFactor:  2.0,
		}

		_, err := Retry(context.Background(), cfg, func(context.Context) (string, error) {
			callCount++
			return "", testErr
		})

		if !errors.Is(err, ErrRetriesExhausted) {
			t.Errorf("maxAttempts=%d: expected ErrRetriesExhausted, got %v", maxAttempts, err)
		}
		if !errors.Is(err, testErr) {
			t.Errorf("maxAttempts=%d: expected error to wrap testErr, got %v", maxAttempts, err)
		}
		if callCount != maxAttempts {
			t.Errorf("maxAttempts=%d: expected %d calls, got %d", maxAttempts, maxAttempts, callCount)
		}
	}
}

func TestRetry_NonRetryableShortCircuits(t *testing.T) {
	nonRetryableErr := errors.New("bad request")
	cfg := RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2.0,
		RetryIf: func(err error) bool {
			return !errors.Is(err, nonRetryableErr)
		},
	}

	callCount := 0
	_, err := Retry(context.Background(), cfg, func(context.Context) (string, error) {
		callCount++
		return "", nonRetryableErr
	})

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if !errors.Is(err, ErrNonRetryable) {
		t.Errorf("expected ErrNonRetryable, got %v", err)
	}
	if !errors.Is(err, nonRetryableErr) {
		t.Errorf("expected error to wrap the cause, got %v", err)
	}
}

func TestRetry_CancellationStopsBackoffWait(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    10,
		InitialBackoff: time.Hour, // only cancellation can end the wait in time
		BackoffFactor:  2.0,
	}

	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0

	done := make(chan error, 1)
	go func() {
		_, err := Retry(ctx, cfg, func(context.Context) (string, error) {
			callCount++
			return "", errors.New("error")
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("retry did not stop promptly after cancellation")
	}

	if callCount != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", callCount)
	}
}

func TestRetry_AttemptTimeout(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2.0,
		AttemptTimeout: 20 * time.Millisecond,
	}

	callCount := 0
	_, err := Retry(context.Background(), cfg, func(ctx context.Context) (string, error) {
		callCount++
		<-ctx.Done()
		return "", ctx.Err()
	})

	if callCount != 2 {
		t.Errorf("expected attempt timeouts to be retried, got %d calls", callCount)
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("expected ErrRetriesExhausted, got %v", err)
	}
	if !errors.Is(err, ErrAttemptTimeout) {
		t.Errorf("expected error to wrap ErrAttemptTimeout, got %v", err)
	}
}

func TestRetry_AttemptTimeoutIsNotCancellation(t *testing.T) {
	err := errors.New("wrapped")
	timeoutErr := runAttemptTimeoutError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if IsCancelled(ctx, timeoutErr) {
		t.Error("attempt timeout must not be classified as cancellation")
	}
	if !DefaultRetryIf(timeoutErr) {
		t.Error("attempt timeout should be retryable by default")
	}
}

func TestRetry_DependencyTimeoutIsRetriedByDefault(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2.0,
	}

	callCount := 0
	_, err := Retry(context.Background(), cfg, func(context.Context) (string, error) {
		callCount++
		return "", fmt.Errorf("Get \"http://dep\": %w", context.DeadlineExceeded)
	})

	if callCount != 3 {
		t.Errorf("expected a downstream timeout to be retried, got %d calls", callCount)
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("expected ErrRetriesExhausted, got %v", err)
	}
	if errors.Is(err, ErrNonRetryable) {
		t.Errorf("a downstream timeout must not be tagged non-retryable, got %v", err)
	}
}

func TestIsCancelled_RequiresCallerContextDone(t *testing.T) {
	depTimeout := fmt.Errorf("dial tcp: %w", context.DeadlineExceeded)

	if IsCancelled(context.Background(), depTimeout) {
		t.Error("a dependency-side timeout under a live context is not cancellation")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if !IsCancelled(ctx, ctx.Err()) {
		t.Error("a context error under a cancelled context is cancellation")
	}
	if !IsCancelled(ctx, fmt.Errorf("aborted: %w", context.Canceled)) {
		t.Error("a wrapped context error under a cancelled context is cancellation")
	}
}

// runAttemptTimeoutError produces a real ErrAttemptTimeout through runAttempt.
func runAttemptTimeoutError(t *testing.T, cause error) error {
	t.Helper()
	_, err := runAttempt(context.Background(), 5*time.Millisecond, func(ctx context.Context) (struct{}, error) {
		<-ctx.Done()
		return struct{}{}, cause
	})
	if err == nil {
		t.Fatal("expected an error from the timed-out attempt")
	}
	return err
}

func TestRetry_OnRetryAndOnAttemptHooks(t *testing.T) {
	var attempts, retries []int

	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2.0,
		OnAttempt: func(attempt int, err error) {
			attempts = append(attempts, attempt)
		},
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			retries = append(retries, attempt)
		},
	}

	_, _ = Retry(context.Background(), cfg, func(context.Context) (string, error) {
		return "", errors.New("error")
	})

	// OnAttempt fires for every failed attempt, OnRetry only when another
	// attempt follows.
	if len(attempts) != 3 {
		t.Errorf("expected 3 OnAttempt calls, got %d", len(attempts))
	}
	if len(retries) != 2 {
		t.Errorf("expected 2 OnRetry calls, got %d", len(retries))
	}
	if len(retries) == 2 && (retries[0] != 1 || retries[1] != 2) {
		t.Errorf("expected retries after attempts [1, 2], got %v", retries)
	}
}

func TestRetryFunc(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2.0,
	}
	callCount := 0

	err := RetryFunc(context.Background(), cfg, func(context.Context) error {
		callCount++
		if callCount < 2 {
			return errors.New("error")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if callCount != 2 {
		t.Errorf("expected 2 calls, got %d", callCount)
	}
}

func TestRetryConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RetryConfig
		wantErr bool
	}{
		{"valid", RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Second, BackoffFactor: 2.0}, false},
		{"single attempt", RetryConfig{MaxAttempts: 1, BackoffFactor: 1.0}, false},
		{"zero attempts", RetryConfig{MaxAttempts: 0, BackoffFactor: 2.0}, true},
		{"negative attempts", RetryConfig{MaxAttempts: -1, BackoffFactor: 2.0}, true},
		{"negative backoff", RetryConfig{MaxAttempts: 3, InitialBackoff: -time.Second, BackoffFactor: 2.0}, true},
		{"negative max backoff", RetryConfig{MaxAttempts: 3, MaxBackoff: -time.Second, BackoffFactor: 2.0}, true},
		{"factor below one", RetryConfig{MaxAttempts: 3, BackoffFactor: 0.5}, true},
		{"jitter above one", RetryConfig{MaxAttempts: 3, BackoffFactor: 2.0, Jitter: 1.5}, true},
		{"negative attempt timeout", RetryConfig{MaxAttempts: 3, BackoffFactor: 2.0, AttemptTimeout: -time.Second}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBackoffFor(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
		Jitter:         0, // deterministic
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second}, // capped
		{6, time.Second},
	}

	for _, tt := range tests {
		got := backoffFor(tt.attempt, cfg)
		if got != tt.expected {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}
