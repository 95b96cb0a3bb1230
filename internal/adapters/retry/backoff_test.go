package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"connection refused", &net.OpError{Err: syscall.ECONNREFUSED}, true},
		{"connection reset", &net.OpError{Err: syscall.ECONNRESET}, true},
		{"broken pipe", &net.OpError{Err: syscall.EPIPE}, true},
		{"dns not found", &net.DNSError{IsNotFound: true}, false},
		{"dns temporary", &net.DNSError{IsTemporary: true}, true},
		{"rate limited", &StatusError{StatusCode: http.StatusTooManyRequests}, true},
		{"server error", &StatusError{StatusCode: http.StatusBadGateway}, true},
		{"bad request", &StatusError{StatusCode: http.StatusBadRequest}, false},
		{"unauthorized", &StatusError{StatusCode: http.StatusUnauthorized}, false},
		{"generic error", errors.New("some error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	for code, want := range map[int]bool{
		http.StatusOK:                  false,
		http.StatusBadRequest:          false,
		http.StatusNotFound:            false,
		http.StatusRequestTimeout:      true,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusServiceUnavailable:  true,
	} {
		assert.Equal(t, want, IsRetryableHTTPStatus(code), "status %d", code)
	}
}

// recordingPolicy returns a policy whose sleeps are captured instead of waited.
func recordingPolicy(retries int, waits *[]time.Duration) Policy {
	p := DefaultPolicy()
	p.MaxRetries = retries
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
	return p
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	var waits []time.Duration
	calls := 0

	err := Do(context.Background(), recordingPolicy(3, &waits), func(int) error {
		calls++
		if calls < 3 {
			return &StatusError{StatusCode: http.StatusServiceUnavailable}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	var waits []time.Duration
	calls := 0
	want := &StatusError{Service: "gemini", StatusCode: http.StatusBadRequest}

	err := Do(context.Background(), recordingPolicy(3, &waits), func(int) error {
		calls++
		return want
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, waits)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	var waits []time.Duration
	calls := 0

	err := Do(context.Background(), recordingPolicy(2, &waits), func(attempt int) error {
		assert.Equal(t, calls, attempt)
		calls++
		return &StatusError{StatusCode: http.StatusTooManyRequests}
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, waits, 2)
	assert.Contains(t, err.Error(), "max retries (2) exceeded")
	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr)
}

func TestDo_HonoursRetryAfterWithinCap(t *testing.T) {
	var waits []time.Duration
	p := recordingPolicy(2, &waits)
	p.MaxInterval = 10 * time.Second
	calls := 0

	_ = Do(context.Background(), p, func(int) error {
		calls++
		if calls == 1 {
			return &StatusError{StatusCode: http.StatusTooManyRequests, RetryAfter: 5 * time.Second}
		}
		return &StatusError{StatusCode: http.StatusTooManyRequests, RetryAfter: time.Minute}
	})

	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, waits)
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := DefaultPolicy()
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := Do(ctx, p, func(int) error {
		return &StatusError{StatusCode: http.StatusBadGateway}
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStatusError(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	resp.Header.Set("Retry-After", "7")

	err := NewStatusError("twilio", resp, []byte(`{"message":"slow down"}`))
	assert.Equal(t, 7*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "twilio returned status 429")
	assert.Contains(t, err.Error(), "slow down")
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
