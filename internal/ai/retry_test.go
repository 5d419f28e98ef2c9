package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:            2,
		InitialBackoff:        time.Millisecond,
		MaxBackoff:            5 * time.Millisecond,
		BackoffMultiplier:     2.0,
		CircuitBreakerEnabled: true,
		FailureThreshold:      3,
		SuccessThreshold:      1,
		OpenTimeout:           time.Hour,
		MaxConcurrentCalls:    1,
	}
}

func TestIsRetriableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"rate limited", errors.New("HTTP 429: rate limit exceeded"), true},
		{"overloaded", errors.New("overloaded_error"), true},
		{"server error", errors.New("503 service unavailable"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"bad request", errors.New("400 bad request"), false},
		{"auth", errors.New("401 invalid api key"), false},
		{"unknown", errors.New("something odd"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetriableError(tt.err))
		})
	}
}

func TestCircuitBreaker_Transitions(t *testing.T) {
	cb := NewCircuitBreaker(2, 1, 10*time.Millisecond)
	require.Equal(t, CircuitClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrCircuitOpen)

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 2, time.Millisecond)
	cb.RecordFailure()
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "CLOSED", CircuitClosed.String())
	assert.Equal(t, "OPEN", CircuitOpen.String())
	assert.Equal(t, "HALF_OPEN", CircuitHalfOpen.String())
	assert.Equal(t, "UNKNOWN", CircuitState(42).String())
}

func TestCallPolicy_RetriesTransientErrors(t *testing.T) {
	p := newCallPolicy(fastRetryConfig())

	calls := 0
	err := p.do(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("503 service unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestCallPolicy_StopsOnPermanentError(t *testing.T) {
	p := newCallPolicy(fastRetryConfig())

	calls := 0
	permanent := errors.New("400 bad request")
	err := p.do(context.Background(), "test", func(context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestCallPolicy_ExhaustsRetries(t *testing.T) {
	p := newCallPolicy(fastRetryConfig())

	calls := 0
	err := p.do(context.Background(), "narrate", func(context.Context) error {
		calls++
		return errors.New("429 rate limit")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "narrate failed after 3 attempts")
	assert.Equal(t, 3, calls)
	assert.Equal(t, CircuitOpen, p.circuitBreaker.State())

	err = p.do(context.Background(), "narrate", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCallPolicy_CanceledContext(t *testing.T) {
	p := newCallPolicy(fastRetryConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.do(ctx, "test", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCallPolicy_Defaults(t *testing.T) {
	p := newCallPolicy(RetryConfig{})

	assert.Equal(t, DefaultRetryConfig().MaxRetries, p.retry.MaxRetries)
	assert.NotNil(t, p.circuitBreaker)
	assert.NotNil(t, p.concurrencySem)
	assert.Nil(t, p.limiter)

	p = newCallPolicy(RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond, RequestsPerSecond: 5})
	assert.NotNil(t, p.limiter)
	assert.Nil(t, p.circuitBreaker)
}

func TestCallPolicy_PermanentErrorsKeepCircuitClosed(t *testing.T) {
	p := newCallPolicy(fastRetryConfig())

	for i := 0; i < 5; i++ {
		err := p.do(context.Background(), "narrate", func(context.Context) error {
			return errors.New("401 invalid api key")
		})
		require.Error(t, err)
	}
	assert.Equal(t, CircuitClosed, p.circuitBreaker.State())
}
