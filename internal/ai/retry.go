package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RetryConfig holds retry configuration for model calls.
type RetryConfig struct {
	MaxRetries        int           // Maximum number of retries (default: 3)
	InitialBackoff    time.Duration // Initial backoff duration (default: 1s)
	MaxBackoff        time.Duration // Maximum backoff duration (default: 30s)
	BackoffMultiplier float64       // Backoff multiplier (default: 2.0)
	Timeout           time.Duration // Per-request timeout (default: 90s)

	CircuitBreakerEnabled bool          // Enable circuit breaker (default: true)
	FailureThreshold      int           // Failures before opening circuit (default: 5)
	SuccessThreshold      int           // Successes in half-open before closing (default: 2)
	OpenTimeout           time.Duration // How long to keep circuit open (default: 30s)

	MaxConcurrentCalls int     // Concurrent calls allowed (default: 2, 0 = unlimited)
	RequestsPerSecond  float64 // Sustained request rate (0 = unlimited)
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:            3,
		InitialBackoff:        1 * time.Second,
		MaxBackoff:            30 * time.Second,
		BackoffMultiplier:     2.0,
		Timeout:               90 * time.Second,
		CircuitBreakerEnabled: true,
		FailureThreshold:      5,
		SuccessThreshold:      2,
		OpenTimeout:           30 * time.Second,
		MaxConcurrentCalls:    2,
	}
}

// CircuitState is the position of a CircuitBreaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

var circuitStateNames = map[CircuitState]string{
	CircuitClosed:   "CLOSED",
	CircuitOpen:     "OPEN",
	CircuitHalfOpen: "HALF_OPEN",
}

func (s CircuitState) String() string {
	if name, ok := circuitStateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ErrCircuitOpen is returned while a provider is being failed fast.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops calling a provider after a run of transient
// failures, then lets trial calls through once the open timeout passes.
type CircuitBreaker struct {
	mu       sync.Mutex
	state    CircuitState
	streak   int // consecutive failures while closed, successes while half-open
	openedAt time.Time

	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(failureThreshold, successThreshold int, openTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		openTimeout:      openTimeout,
	}
}

// Allow reports whether a call may proceed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitOpen {
		return nil
	}
	if time.Since(cb.openedAt) <= cb.openTimeout {
		return ErrCircuitOpen
	}
	cb.moveTo(CircuitHalfOpen)
	return nil
}

// RecordSuccess notes a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.streak = 0
	case CircuitHalfOpen:
		if cb.streak++; cb.streak >= cb.successThreshold {
			cb.moveTo(CircuitClosed)
		}
	}
}

// RecordFailure notes a transient failure. A failure while half-open reopens the
// circuit immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		if cb.streak++; cb.streak >= cb.failureThreshold {
			cb.moveTo(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.moveTo(CircuitOpen)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// moveTo must be called with mu held.
func (cb *CircuitBreaker) moveTo(to CircuitState) {
	slog.Debug("circuit breaker transition", "from", cb.state.String(), "to", to.String())
	cb.state = to
	cb.streak = 0
	if to == CircuitOpen {
		cb.openedAt = time.Now()
	}
}

// callPolicy is what every provider client runs its requests through: a
// concurrency slot, then per attempt the breaker, the rate limiter and a
// timeout, with exponential backoff between transient failures.
type callPolicy struct {
	retry          RetryConfig
	circuitBreaker *CircuitBreaker
	concurrencySem *semaphore.Weighted
	limiter        *rate.Limiter
}

func newCallPolicy(retry RetryConfig) *callPolicy {
	if retry.MaxRetries == 0 && retry.InitialBackoff == 0 {
		retry = DefaultRetryConfig()
	}

	p := &callPolicy{retry: retry}
	if retry.CircuitBreakerEnabled {
		p.circuitBreaker = NewCircuitBreaker(retry.FailureThreshold, retry.SuccessThreshold, retry.OpenTimeout)
	}
	if retry.MaxConcurrentCalls > 0 {
		p.concurrencySem = semaphore.NewWeighted(int64(retry.MaxConcurrentCalls))
	}
	if retry.RequestsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(retry.RequestsPerSecond), 1)
	}
	return p
}

// do runs fn under the policy. Permanent errors are returned as-is; running
// out of attempts wraps the last transient error.
func (p *callPolicy) do(ctx context.Context, operation string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if p.concurrencySem != nil {
		if err := p.concurrencySem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("%s: waiting for a call slot: %w", operation, err)
		}
		defer p.concurrencySem.Release(1)
	}

	attempts := p.retry.MaxRetries + 1
	wait := p.retry.InitialBackoff
	var lastErr error
	for n := 1; n <= attempts; n++ {
		err := p.attempt(ctx, fn)
		switch {
		case err == nil:
			if n > 1 {
				slog.Info("model call recovered", "operation", operation, "attempt", n)
			}
			return nil
		case errors.Is(err, ErrCircuitOpen), !isRetriableError(err):
			return fmt.Errorf("%s: %w", operation, err)
		}
		lastErr = err
		if n == attempts {
			break
		}

		slog.Warn("model call failed, retrying", "operation", operation, "attempt", n, "of", attempts, "backoff", wait, "error", err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: canceled during backoff: %w", operation, ctx.Err())
		case <-timer.C:
		}
		wait = min(time.Duration(float64(wait)*p.retry.BackoffMultiplier), p.retry.MaxBackoff)
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}

// attempt makes one guarded call and feeds the outcome to the breaker.
func (p *callPolicy) attempt(ctx context.Context, fn func(context.Context) error) error {
	if p.circuitBreaker != nil {
		if err := p.circuitBreaker.Allow(); err != nil {
			return err
		}
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	if p.retry.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.retry.Timeout)
		defer cancel()
	}
	err := fn(ctx)

	if p.circuitBreaker != nil {
		if err == nil {
			p.circuitBreaker.RecordSuccess()
		} else if isRetriableError(err) {
			p.circuitBreaker.RecordFailure()
		}
	}
	return err
}

var (
	permanentMarkers = []string{"400", "401", "403", "404", "invalid api key", "permission denied"}
	transientMarkers = []string{
		"429", "rate limit", "resource_exhausted", "overloaded",
		"500", "502", "503", "504", "internal server error", "bad gateway", "service unavailable", "gateway timeout",
		"connection refused", "connection reset", "timeout", "temporary failure", "network",
	}
)

// isRetriableError classifies provider errors by message, since both SDKs
// surface HTTP status only in the error text. Deadlines retry; cancellation
// and unknown errors do not.
func isRetriableError(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	msg := strings.ToLower(err.Error())
	if containsAny(msg, permanentMarkers) {
		return false
	}
	return containsAny(msg, transientMarkers)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
