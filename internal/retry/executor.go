package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// UnavailableError wraps the last transient failure once the retry budget is
// exhausted. Callers surface it as a "try again later" outcome.
type UnavailableError struct {
	Label string
	Err   error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("persistence unavailable after retries (%s): %v", e.Label, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// Executor wraps storage operations with classification-aware retry.
// Permanent failures propagate immediately; transient ones are retried with
// capped, jittered exponential backoff.
type Executor struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration

	Classify Classifier
	Log      *zap.Logger
}

func NewExecutor(log *zap.Logger) *Executor {
	return &Executor{
		MaxAttempts:    3,
		BaseDelay:      100 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		AttemptTimeout: 5 * time.Second,
		Classify:       DefaultClassify,
		Log:            log,
	}
}

// Do runs fn until it succeeds, fails permanently, or the attempt budget runs
// out. The call site must be idempotent: a retry after an indeterminate
// failure may re-run a write that already committed.
func Do[T any](ctx context.Context, ex *Executor, label string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := ex.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		cancel := func() {}
		if ex.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, ex.AttemptTimeout)
		}

		result, err := fn(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}

		classify := ex.Classify
		if classify == nil {
			classify = DefaultClassify
		}

		if classify(err) == ClassPermanent {
			return zero, err
		}

		lastErr = err
		if ex.Log != nil {
			ex.Log.Warn("transient storage failure",
				zap.String("operation", label),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Error(err),
			)
		}

		if attempt == attempts {
			break
		}

		select {
		case <-time.After(ex.backoff(attempt)):
		case <-ctx.Done():
			return zero, &UnavailableError{Label: label, Err: lastErr}
		}
	}

	return zero, &UnavailableError{Label: label, Err: lastErr}
}

// backoff returns a full-jitter delay for the given 1-based attempt number.
func (ex *Executor) backoff(attempt int) time.Duration {
	base := ex.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	max := ex.MaxDelay
	if max <= 0 {
		max = 10 * time.Second
	}

	delay := base << (attempt - 1)
	if delay > max || delay <= 0 {
		delay = max
	}

	return time.Duration(rand.Int63n(int64(delay)) + 1)
}
