package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bellastudio/booking-api/internal/httperr"
)

func testExecutor() *Executor {
	ex := NewExecutor(zap.NewNop())
	ex.BaseDelay = time.Millisecond
	ex.MaxDelay = 5 * time.Millisecond
	return ex
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	ex := testExecutor()

	calls := 0
	got, err := Do(context.Background(), ex, "op", func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	ex := testExecutor()
	serialization := &pgconn.PgError{Code: "40001"}

	calls := 0
	got, err := Do(context.Background(), ex, "op", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("tx failed: %w", serialization)
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("result = %q, want %q", got, "ok")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ExhaustionSurfacesUnavailable(t *testing.T) {
	ex := testExecutor()

	calls := 0
	_, err := Do(context.Background(), ex, "insert_appointment", func(ctx context.Context) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})

	if calls != ex.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, ex.MaxAttempts)
	}
	if !IsUnavailable(err) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}

	var ue *UnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UnavailableError in chain")
	}
	if ue.Label != "insert_appointment" {
		t.Errorf("label = %q, want %q", ue.Label, "insert_appointment")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("last transient cause not wrapped")
	}
}

func TestDo_NeverRetriesBusinessConflict(t *testing.T) {
	ex := testExecutor()

	calls := 0
	_, err := Do(context.Background(), ex, "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, httperr.ErrBusiness("slot_conflict")
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (conflicts must not be retried)", calls)
	}
	if !httperr.IsBusiness(err, "slot_conflict") {
		t.Fatalf("expected slot_conflict to propagate unmodified, got %v", err)
	}
}

func TestDo_NeverRetriesDuplicateKey(t *testing.T) {
	ex := testExecutor()

	calls := 0
	_, err := Do(context.Background(), ex, "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate key to propagate, got %v", err)
	}
}

func TestDefaultClassify_InspectsWrappedChain(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Class
	}{
		{"wrapped serialization", fmt.Errorf("outer: %w", &pgconn.PgError{Code: "40001"}), ClassTransient},
		{"wrapped deadlock", fmt.Errorf("outer: %w", &pgconn.PgError{Code: "40P01"}), ClassTransient},
		{"connection class", &pgconn.PgError{Code: "08006"}, ClassTransient},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ClassPermanent},
		{"deadline", fmt.Errorf("outer: %w", context.DeadlineExceeded), ClassTransient},
		{"cancelled", context.Canceled, ClassPermanent},
		{"business", httperr.ErrBusiness("slot_conflict"), ClassPermanent},
		{"not found", gorm.ErrRecordNotFound, ClassPermanent},
		{"plain", errors.New("boom"), ClassPermanent},
	}

	for _, tc := range cases {
		if got := DefaultClassify(tc.err); got != tc.want {
			t.Errorf("%s: class = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBackoff_CappedAndPositive(t *testing.T) {
	ex := testExecutor()
	ex.MaxDelay = 10 * time.Millisecond

	for attempt := 1; attempt <= 20; attempt++ {
		d := ex.backoff(attempt)
		if d <= 0 {
			t.Fatalf("attempt %d: non-positive delay %v", attempt, d)
		}
		if d > ex.MaxDelay {
			t.Fatalf("attempt %d: delay %v above cap %v", attempt, d, ex.MaxDelay)
		}
	}
}
