package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/bellastudio/booking-api/internal/httperr"
)

type Class int

const (
	// ClassPermanent failures do not change with retrying: constraint
	// violations, business conflicts, validation, missing rows.
	ClassPermanent Class = iota

	// ClassTransient failures are expected to resolve on their own:
	// timeouts, dropped connections, serialization/deadlock aborts.
	ClassTransient
)

type Classifier func(error) Class

// DefaultClassify walks the whole error chain; wrapped causes count.
func DefaultClassify(err error) Class {
	if err == nil {
		return ClassPermanent
	}

	// Business outcomes (slot_conflict etc.) are answers, not faults.
	var be httperr.BusinessError
	if errors.As(err, &be) {
		return ClassPermanent
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrRecordNotFound) {
		return ClassPermanent
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001" || pgErr.Code == "40P01":
			// serialization_failure / deadlock_detected
			return ClassTransient
		case strings.HasPrefix(pgErr.Code, "08"):
			// connection exception class
			return ClassTransient
		case pgErr.Code == "57014" || pgErr.Code == "57P01":
			// query_canceled / admin_shutdown
			return ClassTransient
		default:
			return ClassPermanent
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return ClassTransient
	}

	return ClassPermanent
}
