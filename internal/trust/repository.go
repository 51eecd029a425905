package trust

import (
	"context"
	"time"

	"github.com/bellastudio/booking-api/internal/models"
)

type Repository interface {
	// -------- Clients --------
	GetClientByID(
		ctx context.Context,
		id uint,
	) (*models.Client, error)

	GetClientByEmail(
		ctx context.Context,
		email string,
	) (*models.Client, error)

	// -------- Flags --------

	// UpsertViolation records a violation for a (client, appointment) pair.
	// A pending flag for the pair is incremented instead of duplicated; an
	// adjudicated flag is left untouched. created reports a fresh row.
	UpsertViolation(
		ctx context.Context,
		clientID uint,
		appointmentID uint,
		reason string,
	) (*models.ClientReviewFlag, bool, error)

	GetFlagByID(
		ctx context.Context,
		id uint,
	) (*models.ClientReviewFlag, error)

	UpdateFlag(
		ctx context.Context,
		flag *models.ClientReviewFlag,
	) error

	ListFlags(
		ctx context.Context,
		status string,
		clientID uint,
	) ([]models.ClientReviewFlag, error)

	CountFlagsByStatus(
		ctx context.Context,
		clientID uint,
		status string,
	) (int64, error)

	// UnbanFlags moves every banned flag of the client to approved with the
	// given system comment; returns how many rows changed.
	UnbanFlags(
		ctx context.Context,
		clientID uint,
		reviewerID *uint,
		comment string,
	) (int64, error)

	// -------- Signal evaluation inputs --------
	CountAppointmentsSince(
		ctx context.Context,
		clientID uint,
		since time.Time,
	) (int64, error)

	CountContactsSince(
		ctx context.Context,
		email string,
		since time.Time,
	) (int64, error)

	LatestAppointment(
		ctx context.Context,
		clientID uint,
	) (*models.Appointment, error)
}
