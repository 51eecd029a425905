package booking

import (
	"context"
	"time"

	"github.com/bellastudio/booking-api/internal/models"
)

type Repository interface {
	// -------- Service --------
	GetServiceByID(
		ctx context.Context,
		id uint,
	) (*models.Service, error)

	// -------- Client --------
	GetOrCreateClient(
		ctx context.Context,
		firstName string,
		lastName string,
		email string,
		phone string,
	) (*models.Client, error)

	// -------- Appointment (conditional insert) --------

	// CreateAppointmentIfFree attempts a single constraint-backed insert.
	// Outcomes:
	//   - fresh insert: returns ap with created=true
	//   - duplicate idempotency key: returns the existing row, created=false
	//   - occupied slot under a different key: slot_conflict business error
	CreateAppointmentIfFree(
		ctx context.Context,
		ap *models.Appointment,
	) (*models.Appointment, bool, error)

	GetAppointmentByID(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	ListAppointmentsForDay(
		ctx context.Context,
		serviceID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}
