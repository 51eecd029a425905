package booking

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domain "github.com/bellastudio/booking-api/internal/domain/booking"
	"github.com/bellastudio/booking-api/internal/httperr"
	"github.com/bellastudio/booking-api/internal/models"
	"github.com/bellastudio/booking-api/internal/retry"
	"github.com/bellastudio/booking-api/internal/trust"
	"github.com/bellastudio/booking-api/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type ScheduleAppointmentInput struct {
	ServiceID uint
	Time      time.Time

	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// ======================================================
// USE CASE
// ======================================================

// ScheduleAppointment orchestrates key derivation, the conditional insert and
// the trust handoff. All correctness under concurrency lives in the storage
// constraints: there is no in-process lock and no check-then-insert here.
type ScheduleAppointment struct {
	repo  domain.Repository
	exec  *retry.Executor
	trust *trust.Dispatcher
}

func NewScheduleAppointment(
	repo domain.Repository,
	exec *retry.Executor,
	dispatcher *trust.Dispatcher,
) *ScheduleAppointment {
	return &ScheduleAppointment{
		repo:  repo,
		exec:  exec,
		trust: dispatcher,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *ScheduleAppointment) Execute(
	ctx context.Context,
	in ScheduleAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Client field validation
	// --------------------------------------------------
	if err := validateClient(in); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Service must exist and be bookable
	// --------------------------------------------------
	svc, err := uc.repo.GetServiceByID(ctx, in.ServiceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		return nil, err
	}
	if !svc.Active || svc.Price <= 0 {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	// --------------------------------------------------
	// 3. Canonical slot time + idempotency key
	// --------------------------------------------------
	scheduledAt := domain.NormalizeSlotTime(in.Time)
	if scheduledAt.Before(time.Now().UTC()) {
		return nil, httperr.ErrBusiness("slot_in_past")
	}

	key, err := domain.DeriveIdempotencyKey(in.Email, in.ServiceID, scheduledAt)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4. Client (get or create, idempotent on email)
	// --------------------------------------------------
	client, err := retry.Do(ctx, uc.exec, "get_or_create_client",
		func(ctx context.Context) (*models.Client, error) {
			return uc.repo.GetOrCreateClient(
				ctx,
				strings.TrimSpace(in.FirstName),
				strings.TrimSpace(in.LastName),
				in.Email,
				strings.TrimSpace(in.Phone),
			)
		})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5. Conditional insert; the constraints are the lock
	// --------------------------------------------------
	ap := &models.Appointment{
		ClientID:       client.ID,
		ServiceID:      svc.ID,
		ScheduledAt:    scheduledAt,
		IdempotencyKey: key,
		Status:         string(domain.InitialStatus()),
	}

	type outcome struct {
		ap      *models.Appointment
		created bool
	}

	res, err := retry.Do(ctx, uc.exec, "create_appointment",
		func(ctx context.Context) (outcome, error) {
			created, fresh, err := uc.repo.CreateAppointmentIfFree(ctx, ap)
			return outcome{ap: created, created: fresh}, err
		})
	if err != nil {
		return nil, err
	}

	result := res.ap
	result.Client = *client
	result.Service = *svc

	// --------------------------------------------------
	// 6. Trust signal, fire-and-forget, fresh rows only
	// --------------------------------------------------
	if res.created {
		uc.trust.Dispatch(trust.Signal{
			Kind:          trust.SignalAppointmentCreated,
			ClientID:      client.ID,
			AppointmentID: result.ID,
			ScheduledAt:   scheduledAt,
			OccurredAt:    time.Now().UTC(),
		})
	}

	return result, nil
}

func validateClient(in ScheduleAppointmentInput) error {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return httperr.ErrBusiness("invalid_client_name")
	}
	if !validators.IsEmailSyntaxValid(strings.TrimSpace(in.Email)) {
		return httperr.ErrBusiness("invalid_email")
	}
	if !validators.IsPhoneValid(in.Phone) {
		return httperr.ErrBusiness("invalid_phone")
	}
	return nil
}
