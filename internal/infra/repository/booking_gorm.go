package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/bellastudio/booking-api/internal/domain/booking"
	"github.com/bellastudio/booking-api/internal/httperr"
	"github.com/bellastudio/booking-api/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *BookingGormRepository) GetServiceByID(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&svc, id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *BookingGormRepository) GetOrCreateClient(
	ctx context.Context,
	firstName string,
	lastName string,
	email string,
	phone string,
) (*models.Client, error) {

	normalized := domain.NormalizeEmail(email)

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("email = ?", normalized).
		First(&client).Error

	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client = models.Client{
		FirstName: firstName,
		LastName:  lastName,
		Email:     normalized,
		Phone:     phone,
	}

	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		// Lost a create race on the email index; the winner's row is ours.
		if isDuplicateKey(err) {
			var existing models.Client
			if ferr := r.db.WithContext(ctx).
				Where("email = ?", normalized).
				First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}

	return &client, nil
}

// --------------------------------------------------
// Appointment (conditional insert)
// --------------------------------------------------

// CreateAppointmentIfFree is the single storage-level conditional write the
// scheduler relies on. There is no check-then-insert: the insert runs
// unconditionally and the unique indexes decide the outcome. A duplicate is
// disambiguated by the idempotency key — if a row with the same key exists
// the insert was a replay of the same logical request; otherwise the slot
// index fired and the slot belongs to someone else.
func (r *BookingGormRepository) CreateAppointmentIfFree(
	ctx context.Context,
	ap *models.Appointment,
) (*models.Appointment, bool, error) {

	err := r.db.WithContext(ctx).Create(ap).Error
	if err == nil {
		return ap, true, nil
	}

	if !isDuplicateKey(err) {
		return nil, false, err
	}

	var existing models.Appointment
	lookupErr := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where("idempotency_key = ?", ap.IdempotencyKey).
		First(&existing).Error

	if lookupErr == nil {
		return &existing, false, nil
	}

	if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return nil, false, httperr.ErrBusiness("slot_conflict")
	}

	return nil, false, lookupErr
}

func (r *BookingGormRepository) GetAppointmentByID(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *BookingGormRepository) ListAppointmentsForDay(
	ctx context.Context,
	serviceID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"service_id = ? AND status = ? AND scheduled_at >= ? AND scheduled_at < ?",
			serviceID, string(domain.StatusScheduled), start, end,
		).
		Order("scheduled_at ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}

	return aps, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
