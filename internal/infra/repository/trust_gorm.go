package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	booking "github.com/bellastudio/booking-api/internal/domain/booking"
	"github.com/bellastudio/booking-api/internal/models"
	"github.com/bellastudio/booking-api/internal/trust"
)

type TrustGormRepository struct {
	db *gorm.DB
}

func NewTrustGormRepository(db *gorm.DB) *TrustGormRepository {
	return &TrustGormRepository{db: db}
}

// --------------------------------------------------
// Clients
// --------------------------------------------------

func (r *TrustGormRepository) GetClientByID(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *TrustGormRepository) GetClientByEmail(
	ctx context.Context,
	email string,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("email = ?", booking.NormalizeEmail(email)).
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// --------------------------------------------------
// Flags
// --------------------------------------------------

func (r *TrustGormRepository) UpsertViolation(
	ctx context.Context,
	clientID uint,
	appointmentID uint,
	reason string,
) (*models.ClientReviewFlag, bool, error) {
	return r.upsertViolation(ctx, clientID, appointmentID, reason, true)
}

func (r *TrustGormRepository) upsertViolation(
	ctx context.Context,
	clientID uint,
	appointmentID uint,
	reason string,
	retryOnRace bool,
) (*models.ClientReviewFlag, bool, error) {

	var flag models.ClientReviewFlag
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND appointment_id = ?", clientID, appointmentID).
		First(&flag).Error

	if err == nil {
		// Adjudicated flags stay as reviewed; only pending ones accumulate.
		if flag.Status != models.FlagStatusPending {
			return &flag, false, nil
		}

		if uerr := r.db.WithContext(ctx).
			Model(&models.ClientReviewFlag{}).
			Where("id = ?", flag.ID).
			UpdateColumn("auto_flag_count", gorm.Expr("auto_flag_count + 1")).
			Error; uerr != nil {
			return nil, false, uerr
		}

		flag.AutoFlagCount++
		return &flag, false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	flag = models.ClientReviewFlag{
		ClientID:      clientID,
		AppointmentID: appointmentID,
		Reason:        reason,
		Status:        models.FlagStatusPending,
		AutoFlagCount: 1,
	}

	if cerr := r.db.WithContext(ctx).Create(&flag).Error; cerr != nil {
		// Two workers raced on the (client, appointment) index; fold this
		// violation into the winner's row.
		if isDuplicateKey(cerr) && retryOnRace {
			return r.upsertViolation(ctx, clientID, appointmentID, reason, false)
		}
		return nil, false, cerr
	}

	return &flag, true, nil
}

func (r *TrustGormRepository) GetFlagByID(
	ctx context.Context,
	id uint,
) (*models.ClientReviewFlag, error) {

	var flag models.ClientReviewFlag
	if err := r.db.WithContext(ctx).
		Preload("Client").
		First(&flag, id).Error; err != nil {
		return nil, err
	}
	return &flag, nil
}

func (r *TrustGormRepository) UpdateFlag(
	ctx context.Context,
	flag *models.ClientReviewFlag,
) error {
	return r.db.WithContext(ctx).Save(flag).Error
}

func (r *TrustGormRepository) ListFlags(
	ctx context.Context,
	status string,
	clientID uint,
) ([]models.ClientReviewFlag, error) {

	q := r.db.WithContext(ctx).
		Model(&models.ClientReviewFlag{}).
		Preload("Client")

	if status != "" {
		q = q.Where("status = ?", status)
	}
	if clientID != 0 {
		q = q.Where("client_id = ?", clientID)
	}

	var flags []models.ClientReviewFlag
	if err := q.Order("created_at DESC").Find(&flags).Error; err != nil {
		return nil, err
	}

	return flags, nil
}

func (r *TrustGormRepository) CountFlagsByStatus(
	ctx context.Context,
	clientID uint,
	status string,
) (int64, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClientReviewFlag{}).
		Where("client_id = ? AND status = ?", clientID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *TrustGormRepository) UnbanFlags(
	ctx context.Context,
	clientID uint,
	reviewerID *uint,
	comment string,
) (int64, error) {

	now := time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.ClientReviewFlag{}).
		Where("client_id = ? AND status = ?", clientID, models.FlagStatusBanned).
		Updates(map[string]any{
			"status":      models.FlagStatusApproved,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
			"comments":    comment,
		})

	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}

// --------------------------------------------------
// Signal evaluation inputs
// --------------------------------------------------

func (r *TrustGormRepository) CountAppointmentsSince(
	ctx context.Context,
	clientID uint,
	since time.Time,
) (int64, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("client_id = ? AND created_at >= ?", clientID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *TrustGormRepository) CountContactsSince(
	ctx context.Context,
	email string,
	since time.Time,
) (int64, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContactMessage{}).
		Where("email = ? AND created_at >= ?", booking.NormalizeEmail(email), since).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *TrustGormRepository) LatestAppointment(
	ctx context.Context,
	clientID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

// Compile-time check
var _ trust.Repository = (*TrustGormRepository)(nil)
