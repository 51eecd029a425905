package trust

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bellastudio/booking-api/internal/models"
	"github.com/bellastudio/booking-api/internal/retry"
)

// ======================================================
// CONFIG
// ======================================================

type Config struct {
	// BanThreshold is the count of unresolved (pending) flags at which a
	// client is automatically banned.
	BanThreshold int

	// Window and MaxInWindow bound booking velocity: more than MaxInWindow
	// appointments inside a sliding Window raises a flag.
	Window      time.Duration
	MaxInWindow int

	// ContactWindow and ContactBurst bound contact-form submissions per
	// client email.
	ContactWindow time.Duration
	ContactBurst  int
}

func DefaultConfig() Config {
	return Config{
		BanThreshold:  3,
		Window:        24 * time.Hour,
		MaxInWindow:   5,
		ContactWindow: time.Hour,
		ContactBurst:  3,
	}
}

// ======================================================
// ENGINE
// ======================================================

// Engine evaluates booking/contact patterns and drives the review-flag
// lifecycle. It only ever creates flags and applies the auto-ban rule;
// approve/reject/unban are explicit admin actions handled by use cases.
type Engine struct {
	repo Repository
	exec *retry.Executor
	cfg  Config
	log  *zap.Logger
}

func NewEngine(repo Repository, exec *retry.Executor, cfg Config, log *zap.Logger) *Engine {
	if cfg.BanThreshold <= 0 {
		cfg.BanThreshold = DefaultConfig().BanThreshold
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.MaxInWindow <= 0 {
		cfg.MaxInWindow = DefaultConfig().MaxInWindow
	}
	if cfg.ContactWindow <= 0 {
		cfg.ContactWindow = DefaultConfig().ContactWindow
	}
	if cfg.ContactBurst <= 0 {
		cfg.ContactBurst = DefaultConfig().ContactBurst
	}

	return &Engine{
		repo: repo,
		exec: exec,
		cfg:  cfg,
		log:  log,
	}
}

// HandleSignal evaluates one signal. A returned error means the signal should
// be redelivered.
func (e *Engine) HandleSignal(ctx context.Context, sig Signal) error {
	switch sig.Kind {
	case SignalAppointmentCreated:
		return e.handleAppointment(ctx, sig)
	case SignalContactSubmitted:
		return e.handleContact(ctx, sig)
	default:
		e.log.Warn("unknown trust signal kind", zap.String("kind", sig.Kind))
		return nil
	}
}

// ------------------------------------------------------
// Rules
// ------------------------------------------------------

func (e *Engine) handleAppointment(ctx context.Context, sig Signal) error {
	occurred := sig.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	if sig.ScheduledAt.Before(occurred) {
		if err := e.flagViolation(ctx, sig.ClientID, sig.AppointmentID,
			"booking for a slot in the past"); err != nil {
			return err
		}
	}

	count, err := e.repo.CountAppointmentsSince(ctx, sig.ClientID, occurred.Add(-e.cfg.Window))
	if err != nil {
		return err
	}

	if count > int64(e.cfg.MaxInWindow) {
		reason := fmt.Sprintf("%d appointments within %s", count, e.cfg.Window)
		if err := e.flagViolation(ctx, sig.ClientID, sig.AppointmentID, reason); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) handleContact(ctx context.Context, sig Signal) error {
	occurred := sig.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	count, err := e.repo.CountContactsSince(ctx, sig.Email, occurred.Add(-e.cfg.ContactWindow))
	if err != nil {
		return err
	}
	if count < int64(e.cfg.ContactBurst) {
		return nil
	}

	client, err := e.repo.GetClientByEmail(ctx, sig.Email)
	if err != nil {
		// No client record means no bookings to protect; nothing to flag.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	// A flag needs a triggering appointment to reference.
	latest, err := e.repo.LatestAppointment(ctx, client.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	reason := fmt.Sprintf("%d contact submissions within %s", count, e.cfg.ContactWindow)
	return e.flagViolation(ctx, client.ID, latest.ID, reason)
}

// ------------------------------------------------------
// Flag lifecycle
// ------------------------------------------------------

func (e *Engine) flagViolation(ctx context.Context, clientID, appointmentID uint, reason string) error {
	flag, err := retry.Do(ctx, e.exec, "upsert_review_flag",
		func(ctx context.Context) (*models.ClientReviewFlag, error) {
			f, _, err := e.repo.UpsertViolation(ctx, clientID, appointmentID, reason)
			return f, err
		})
	if err != nil {
		return err
	}

	e.log.Info("trust violation recorded",
		zap.Uint("client_id", clientID),
		zap.Uint("appointment_id", appointmentID),
		zap.String("reason", reason),
		zap.Int("auto_flag_count", flag.AutoFlagCount),
	)

	return e.autoBan(ctx, flag)
}

// autoBan runs on every flag create/increment: when the client's unresolved
// flag count reaches the threshold, the triggering flag transitions to
// banned. Sibling flags keep their own status; the client's derived banned
// state flips through this one row.
func (e *Engine) autoBan(ctx context.Context, flag *models.ClientReviewFlag) error {
	if flag.Status != models.FlagStatusPending {
		return nil
	}

	pending, err := e.repo.CountFlagsByStatus(ctx, flag.ClientID, models.FlagStatusPending)
	if err != nil {
		return err
	}
	if pending < int64(e.cfg.BanThreshold) {
		return nil
	}

	now := time.Now().UTC()
	flag.Status = models.FlagStatusBanned
	flag.ReviewedAt = &now
	flag.Comments = fmt.Sprintf("auto-banned: %d unresolved flags", pending)

	if _, err := retry.Do(ctx, e.exec, "auto_ban_flag",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, e.repo.UpdateFlag(ctx, flag)
		}); err != nil {
		return err
	}

	e.log.Warn("client auto-banned",
		zap.Uint("client_id", flag.ClientID),
		zap.Int64("pending_flags", pending),
	)

	return nil
}

// IsClientBanned derives the ban state: banned iff at least one flag is in
// state banned.
func (e *Engine) IsClientBanned(ctx context.Context, clientID uint) (bool, error) {
	banned, err := e.repo.CountFlagsByStatus(ctx, clientID, models.FlagStatusBanned)
	if err != nil {
		return false, err
	}
	return banned > 0, nil
}
