package trust

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bellastudio/booking-api/internal/audit"
	"github.com/bellastudio/booking-api/internal/httperr"
	"github.com/bellastudio/booking-api/internal/models"
	"github.com/bellastudio/booking-api/internal/retry"
	trustdomain "github.com/bellastudio/booking-api/internal/trust"
)

type BanClient struct {
	repo  trustdomain.Repository
	exec  *retry.Executor
	audit *audit.Dispatcher
}

func NewBanClient(
	repo trustdomain.Repository,
	exec *retry.Executor,
	audit *audit.Dispatcher,
) *BanClient {
	return &BanClient{
		repo:  repo,
		exec:  exec,
		audit: audit,
	}
}

// Execute bans a client by hand. The newest pending flag transitions to
// banned; when the client has no pending flag, a new one is raised against
// their latest appointment so the derived ban state has a row to hang on.
func (uc *BanClient) Execute(
	ctx context.Context,
	clientID uint,
	reviewerID uint,
	reason string,
	comments string,
) (*models.ClientReviewFlag, error) {

	if _, err := uc.repo.GetClientByID(ctx, clientID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness("client_not_found")
		}
		return nil, err
	}

	flag, err := uc.pendingOrNewFlag(ctx, clientID, reason)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	flag.Status = models.FlagStatusBanned
	flag.ReviewedBy = &reviewerID
	flag.ReviewedAt = &now
	flag.Comments = comments
	if flag.Comments == "" {
		flag.Comments = reason
	}

	if _, err := retry.Do(ctx, uc.exec, "ban_client",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, uc.repo.UpdateFlag(ctx, flag)
		}); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ReviewerID: &reviewerID,
		Action:     "client_banned",
		Entity:     "client",
		EntityID:   &clientID,
		Metadata:   map[string]any{"reason": reason, "flag_id": flag.ID},
	})

	return flag, nil
}

func (uc *BanClient) pendingOrNewFlag(
	ctx context.Context,
	clientID uint,
	reason string,
) (*models.ClientReviewFlag, error) {

	pending, err := uc.repo.ListFlags(ctx, models.FlagStatusPending, clientID)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return &pending[0], nil
	}

	latest, err := uc.repo.LatestAppointment(ctx, clientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness("no_appointments")
		}
		return nil, err
	}

	flag, _, err := uc.repo.UpsertViolation(ctx, clientID, latest.ID, reason)
	if err != nil {
		return nil, err
	}

	return flag, nil
}
