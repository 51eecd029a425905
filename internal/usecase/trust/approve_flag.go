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

type ApproveFlag struct {
	repo  trustdomain.Repository
	exec  *retry.Executor
	audit *audit.Dispatcher
}

func NewApproveFlag(
	repo trustdomain.Repository,
	exec *retry.Executor,
	audit *audit.Dispatcher,
) *ApproveFlag {
	return &ApproveFlag{
		repo:  repo,
		exec:  exec,
		audit: audit,
	}
}

// Execute clears suspicion on a single pending flag. No side effect on the
// client's other flags.
func (uc *ApproveFlag) Execute(
	ctx context.Context,
	flagID uint,
	reviewerID uint,
	comments string,
) (*models.ClientReviewFlag, error) {

	flag, err := uc.repo.GetFlagByID(ctx, flagID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness("flag_not_found")
		}
		return nil, err
	}

	if flag.Status != models.FlagStatusPending {
		return nil, httperr.ErrBusiness("invalid_state")
	}

	now := time.Now().UTC()
	flag.Status = models.FlagStatusApproved
	flag.ReviewedBy = &reviewerID
	flag.ReviewedAt = &now
	flag.Comments = comments

	if _, err := retry.Do(ctx, uc.exec, "approve_flag",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, uc.repo.UpdateFlag(ctx, flag)
		}); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ReviewerID: &reviewerID,
		Action:     "flag_approved",
		Entity:     "client_review_flag",
		EntityID:   &flag.ID,
	})

	return flag, nil
}
