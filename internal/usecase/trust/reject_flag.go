package trust

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bellastudio/booking-api/internal/audit"
	"github.com/bellastudio/booking-api/internal/httperr"
	"github.com/bellastudio/booking-api/internal/models"
	"github.com/bellastudio/booking-api/internal/retry"
	trustdomain "github.com/bellastudio/booking-api/internal/trust"
)

type RejectFlag struct {
	repo  trustdomain.Repository
	exec  *retry.Executor
	audit *audit.Dispatcher
}

func NewRejectFlag(
	repo trustdomain.Repository,
	exec *retry.Executor,
	audit *audit.Dispatcher,
) *RejectFlag {
	return &RejectFlag{
		repo:  repo,
		exec:  exec,
		audit: audit,
	}
}

// Execute dismisses a pending flag. A reason is mandatory; rejecting does not
// touch the client's ban state.
func (uc *RejectFlag) Execute(
	ctx context.Context,
	flagID uint,
	reviewerID uint,
	comments string,
) (*models.ClientReviewFlag, error) {

	if strings.TrimSpace(comments) == "" {
		return nil, httperr.ErrBusiness("missing_reason")
	}

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
	flag.Status = models.FlagStatusRejected
	flag.ReviewedBy = &reviewerID
	flag.ReviewedAt = &now
	flag.Comments = comments

	if _, err := retry.Do(ctx, uc.exec, "reject_flag",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, uc.repo.UpdateFlag(ctx, flag)
		}); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ReviewerID: &reviewerID,
		Action:     "flag_rejected",
		Entity:     "client_review_flag",
		EntityID:   &flag.ID,
	})

	return flag, nil
}
