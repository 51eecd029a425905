package trust

import (
	"context"

	"github.com/bellastudio/booking-api/internal/httperr"
	"github.com/bellastudio/booking-api/internal/models"
	trustdomain "github.com/bellastudio/booking-api/internal/trust"
)

type ListFlags struct {
	repo trustdomain.Repository
}

func NewListFlags(repo trustdomain.Repository) *ListFlags {
	return &ListFlags{repo: repo}
}

func (uc *ListFlags) Execute(
	ctx context.Context,
	status string,
	clientID uint,
) ([]models.ClientReviewFlag, error) {

	switch status {
	case "", models.FlagStatusPending, models.FlagStatusApproved,
		models.FlagStatusRejected, models.FlagStatusBanned:
	default:
		return nil, httperr.ErrBusiness("invalid_status_filter")
	}

	return uc.repo.ListFlags(ctx, status, clientID)
}
