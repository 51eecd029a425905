package trust

import (
	"context"

	"github.com/bellastudio/booking-api/internal/httperr"
)

const (
	BulkActionApprove = "approve"
	BulkActionReject  = "reject"
)

// ItemResult is one per-flag outcome of a bulk review. A failed flag never
// rolls back the others.
type ItemResult struct {
	ID        uint   `json:"id"`
	OK        bool   `json:"ok"`
	ErrorCode string `json:"error_code,omitempty"`
}

type BulkReview struct {
	approve *ApproveFlag
	reject  *RejectFlag
}

func NewBulkReview(approve *ApproveFlag, reject *RejectFlag) *BulkReview {
	return &BulkReview{
		approve: approve,
		reject:  reject,
	}
}

// Execute applies the single-flag transition independently per id, in order.
func (uc *BulkReview) Execute(
	ctx context.Context,
	action string,
	ids []uint,
	reviewerID uint,
	comments string,
) ([]ItemResult, error) {

	if action != BulkActionApprove && action != BulkActionReject {
		return nil, httperr.ErrBusiness("invalid_bulk_action")
	}

	results := make([]ItemResult, 0, len(ids))

	for _, id := range ids {
		var err error
		switch action {
		case BulkActionApprove:
			_, err = uc.approve.Execute(ctx, id, reviewerID, comments)
		case BulkActionReject:
			_, err = uc.reject.Execute(ctx, id, reviewerID, comments)
		}

		if err != nil {
			code, ok := httperr.BusinessCode(err)
			if !ok {
				code = "internal_error"
			}
			results = append(results, ItemResult{ID: id, OK: false, ErrorCode: code})
			continue
		}

		results = append(results, ItemResult{ID: id, OK: true})
	}

	return results, nil
}
