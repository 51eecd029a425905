package trust

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bellastudio/booking-api/internal/audit"
	"github.com/bellastudio/booking-api/internal/httperr"
	"github.com/bellastudio/booking-api/internal/retry"
	trustdomain "github.com/bellastudio/booking-api/internal/trust"
)

type UnbanClient struct {
	repo  trustdomain.Repository
	exec  *retry.Executor
	audit *audit.Dispatcher
}

func NewUnbanClient(
	repo trustdomain.Repository,
	exec *retry.Executor,
	audit *audit.Dispatcher,
) *UnbanClient {
	return &UnbanClient{
		repo:  repo,
		exec:  exec,
		audit: audit,
	}
}

// Execute lifts a ban: every banned flag of the client moves to approved with
// a system comment. The derived banned state clears because no banned flag
// remains. Returns how many flags changed.
func (uc *UnbanClient) Execute(
	ctx context.Context,
	clientID uint,
	reviewerID uint,
) (int64, error) {

	if _, err := uc.repo.GetClientByID(ctx, clientID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, httperr.ErrBusiness("client_not_found")
		}
		return 0, err
	}

	comment := fmt.Sprintf("unbanned by reviewer %d", reviewerID)

	count, err := retry.Do(ctx, uc.exec, "unban_client",
		func(ctx context.Context) (int64, error) {
			return uc.repo.UnbanFlags(ctx, clientID, &reviewerID, comment)
		})
	if err != nil {
		return 0, err
	}

	uc.audit.Dispatch(audit.Event{
		ReviewerID: &reviewerID,
		Action:     "client_unbanned",
		Entity:     "client",
		EntityID:   &clientID,
		Metadata:   map[string]any{"unbanned_flags": count},
	})

	return count, nil
}
