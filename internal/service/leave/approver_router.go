package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
)

// ApproverRouter picks the single approver of a new application.
type ApproverRouter struct {
	users user.UserRepository
}

func NewApproverRouter(users user.UserRepository) *ApproverRouter {
	return &ApproverRouter{users: users}
}

// ResolveApprover routes head managers to a tenant admin and everyone else to
// their direct manager. There is no further fallback.
func (r *ApproverRouter) ResolveApprover(ctx context.Context, applicant user.User) (string, error) {
	if applicant.IsHeadManager {
		admin, err := r.users.FindAdmin(ctx, applicant.TenantID)
		if errors.Is(err, user.ErrUserNotFound) {
			return "", leave.ErrNoAdminAvailable
		}
		if err != nil {
			return "", fmt.Errorf("failed to find admin: %w", err)
		}
		return admin.ID, nil
	}

	if applicant.ManagerID != nil && *applicant.ManagerID != "" {
		return *applicant.ManagerID, nil
	}

	return "", leave.ErrNoApproverAssigned
}
