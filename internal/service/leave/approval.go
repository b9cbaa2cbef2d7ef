package leave

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
)

// ListPending implements leave.ApprovalService.
func (s *LeaveServiceImpl) ListPending(ctx context.Context, approverID string, filter leave.ApplicationFilter) ([]leave.LeaveApplicationResponse, error) {
	apps, err := s.applications.ListPendingByApprover(ctx, approverID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending leave applications: %w", err)
	}
	return leave.ToLeaveApplicationResponses(apps), nil
}

// TeamCalendar implements leave.ApprovalService. It lists approved leave of
// everyone in the approver's department that intersects the requested window.
func (s *LeaveServiceImpl) TeamCalendar(ctx context.Context, approverID string, req leave.TeamCalendarRequest) ([]leave.LeaveApplicationResponse, error) {
	start, end, err := req.Range()
	if err != nil {
		return nil, err
	}

	approver, err := s.users.GetByID(ctx, approverID)
	if err != nil {
		return nil, err
	}
	if approver.DepartmentID == nil {
		return []leave.LeaveApplicationResponse{}, nil
	}

	apps, err := s.applications.ListApprovedInDepartment(ctx, approver.TenantID, *approver.DepartmentID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list team leave: %w", err)
	}
	return leave.ToLeaveApplicationResponses(apps), nil
}
