package leave

import (
	"context"
)

// LeaveService is the applicant side of the leave lifecycle.
type LeaveService interface {
	Submit(ctx context.Context, req ApplyLeaveRequest) (LeaveApplicationResponse, error)
	ListMine(ctx context.Context, userID string, filter ApplicationFilter) ([]LeaveApplicationResponse, error)
	GetApplication(ctx context.Context, actorID, id string) (LeaveApplicationResponse, error)
	GetBalances(ctx context.Context, userID string, year int) ([]BalanceSummary, error)
	Cancel(ctx context.Context, actorID, id string) (LeaveApplicationResponse, error)
}

// ApprovalService is the approver side of the leave lifecycle.
type ApprovalService interface {
	ListPending(ctx context.Context, approverID string, filter ApplicationFilter) ([]LeaveApplicationResponse, error)
	Approve(ctx context.Context, actorID, id string) (LeaveApplicationResponse, error)
	Reject(ctx context.Context, req RejectLeaveRequest) (LeaveApplicationResponse, error)
	TeamCalendar(ctx context.Context, approverID string, req TeamCalendarRequest) ([]LeaveApplicationResponse, error)
}
