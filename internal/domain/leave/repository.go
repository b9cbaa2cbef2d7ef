package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type LeaveApplicationRepository interface {
	Create(ctx context.Context, app LeaveApplication) (LeaveApplication, error)
	GetByID(ctx context.Context, id string) (LeaveApplication, error)
	// LockByID reads the application with FOR UPDATE; only meaningful inside a transaction.
	LockByID(ctx context.Context, id string) (LeaveApplication, error)

	// HasOverlapping reports whether the user has a PENDING or APPROVED application intersecting [start, end].
	HasOverlapping(ctx context.Context, userID string, start, end time.Time) (bool, error)
	// SumPending totals the PENDING applications of (userID, leaveTypeID, year), skipping excludeID when set.
	SumPending(ctx context.Context, userID, leaveTypeID string, year int, excludeID string) (decimal.Decimal, error)

	ListByUser(ctx context.Context, userID string, filter ApplicationFilter) ([]LeaveApplication, error)
	ListPendingByApprover(ctx context.Context, approverID string, filter ApplicationFilter) ([]LeaveApplication, error)
	// ListApprovedInDepartment returns APPROVED applications of the department's users intersecting [start, end].
	ListApprovedInDepartment(ctx context.Context, tenantID, departmentID string, start, end time.Time) ([]LeaveApplication, error)

	// The Mark methods only update rows still in the expected status and return
	// ErrInvalidState when nothing matched.
	MarkApproved(ctx context.Context, id, actorID string, at time.Time) error
	MarkRejected(ctx context.Context, id, actorID, reason string, at time.Time) error
	MarkCancelled(ctx context.Context, id, actorID string, from ApplicationStatus, at time.Time) error
}

type LeaveBalanceRepository interface {
	Get(ctx context.Context, userID, leaveTypeID string, year int) (LeaveBalance, error)
	// GetForUpdate locks the balance row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (LeaveBalance, error)
	// CreateIfAbsent inserts the row unless (user, type, year) already exists and returns the stored row.
	CreateIfAbsent(ctx context.Context, balance LeaveBalance) (LeaveBalance, error)
	// IncrementUsed fails with ErrInsufficientBalance when used would exceed allocated + carryForward.
	IncrementUsed(ctx context.Context, id string, days decimal.Decimal) error
	// DecrementUsed fails with ErrInvalidState when used would drop below zero.
	DecrementUsed(ctx context.Context, id string, days decimal.Decimal) error
}

type RoleLeavePolicyRepository interface {
	// Get returns the active policy for the pair or ErrNoPolicyDefined.
	Get(ctx context.Context, roleID, leaveTypeID string) (RoleLeavePolicy, error)
	ListActiveByRole(ctx context.Context, roleID string) ([]RoleLeavePolicy, error)
}
