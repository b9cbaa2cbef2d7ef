package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Request shape
	ErrInvalidRange        = errors.New("start date must be on or before end date")
	ErrInvalidHalfDay      = errors.New("half day leave must start and end on the same date")
	ErrCrossYearNotAllowed = errors.New("leave cannot span two calendar years")
	ErrPastDateNotAllowed  = errors.New("leave cannot start in the past")
	ErrNoWorkingDays       = errors.New("selected dates contain no working days")

	// Current state
	ErrOverlappingApplication = errors.New("an existing pending or approved leave overlaps these dates")
	ErrAttendanceConflict     = errors.New("attendance is already recorded within these dates")
	ErrInsufficientBalance    = errors.New("insufficient leave balance")

	// Master data gaps
	ErrNoApproverAssigned = errors.New("no manager assigned to approve your leave")
	ErrNoAdminAvailable   = errors.New("no admin available to approve head manager leave")
	ErrNoPolicyDefined    = errors.New("no leave policy defined for this role and leave type")

	// Lifecycle
	ErrLeaveApplicationNotFound = errors.New("leave application not found")
	ErrUnauthorized             = errors.New("not authorized to act on this leave application")
	ErrInvalidState             = errors.New("leave application is no longer pending")
	ErrAlreadyCancelled         = errors.New("leave application is already cancelled")
	ErrCannotCancelRejected     = errors.New("rejected leave application cannot be cancelled")
	ErrLeaveAlreadyStarted      = errors.New("leave that has already started cannot be cancelled")
	ErrRejectionReasonRequired  = errors.New("rejection reason is required")
	ErrBalanceNotFound          = errors.New("leave balance not found")
)

// BalanceError is ErrInsufficientBalance with the figures the caller needs to adjust the request.
type BalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("%s: available %s, requested %s", ErrInsufficientBalance, e.Available, e.Requested)
}

func (e *BalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
