package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	// Leave request shape
	{leave.ErrInvalidRange, http.StatusBadRequest, "INVALID_RANGE"},
	{leave.ErrInvalidHalfDay, http.StatusBadRequest, "INVALID_HALF_DAY"},
	{leave.ErrCrossYearNotAllowed, http.StatusBadRequest, "CROSS_YEAR_NOT_ALLOWED"},
	{leave.ErrPastDateNotAllowed, http.StatusBadRequest, "PAST_DATE_NOT_ALLOWED"},
	{leave.ErrNoWorkingDays, http.StatusBadRequest, "NO_WORKING_DAYS"},
	{leave.ErrLeaveAlreadyStarted, http.StatusBadRequest, "LEAVE_ALREADY_STARTED"},
	{leave.ErrRejectionReasonRequired, http.StatusBadRequest, "REJECTION_REASON_REQUIRED"},
	{leave.ErrInsufficientBalance, http.StatusBadRequest, "INSUFFICIENT_BALANCE"},

	// Leave state conflicts
	{leave.ErrOverlappingApplication, http.StatusConflict, "OVERLAPPING_APPLICATION"},
	{leave.ErrAttendanceConflict, http.StatusConflict, "ATTENDANCE_CONFLICT"},
	{leave.ErrInvalidState, http.StatusConflict, "INVALID_STATE"},
	{leave.ErrAlreadyCancelled, http.StatusConflict, "ALREADY_CANCELLED"},
	{leave.ErrCannotCancelRejected, http.StatusConflict, "CANNOT_CANCEL_REJECTED"},

	// Master data gaps
	{leave.ErrNoApproverAssigned, http.StatusUnprocessableEntity, "NO_APPROVER_ASSIGNED"},
	{leave.ErrNoAdminAvailable, http.StatusUnprocessableEntity, "NO_ADMIN_AVAILABLE"},
	{leave.ErrNoPolicyDefined, http.StatusUnprocessableEntity, "NO_POLICY_DEFINED"},

	// Authorization
	{leave.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED_ACTION"},
	{user.ErrAdminPrivilegeRequired, http.StatusForbidden, "ADMIN_REQUIRED"},
	{user.ErrHeadManagerRequired, http.StatusForbidden, "HEAD_MANAGER_REQUIRED"},
	{user.ErrDifferentTenant, http.StatusForbidden, "DIFFERENT_TENANT"},
	{user.ErrDifferentDepartment, http.StatusForbidden, "DIFFERENT_DEPARTMENT"},

	// Hierarchy
	{user.ErrSelfAssignment, http.StatusBadRequest, "SELF_ASSIGNMENT"},
	{user.ErrCircularHierarchy, http.StatusConflict, "CIRCULAR_HIERARCHY"},
	{user.ErrAlreadyHeadManager, http.StatusConflict, "ALREADY_HEAD_MANAGER"},

	// Not found
	{leave.ErrLeaveApplicationNotFound, http.StatusNotFound, "NOT_FOUND"},
	{leave.ErrBalanceNotFound, http.StatusNotFound, "NOT_FOUND"},
	{user.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
	{user.ErrManagerNotFound, http.StatusNotFound, "NOT_FOUND"},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var balanceErr *leave.BalanceError
	if errors.As(err, &balanceErr) {
		Fail(w, http.StatusBadRequest, "INSUFFICIENT_BALANCE", leave.ErrInsufficientBalance.Error(), map[string]string{
			"available": balanceErr.Available.String(),
			"requested": balanceErr.Requested.String(),
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			Fail(w, m.status, m.code, m.target.Error(), nil)
			return
		}
	}

	if database.IsRetryable(err) {
		slog.Warn("Transient store failure surfaced to client", "error", err)
		ServiceUnavailable(w, "Service temporarily unavailable, please retry")
		return
	}

	// Default
	slog.Error("Unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
