package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

// Validation is the outcome of a passed pre-submission check.
type Validation struct {
	Applicant user.User
	TotalDays decimal.Decimal
	Year      int
}

// LeaveValidator is the single gate a request passes before it is persisted.
type LeaveValidator struct {
	users        user.UserRepository
	applications leave.LeaveApplicationRepository
	attendance   attendance.AttendanceRepository
	counter      *DayCounter
	ledger       *BalanceLedger
	location     *time.Location
	now          func() time.Time
}

func NewLeaveValidator(
	users user.UserRepository,
	applications leave.LeaveApplicationRepository,
	attendanceRepo attendance.AttendanceRepository,
	counter *DayCounter,
	ledger *BalanceLedger,
	location *time.Location,
) *LeaveValidator {
	return &LeaveValidator{
		users:        users,
		applications: applications,
		attendance:   attendanceRepo,
		counter:      counter,
		ledger:       ledger,
		location:     location,
		now:          time.Now,
	}
}

// Validate runs the checks in a fixed order and stops at the first failure.
// Inside a transaction the applicant row stays locked until commit, which
// serializes concurrent submissions of the same user.
func (v *LeaveValidator) Validate(ctx context.Context, userID string, in leave.LeaveInput) (Validation, error) {
	applicant, err := v.users.LockByID(ctx, userID)
	if err != nil {
		return Validation{}, err
	}

	start := utils.DateOnly(in.StartDate)
	end := utils.DateOnly(in.EndDate)

	if start.Before(utils.Today(v.now(), v.location)) {
		return Validation{}, leave.ErrPastDateNotAllowed
	}

	if start.Year() != end.Year() {
		return Validation{}, leave.ErrCrossYearNotAllowed
	}

	overlapping, err := v.applications.HasOverlapping(ctx, userID, start, end)
	if err != nil {
		return Validation{}, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	if overlapping {
		return Validation{}, leave.ErrOverlappingApplication
	}

	conflict, err := v.attendance.HasConflict(ctx, userID, start, end)
	if err != nil {
		return Validation{}, fmt.Errorf("failed to check attendance: %w", err)
	}
	if conflict {
		return Validation{}, leave.ErrAttendanceConflict
	}

	totalDays, err := v.counter.CountDays(ctx, start, end, in.HalfDayType, applicant.TenantID, applicant.BranchID)
	if err != nil {
		return Validation{}, err
	}
	if !totalDays.IsPositive() {
		return Validation{}, leave.ErrNoWorkingDays
	}

	year := start.Year()
	summary, err := v.ledger.Available(ctx, userID, in.LeaveTypeID, year)
	if err != nil {
		return Validation{}, err
	}
	if err := checkCovers(summary, totalDays); err != nil {
		return Validation{}, err
	}

	return Validation{Applicant: applicant, TotalDays: totalDays, Year: year}, nil
}
