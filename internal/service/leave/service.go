package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Repositories groups the stores the leave lifecycle reads and writes.
type Repositories struct {
	Users        user.UserRepository
	Applications leave.LeaveApplicationRepository
	Balances     leave.LeaveBalanceRepository
	Policies     leave.RoleLeavePolicyRepository
	Holidays     holiday.HolidayRepository
	Attendance   attendance.AttendanceRepository
}

// LeaveServiceImpl implements both leave.LeaveService and leave.ApprovalService.
type LeaveServiceImpl struct {
	tx           database.Transactor
	users        user.UserRepository
	applications leave.LeaveApplicationRepository
	policies     leave.RoleLeavePolicyRepository
	attendance   attendance.AttendanceRepository

	counter   *DayCounter
	ledger    *BalanceLedger
	router    *ApproverRouter
	validator *LeaveValidator

	location *time.Location
	now      func() time.Time
}

func NewLeaveService(tx database.Transactor, repos Repositories, location *time.Location) *LeaveServiceImpl {
	if location == nil {
		location = time.Local
	}
	counter := NewDayCounter(NewCalendarResolver(repos.Holidays))
	ledger := NewBalanceLedger(repos.Balances, repos.Applications, repos.Policies, repos.Users)

	return &LeaveServiceImpl{
		tx:           tx,
		users:        repos.Users,
		applications: repos.Applications,
		policies:     repos.Policies,
		attendance:   repos.Attendance,
		counter:      counter,
		ledger:       ledger,
		router:       NewApproverRouter(repos.Users),
		validator:    NewLeaveValidator(repos.Users, repos.Applications, repos.Attendance, counter, ledger, location),
		location:     location,
		now:          time.Now,
	}
}

// SetClock replaces the time source of the service and its validator.
func (s *LeaveServiceImpl) SetClock(now func() time.Time) {
	s.now = now
	s.validator.now = now
}

func (s *LeaveServiceImpl) today() time.Time {
	return utils.Today(s.now(), s.location)
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error) {
	in, err := req.Input()
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	var created leave.LeaveApplication
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		result, err := s.validator.Validate(ctx, req.UserID, in)
		if err != nil {
			return err
		}

		approverID, err := s.router.ResolveApprover(ctx, result.Applicant)
		if err != nil {
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate leave application id: %w", err)
		}

		created, err = s.applications.Create(ctx, leave.LeaveApplication{
			ID:                id.String(),
			UserID:            result.Applicant.ID,
			TenantID:          result.Applicant.TenantID,
			LeaveTypeID:       in.LeaveTypeID,
			StartDate:         in.StartDate,
			EndDate:           in.EndDate,
			HalfDayType:       in.HalfDayType,
			TotalDays:         result.TotalDays,
			Year:              result.Year,
			Reason:            in.Reason,
			Status:            leave.StatusPending,
			CurrentApproverID: approverID,
			AppliedAt:         s.now().UTC(),
		})
		return err
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	slog.Info("Leave application submitted",
		"application_id", created.ID,
		"user_id", created.UserID,
		"approver_id", created.CurrentApproverID,
		"total_days", created.TotalDays.String(),
	)
	return s.load(ctx, created.ID, false)
}

// ListMine implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMine(ctx context.Context, userID string, filter leave.ApplicationFilter) ([]leave.LeaveApplicationResponse, error) {
	apps, err := s.applications.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave applications: %w", err)
	}
	return leave.ToLeaveApplicationResponses(apps), nil
}

// GetApplication implements leave.LeaveService. Only the applicant and the
// assigned approver may read an application.
func (s *LeaveServiceImpl) GetApplication(ctx context.Context, actorID, id string) (leave.LeaveApplicationResponse, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if actorID != app.UserID && actorID != app.CurrentApproverID {
		return leave.LeaveApplicationResponse{}, leave.ErrUnauthorized
	}
	return s.load(ctx, id, true)
}

// GetBalances implements leave.LeaveService. Every active policy of the
// user's role yields one summary, computed concurrently. A year of zero
// means the current year.
func (s *LeaveServiceImpl) GetBalances(ctx context.Context, userID string, year int) ([]leave.BalanceSummary, error) {
	if year <= 0 {
		year = s.today().Year()
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	policies, err := s.policies.ListActiveByRole(ctx, u.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave policies: %w", err)
	}

	summaries := make([]leave.BalanceSummary, len(policies))
	g, gctx := errgroup.WithContext(ctx)
	for i, policy := range policies {
		g.Go(func() error {
			summary, err := s.ledger.Available(gctx, userID, policy.LeaveTypeID, year)
			if err != nil {
				return err
			}
			summary.LeaveTypeName = policy.LeaveTypeName
			summary.LeaveTypeCode = policy.LeaveTypeCode
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// load re-reads an application with its joins and, when withAttendance is
// set, its materialized attendance days.
func (s *LeaveServiceImpl) load(ctx context.Context, id string, withAttendance bool) (leave.LeaveApplicationResponse, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	resp := leave.ToLeaveApplicationResponse(app)
	if !withAttendance || app.Status != leave.StatusApproved {
		return resp, nil
	}

	rows, err := s.attendance.ListByLeaveApplication(ctx, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to list leave attendance: %w", err)
	}
	for _, row := range rows {
		resp.Attendance = append(resp.Attendance, attendance.ToAttendanceResponse(row))
	}
	return resp, nil
}
