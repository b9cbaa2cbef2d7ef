package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/google/uuid"
)

// Approve implements leave.ApprovalService. The status change, the balance
// charge and the attendance rows commit together or not at all.
func (s *LeaveServiceImpl) Approve(ctx context.Context, actorID, id string) (leave.LeaveApplicationResponse, error) {
	var materialized int
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		app, err := s.applications.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if app.CurrentApproverID != actorID {
			return leave.ErrUnauthorized
		}
		if app.Status != leave.StatusPending {
			return leave.ErrInvalidState
		}

		// The application's own days move from pending to used, so they are
		// left out of pending for the re-check.
		summary, balance, err := s.ledger.lockAvailable(ctx, app.UserID, app.LeaveTypeID, app.Year, app.ID)
		if err != nil {
			return err
		}
		if err := checkCovers(summary, app.TotalDays); err != nil {
			return err
		}

		if err := s.applications.MarkApproved(ctx, app.ID, actorID, s.now().UTC()); err != nil {
			return err
		}
		if err := s.ledger.charge(ctx, balance, app.TotalDays); err != nil {
			return err
		}

		materialized, err = s.materialize(ctx, app)
		return err
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	slog.Info("Leave application approved",
		"application_id", id,
		"approver_id", actorID,
		"attendance_days", materialized,
	)
	return s.load(ctx, id, true)
}

// materialize writes one ON_LEAVE attendance row per working day of the application.
func (s *LeaveServiceImpl) materialize(ctx context.Context, app leave.LeaveApplication) (int, error) {
	applicant, err := s.users.GetByID(ctx, app.UserID)
	if err != nil {
		return 0, err
	}

	dates, err := s.counter.WorkingDates(ctx, app.StartDate, app.EndDate, applicant.TenantID, applicant.BranchID)
	if err != nil {
		return 0, err
	}

	appID := app.ID
	rows := make([]attendance.Attendance, 0, len(dates))
	for _, date := range dates {
		id, err := uuid.NewV7()
		if err != nil {
			return 0, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		rows = append(rows, attendance.Attendance{
			ID:                 id.String(),
			UserID:             app.UserID,
			TenantID:           applicant.TenantID,
			Date:               date,
			Status:             attendance.StatusOnLeave,
			LeaveApplicationID: &appID,
		})
	}

	if err := s.attendance.CreateLeaveAttendance(ctx, rows); err != nil {
		if errors.Is(err, attendance.ErrDateTaken) {
			return 0, leave.ErrAttendanceConflict
		}
		return 0, err
	}
	return len(rows), nil
}

// Reject implements leave.ApprovalService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, req leave.RejectLeaveRequest) (leave.LeaveApplicationResponse, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return leave.LeaveApplicationResponse{}, leave.ErrRejectionReasonRequired
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		app, err := s.applications.LockByID(ctx, req.ApplicationID)
		if err != nil {
			return err
		}
		if app.CurrentApproverID != req.ActorID {
			return leave.ErrUnauthorized
		}
		if app.Status != leave.StatusPending {
			return leave.ErrInvalidState
		}
		return s.applications.MarkRejected(ctx, app.ID, req.ActorID, reason, s.now().UTC())
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	slog.Info("Leave application rejected",
		"application_id", req.ApplicationID,
		"approver_id", req.ActorID,
	)
	return s.load(ctx, req.ApplicationID, false)
}

// Cancel implements leave.LeaveService. Cancelling an approved application
// refunds the balance and removes its attendance rows in the same transaction.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, actorID, id string) (leave.LeaveApplicationResponse, error) {
	var prior leave.ApplicationStatus
	var removed int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		app, err := s.applications.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if app.UserID != actorID {
			return leave.ErrUnauthorized
		}
		switch app.Status {
		case leave.StatusCancelled:
			return leave.ErrAlreadyCancelled
		case leave.StatusRejected:
			return leave.ErrCannotCancelRejected
		}
		if app.StartDate.Before(s.today()) {
			return leave.ErrLeaveAlreadyStarted
		}

		prior = app.Status
		if err := s.applications.MarkCancelled(ctx, app.ID, actorID, prior, s.now().UTC()); err != nil {
			return err
		}
		if prior != leave.StatusApproved {
			return nil
		}

		balance, err := s.ledger.lock(ctx, app.UserID, app.LeaveTypeID, app.Year)
		if err != nil {
			return err
		}
		if err := s.ledger.refund(ctx, balance.ID, app.TotalDays); err != nil {
			return err
		}
		removed, err = s.attendance.DeleteByLeaveApplication(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("failed to delete leave attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	slog.Info("Leave application cancelled",
		"application_id", id,
		"user_id", actorID,
		"previous_status", string(prior),
		"attendance_removed", removed,
	)
	return s.load(ctx, id, false)
}
