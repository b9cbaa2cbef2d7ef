package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type leaveApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.LeaveApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

const leaveApplicationColumns = `
	la.id, la.user_id, la.tenant_id, la.leave_type_id, la.start_date, la.end_date,
	la.half_day_type, la.total_days, la.year, la.reason, la.status, la.current_approver_id,
	la.applied_at, la.approved_by, la.approved_at, la.rejected_by, la.rejected_at,
	la.rejection_reason, la.cancelled_by, la.cancelled_at, la.created_at, la.updated_at,
	lt.name, lt.code, u.full_name, u.employee_code`

const leaveApplicationFrom = `
	FROM leave_applications la
	LEFT JOIN leave_types lt ON lt.id = la.leave_type_id
	LEFT JOIN users u ON u.id = la.user_id`

func scanLeaveApplication(row pgx.Row) (leave.LeaveApplication, error) {
	var la leave.LeaveApplication
	err := row.Scan(
		&la.ID,
		&la.UserID,
		&la.TenantID,
		&la.LeaveTypeID,
		&la.StartDate,
		&la.EndDate,
		&la.HalfDayType,
		&la.TotalDays,
		&la.Year,
		&la.Reason,
		&la.Status,
		&la.CurrentApproverID,
		&la.AppliedAt,
		&la.ApprovedBy,
		&la.ApprovedAt,
		&la.RejectedBy,
		&la.RejectedAt,
		&la.RejectionReason,
		&la.CancelledBy,
		&la.CancelledAt,
		&la.CreatedAt,
		&la.UpdatedAt,
		&la.LeaveTypeName,
		&la.LeaveTypeCode,
		&la.ApplicantName,
		&la.EmployeeCode,
	)
	return la, err
}

func (r *leaveApplicationRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []leave.LeaveApplication
	for rows.Next() {
		la, err := scanLeaveApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, la)
	}
	return apps, rows.Err()
}

// applyFilter appends the optional filter predicates to where, numbering
// placeholders after the existing args.
func applyFilter(where []string, args []interface{}, filter leave.ApplicationFilter) ([]string, []interface{}) {
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("la.status = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		where = append(where, fmt.Sprintf("la.year = $%d", len(args)))
	}
	if filter.LeaveTypeID != nil {
		args = append(args, *filter.LeaveTypeID)
		where = append(where, fmt.Sprintf("la.leave_type_id = $%d", len(args)))
	}
	return where, args
}

// Create implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Create(ctx context.Context, app leave.LeaveApplication) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_applications (
			id, user_id, tenant_id, leave_type_id,
			start_date, end_date, half_day_type, total_days, year, reason,
			status, current_approver_id, applied_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9, $10,
			$11, $12, $13,
			$13, $13
		)
		RETURNING created_at, updated_at`

	err := q.QueryRow(ctx, query,
		app.ID,
		app.UserID,
		app.TenantID,
		app.LeaveTypeID,
		app.StartDate,
		app.EndDate,
		app.HalfDayType,
		app.TotalDays,
		app.Year,
		app.Reason,
		string(app.Status),
		app.CurrentApproverID,
		app.AppliedAt,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return leave.LeaveApplication{}, fmt.Errorf("failed to create leave application: %w", err)
	}
	return app, nil
}

// GetByID implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveApplicationColumns + leaveApplicationFrom + `
		WHERE la.id = $1`

	la, err := scanLeaveApplication(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
	}
	return la, err
}

// LockByID implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) LockByID(ctx context.Context, id string) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveApplicationColumns + leaveApplicationFrom + `
		WHERE la.id = $1
		FOR UPDATE OF la`

	la, err := scanLeaveApplication(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
	}
	return la, err
}

// HasOverlapping implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) HasOverlapping(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_applications
			WHERE user_id = $1
			  AND status IN ($2, $3)
			  AND NOT (end_date < $4 OR start_date > $5)
		)`

	var exists bool
	err := q.QueryRow(ctx, query, userID,
		string(leave.StatusPending), string(leave.StatusApproved), start, end,
	).Scan(&exists)
	return exists, err
}

// SumPending implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) SumPending(ctx context.Context, userID, leaveTypeID string, year int, excludeID string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(total_days), 0)
		FROM leave_applications
		WHERE user_id = $1 AND leave_type_id = $2 AND year = $3
		  AND status = $4
		  AND ($5 = '' OR id::text <> $5)`

	var total decimal.Decimal
	err := q.QueryRow(ctx, query, userID, leaveTypeID, year, string(leave.StatusPending), excludeID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ListByUser implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ListByUser(ctx context.Context, userID string, filter leave.ApplicationFilter) ([]leave.LeaveApplication, error) {
	where, args := applyFilter([]string{"la.user_id = $1"}, []interface{}{userID}, filter)

	query := `SELECT ` + leaveApplicationColumns + leaveApplicationFrom + `
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY la.applied_at DESC`

	return r.list(ctx, query, args...)
}

// ListPendingByApprover implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ListPendingByApprover(ctx context.Context, approverID string, filter leave.ApplicationFilter) ([]leave.LeaveApplication, error) {
	filter.Status = nil
	where, args := applyFilter(
		[]string{"la.current_approver_id = $1", "la.status = $2"},
		[]interface{}{approverID, string(leave.StatusPending)},
		filter,
	)

	query := `SELECT ` + leaveApplicationColumns + leaveApplicationFrom + `
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY la.applied_at ASC`

	return r.list(ctx, query, args...)
}

// ListApprovedInDepartment implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ListApprovedInDepartment(ctx context.Context, tenantID, departmentID string, start, end time.Time) ([]leave.LeaveApplication, error) {
	query := `SELECT ` + leaveApplicationColumns + leaveApplicationFrom + `
		WHERE la.tenant_id = $1
		  AND u.department_id = $2
		  AND la.status = $3
		  AND NOT (la.end_date < $4 OR la.start_date > $5)
		ORDER BY la.start_date ASC, u.full_name ASC`

	return r.list(ctx, query, tenantID, departmentID, string(leave.StatusApproved), start, end)
}

// MarkApproved implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) MarkApproved(ctx context.Context, id, actorID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_applications
		SET status = $1, approved_by = $2, approved_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := q.Exec(ctx, query, string(leave.StatusApproved), actorID, at, id, string(leave.StatusPending))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrInvalidState
	}
	return nil
}

// MarkRejected implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) MarkRejected(ctx context.Context, id, actorID, reason string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_applications
		SET status = $1, rejected_by = $2, rejected_at = $3, rejection_reason = $4, updated_at = $3
		WHERE id = $5 AND status = $6`

	tag, err := q.Exec(ctx, query, string(leave.StatusRejected), actorID, at, reason, id, string(leave.StatusPending))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrInvalidState
	}
	return nil
}

// MarkCancelled implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) MarkCancelled(ctx context.Context, id, actorID string, from leave.ApplicationStatus, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_applications
		SET status = $1, cancelled_by = $2, cancelled_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := q.Exec(ctx, query, string(leave.StatusCancelled), actorID, at, id, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrInvalidState
	}
	return nil
}
