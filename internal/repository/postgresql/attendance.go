package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// HasConflict implements attendance.AttendanceRepository.
func (a *attendanceRepository) HasConflict(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendances
			WHERE user_id = $1
			  AND date BETWEEN $2 AND $3
			  AND status <> $4
		)`

	var exists bool
	err := q.QueryRow(ctx, query, userID, start, end, string(attendance.StatusPending)).Scan(&exists)
	return exists, err
}

// CreateLeaveAttendance implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateLeaveAttendance(ctx context.Context, rows []attendance.Attendance) error {
	if len(rows) == 0 {
		return nil
	}

	q := GetQuerier(ctx, a.db)

	// Build batch insert query
	valueStrings := make([]string, 0, len(rows))
	valueArgs := make([]interface{}, 0, len(rows)*6)

	for i, row := range rows {
		if row.LeaveApplicationID == nil {
			return attendance.ErrLeaveLinkRequired
		}
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		valueArgs = append(valueArgs,
			row.ID,
			row.UserID,
			row.TenantID,
			row.Date,
			string(attendance.StatusOnLeave),
			*row.LeaveApplicationID,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO attendances (id, user_id, tenant_id, date, status, leave_application_id)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		if database.IsUniqueViolation(err) {
			return attendance.ErrDateTaken
		}
		return fmt.Errorf("failed to batch create leave attendance: %w", err)
	}
	return nil
}

// DeleteByLeaveApplication implements attendance.AttendanceRepository.
func (a *attendanceRepository) DeleteByLeaveApplication(ctx context.Context, leaveApplicationID string) (int64, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		DELETE FROM attendances
		WHERE leave_application_id = $1 AND status = $2`

	tag, err := q.Exec(ctx, query, leaveApplicationID, string(attendance.StatusOnLeave))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListByLeaveApplication implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByLeaveApplication(ctx context.Context, leaveApplicationID string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, user_id, tenant_id, date, status, leave_application_id,
		       check_in_at, check_out_at, created_at, updated_at
		FROM attendances
		WHERE leave_application_id = $1
		ORDER BY date ASC`

	rows, err := q.Query(ctx, query, leaveApplicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var r attendance.Attendance
		err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.TenantID,
			&r.Date,
			&r.Status,
			&r.LeaveApplicationID,
			&r.CheckInAt,
			&r.CheckOutAt,
			&r.CreatedAt,
			&r.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
