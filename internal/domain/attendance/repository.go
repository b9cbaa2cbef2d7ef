package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the attendance store as seen by the leave lifecycle.
// It never touches rows whose status is not ON_LEAVE except to read them.
type AttendanceRepository interface {
	// HasConflict reports whether the user has any non-PENDING attendance in [start, end].
	HasConflict(ctx context.Context, userID string, start, end time.Time) (bool, error)

	// CreateLeaveAttendance inserts ON_LEAVE rows in bulk.
	CreateLeaveAttendance(ctx context.Context, rows []Attendance) error

	// DeleteByLeaveApplication removes the ON_LEAVE rows linked to the application
	// and returns how many were deleted.
	DeleteByLeaveApplication(ctx context.Context, leaveApplicationID string) (int64, error)

	ListByLeaveApplication(ctx context.Context, leaveApplicationID string) ([]Attendance, error)
}
