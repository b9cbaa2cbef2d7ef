package attendance

import (
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusOnLeave    Status = "ON_LEAVE"
)

// Attendance is one day of a user's attendance record. Rows with StatusOnLeave
// are owned by the leave lifecycle and always carry LeaveApplicationID.
type Attendance struct {
	ID                 string
	UserID             string
	TenantID           string
	Date               time.Time
	Status             Status
	LeaveApplicationID *string
	CheckInAt          *time.Time
	CheckOutAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
