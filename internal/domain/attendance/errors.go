package attendance

import "errors"

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrLeaveLinkRequired  = errors.New("on-leave attendance must reference a leave application")
	ErrDateTaken          = errors.New("attendance already exists for this user and date")
)
