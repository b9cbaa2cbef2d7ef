package attendance

// AttendanceResponse is an attendance day as shown alongside a leave application
type AttendanceResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

func ToAttendanceResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:     a.ID,
		Date:   a.Date.Format("2006-01-02"),
		Status: string(a.Status),
	}
}
