package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	reasonMinLength = 5
	reasonMaxLength = 500
	// calendarMaxDays bounds the team calendar window.
	calendarMaxDays = 366
)

// LeaveInput is a validated leave request as consumed by the validator.
type LeaveInput struct {
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	HalfDayType *HalfDayType
	Reason      string
}

type ApplyLeaveRequest struct {
	UserID      string  `json:"-"`
	LeaveTypeID string  `json:"leave_type_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	HalfDayType *string `json:"half_day_type,omitempty"`
	Reason      string  `json:"reason"`
}

// Validate checks the request shape. Date ordering and half-day shape are
// business rules and are reported by the service.
func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	} else if !validator.IsValidUUID(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id must be a valid UUID",
		})
	}

	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if r.HalfDayType != nil && !validator.IsInSlice(*r.HalfDayType, halfDayTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "half_day_type",
			Message: "half_day_type must be one of " + strings.Join(halfDayTypes, ", "),
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if !validator.IsLengthBetween(r.Reason, reasonMinLength, reasonMaxLength) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must be between 5 and 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Input validates the request and converts it into a LeaveInput.
func (r *ApplyLeaveRequest) Input() (LeaveInput, error) {
	if err := r.Validate(); err != nil {
		return LeaveInput{}, err
	}
	start, _ := utils.ParseDate(r.StartDate)
	end, _ := utils.ParseDate(r.EndDate)

	in := LeaveInput{
		LeaveTypeID: r.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      r.Reason,
	}
	if r.HalfDayType != nil {
		h := HalfDayType(*r.HalfDayType)
		in.HalfDayType = &h
	}
	return in, nil
}

// ApplicationFilter narrows application listings. Nil fields are not applied.
type ApplicationFilter struct {
	Status      *ApplicationStatus
	Year        *int
	LeaveTypeID *string
}

// ApplicationFilterRequest is the raw query string form of ApplicationFilter
type ApplicationFilterRequest struct {
	Status      string
	Year        string
	LeaveTypeID string
}

func (r *ApplicationFilterRequest) ToFilter() (ApplicationFilter, error) {
	var errs validator.ValidationErrors
	var filter ApplicationFilter

	if !validator.IsEmpty(r.Status) {
		if !validator.IsInSlice(r.Status, applicationStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of " + strings.Join(applicationStatuses, ", "),
			})
		} else {
			status := ApplicationStatus(r.Status)
			filter.Status = &status
		}
	}

	if !validator.IsEmpty(r.Year) {
		year, ok := validator.IsValidYear(r.Year)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "year",
				Message: "year must be a four digit year",
			})
		} else {
			filter.Year = &year
		}
	}

	if !validator.IsEmpty(r.LeaveTypeID) {
		if !validator.IsValidUUID(r.LeaveTypeID) {
			errs = append(errs, validator.ValidationError{
				Field:   "leave_type_id",
				Message: "leave_type_id must be a valid UUID",
			})
		} else {
			id := r.LeaveTypeID
			filter.LeaveTypeID = &id
		}
	}

	if len(errs) > 0 {
		return ApplicationFilter{}, errs
	}
	return filter, nil
}

type RejectLeaveRequest struct {
	ApplicationID string `json:"-"`
	ActorID       string `json:"-"`
	Reason        string `json:"reason"`
}

func (r *RejectLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ApplicationID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if !validator.IsLengthBetween(r.Reason, reasonMinLength, reasonMaxLength) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must be between 5 and 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TeamCalendarRequest struct {
	StartDate string
	EndDate   string
}

// Range validates the request and returns the parsed window.
func (r *TeamCalendarRequest) Range() (time.Time, time.Time, error) {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if okStart && okEnd {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be on or after start_date",
			})
		} else if end.Sub(start) > calendarMaxDays*24*time.Hour {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "calendar range must not exceed 366 days",
			})
		}
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return start, end, nil
}

type LeaveApplicationResponse struct {
	ID                string                          `json:"id"`
	UserID            string                          `json:"user_id"`
	ApplicantName     *string                         `json:"applicant_name,omitempty"`
	EmployeeCode      *string                         `json:"employee_code,omitempty"`
	LeaveTypeID       string                          `json:"leave_type_id"`
	LeaveTypeName     *string                         `json:"leave_type_name,omitempty"`
	LeaveTypeCode     *string                         `json:"leave_type_code,omitempty"`
	StartDate         string                          `json:"start_date"`
	EndDate           string                          `json:"end_date"`
	HalfDayType       *string                         `json:"half_day_type,omitempty"`
	TotalDays         decimal.Decimal                 `json:"total_days"`
	Year              int                             `json:"year"`
	Reason            string                          `json:"reason"`
	Status            string                          `json:"status"`
	CurrentApproverID string                          `json:"current_approver_id"`
	AppliedAt         string                          `json:"applied_at"`
	ApprovedBy        *string                         `json:"approved_by,omitempty"`
	ApprovedAt        *string                         `json:"approved_at,omitempty"`
	RejectedBy        *string                         `json:"rejected_by,omitempty"`
	RejectedAt        *string                         `json:"rejected_at,omitempty"`
	RejectionReason   *string                         `json:"rejection_reason,omitempty"`
	CancelledBy       *string                         `json:"cancelled_by,omitempty"`
	CancelledAt       *string                         `json:"cancelled_at,omitempty"`
	Attendance        []attendance.AttendanceResponse `json:"attendance,omitempty"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func ToLeaveApplicationResponse(a LeaveApplication) LeaveApplicationResponse {
	resp := LeaveApplicationResponse{
		ID:                a.ID,
		UserID:            a.UserID,
		ApplicantName:     a.ApplicantName,
		EmployeeCode:      a.EmployeeCode,
		LeaveTypeID:       a.LeaveTypeID,
		LeaveTypeName:     a.LeaveTypeName,
		LeaveTypeCode:     a.LeaveTypeCode,
		StartDate:         utils.DateKey(a.StartDate),
		EndDate:           utils.DateKey(a.EndDate),
		TotalDays:         a.TotalDays,
		Year:              a.Year,
		Reason:            a.Reason,
		Status:            string(a.Status),
		CurrentApproverID: a.CurrentApproverID,
		AppliedAt:         a.AppliedAt.Format(time.RFC3339),
		ApprovedBy:        a.ApprovedBy,
		ApprovedAt:        formatTime(a.ApprovedAt),
		RejectedBy:        a.RejectedBy,
		RejectedAt:        formatTime(a.RejectedAt),
		RejectionReason:   a.RejectionReason,
		CancelledBy:       a.CancelledBy,
		CancelledAt:       formatTime(a.CancelledAt),
	}
	if a.HalfDayType != nil {
		h := string(*a.HalfDayType)
		resp.HalfDayType = &h
	}
	return resp
}

func ToLeaveApplicationResponses(apps []LeaveApplication) []LeaveApplicationResponse {
	out := make([]LeaveApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, ToLeaveApplicationResponse(a))
	}
	return out
}
