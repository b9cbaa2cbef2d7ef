package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "PENDING"
	StatusApproved  ApplicationStatus = "APPROVED"
	StatusRejected  ApplicationStatus = "REJECTED"
	StatusCancelled ApplicationStatus = "CANCELLED"
)

var applicationStatuses = []string{
	string(StatusPending), string(StatusApproved), string(StatusRejected), string(StatusCancelled),
}

type HalfDayType string

const (
	HalfDayFirst  HalfDayType = "FIRST_HALF"
	HalfDaySecond HalfDayType = "SECOND_HALF"
)

var halfDayTypes = []string{string(HalfDayFirst), string(HalfDaySecond)}

// HalfDayDays is the fixed charge of a half-day application.
var HalfDayDays = decimal.New(5, -1)

type AccrualType string

const (
	AccrualYearly  AccrualType = "YEARLY"
	AccrualMonthly AccrualType = "MONTHLY"
	AccrualNone    AccrualType = "NONE"
)

// LeaveType entity
type LeaveType struct {
	ID          string
	TenantID    string
	Name        string
	Code        string
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleLeavePolicy is the annual entitlement of one role for one leave type.
type RoleLeavePolicy struct {
	ID          string
	RoleID      string
	LeaveTypeID string
	AnnualQuota decimal.Decimal
	AccrualType AccrualType
	IsActive    bool

	// Join
	LeaveTypeName string
	LeaveTypeCode string
}

// LeaveBalance is the ledger row for (UserID, LeaveTypeID, Year).
type LeaveBalance struct {
	ID           string
	UserID       string
	LeaveTypeID  string
	Year         int
	Allocated    decimal.Decimal
	Used         decimal.Decimal
	CarryForward decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Remaining is allocated + carryForward - used, before pending applications are deducted.
func (b LeaveBalance) Remaining() decimal.Decimal {
	return b.Allocated.Add(b.CarryForward).Sub(b.Used)
}

// BalanceSummary is a balance row with the live pending total applied.
type BalanceSummary struct {
	LeaveTypeID   string          `json:"leave_type_id"`
	LeaveTypeName string          `json:"leave_type_name,omitempty"`
	LeaveTypeCode string          `json:"leave_type_code,omitempty"`
	Year          int             `json:"year"`
	Allocated     decimal.Decimal `json:"allocated"`
	CarryForward  decimal.Decimal `json:"carry_forward"`
	Used          decimal.Decimal `json:"used"`
	Pending       decimal.Decimal `json:"pending"`
	Available     decimal.Decimal `json:"available"`
}

// NewBalanceSummary computes available = allocated + carryForward - used - pending.
func NewBalanceSummary(b LeaveBalance, pending decimal.Decimal) BalanceSummary {
	return BalanceSummary{
		LeaveTypeID:  b.LeaveTypeID,
		Year:         b.Year,
		Allocated:    b.Allocated,
		CarryForward: b.CarryForward,
		Used:         b.Used,
		Pending:      pending,
		Available:    b.Remaining().Sub(pending),
	}
}

type LeaveApplication struct {
	ID          string
	UserID      string
	TenantID    string
	LeaveTypeID string

	StartDate   time.Time
	EndDate     time.Time
	HalfDayType *HalfDayType
	TotalDays   decimal.Decimal
	Year        int
	Reason      string

	Status            ApplicationStatus
	CurrentApproverID string
	AppliedAt         time.Time

	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectedBy      *string
	RejectedAt      *time.Time
	RejectionReason *string
	CancelledBy     *string
	CancelledAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	LeaveTypeName *string
	LeaveTypeCode *string
	ApplicantName *string
	EmployeeCode  *string
}

// Overlaps reports whether [StartDate, EndDate] intersects [start, end].
func (a LeaveApplication) Overlaps(start, end time.Time) bool {
	return !(a.EndDate.Before(start) || a.StartDate.After(end))
}

// BlocksNewApplications reports whether the application still occupies its dates.
func (a LeaveApplication) BlocksNewApplications() bool {
	return a.Status == StatusPending || a.Status == StatusApproved
}
