package fixtures

import (
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func strPtr(s string) *string { return &s }

// ==========================================
// SEEDED DATA RESULT
// ==========================================

// SeededDataIDs holds IDs of all seeded default data for a tenant
type SeededDataIDs struct {
	// Role IDs by code
	RoleIDs map[user.Role]string

	// Leave Type IDs by code
	LeaveTypeIDs map[string]string // e.g., "CL" -> "uuid"

	// Number of holidays inserted by this run
	HolidaysCreated int
}

// NewSeededDataIDs creates a new SeededDataIDs with initialized maps
func NewSeededDataIDs() *SeededDataIDs {
	return &SeededDataIDs{
		RoleIDs:      make(map[user.Role]string),
		LeaveTypeIDs: make(map[string]string),
	}
}

// ==========================================
// DEFAULT ROLES
// ==========================================

type RoleDefault struct {
	Code user.Role
	Name string
}

// GetDefaultRoles returns the three roles every tenant starts with
func GetDefaultRoles() []RoleDefault {
	return []RoleDefault{
		{Code: user.RoleAdmin, Name: "Admin"},
		{Code: user.RoleManager, Name: "Manager"},
		{Code: user.RoleEmployee, Name: "Employee"},
	}
}

// ==========================================
// DEFAULT LEAVE TYPES
// ==========================================

// GetDefaultLeaveTypes returns the standard leave types for a new tenant
func GetDefaultLeaveTypes(tenantID string) []leave.LeaveType {
	return []leave.LeaveType{
		{
			TenantID:    tenantID,
			Name:        "Casual Leave",
			Code:        "CL",
			Description: strPtr("Short personal leave, half days allowed"),
			IsActive:    true,
		},
		{
			TenantID:    tenantID,
			Name:        "Sick Leave",
			Code:        "SL",
			Description: strPtr("Leave for illness or medical appointments"),
			IsActive:    true,
		},
		{
			TenantID:    tenantID,
			Name:        "Privilege Leave",
			Code:        "PL",
			Description: strPtr("Planned annual leave"),
			IsActive:    true,
		},
	}
}

// ==========================================
// DEFAULT ROLE POLICIES
// ==========================================

// PolicyDefault is a role entitlement expressed by codes, resolved to IDs at seed time.
type PolicyDefault struct {
	Role          user.Role
	LeaveTypeCode string
	AnnualQuota   decimal.Decimal
}

// GetDefaultRolePolicies returns yearly entitlements. Admins get none by default.
func GetDefaultRolePolicies() []PolicyDefault {
	return []PolicyDefault{
		{Role: user.RoleEmployee, LeaveTypeCode: "CL", AnnualQuota: decimal.NewFromInt(12)},
		{Role: user.RoleEmployee, LeaveTypeCode: "SL", AnnualQuota: decimal.NewFromInt(10)},
		{Role: user.RoleEmployee, LeaveTypeCode: "PL", AnnualQuota: decimal.NewFromInt(15)},
		{Role: user.RoleManager, LeaveTypeCode: "CL", AnnualQuota: decimal.NewFromInt(15)},
		{Role: user.RoleManager, LeaveTypeCode: "SL", AnnualQuota: decimal.NewFromInt(12)},
		{Role: user.RoleManager, LeaveTypeCode: "PL", AnnualQuota: decimal.NewFromInt(18)},
	}
}

// ==========================================
// DEFAULT HOLIDAYS
// ==========================================

// GetDefaultHolidays returns the fixed-date national holidays of year.
// Moveable holidays are entered by the tenant admin.
func GetDefaultHolidays(tenantID string, year int) []holiday.Holiday {
	day := func(month time.Month, d int) time.Time {
		return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	}
	return []holiday.Holiday{
		{TenantID: tenantID, Name: "New Year's Day", Date: day(time.January, 1), Type: holiday.TypeNational},
		{TenantID: tenantID, Name: "Labour Day", Date: day(time.May, 1), Type: holiday.TypeNational},
		{TenantID: tenantID, Name: "Pancasila Day", Date: day(time.June, 1), Type: holiday.TypeNational},
		{TenantID: tenantID, Name: "Independence Day", Date: day(time.August, 17), Type: holiday.TypeNational},
		{TenantID: tenantID, Name: "Christmas Day", Date: day(time.December, 25), Type: holiday.TypeNational},
	}
}
