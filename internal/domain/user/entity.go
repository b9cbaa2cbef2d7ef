package user

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"    // Tenant administrator, approves head managers' leave
	RoleManager  Role = "MANAGER"  // Can approve leave of assigned employees
	RoleEmployee Role = "EMPLOYEE" // Regular employee
)

type User struct {
	ID            string
	TenantID      string
	BranchID      *string
	DepartmentID  *string
	RoleID        string
	RoleCode      Role
	EmployeeCode  string
	FullName      string
	Email         string
	ManagerID     *string
	IsManager     bool
	IsHeadManager bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAdmin checks if user holds the tenant admin role
func (u *User) IsAdmin() bool {
	return u.RoleCode == RoleAdmin
}

// CanApprove checks if user may see an approval queue
func (u *User) CanApprove() bool {
	return u.IsAdmin() || u.RoleCode == RoleManager || u.IsManager || u.IsHeadManager
}

// SameDepartment reports whether both users belong to the same tenant and department.
func (u *User) SameDepartment(other User) bool {
	if u.TenantID != other.TenantID {
		return false
	}
	if u.DepartmentID == nil || other.DepartmentID == nil {
		return u.DepartmentID == nil && other.DepartmentID == nil
	}
	return *u.DepartmentID == *other.DepartmentID
}

// HierarchyUpdate carries the hierarchy columns written by the hierarchy operations.
type HierarchyUpdate struct {
	ManagerID     *string
	IsManager     bool
	IsHeadManager bool
}
