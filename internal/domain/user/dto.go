package user

import (
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID            string  `json:"id"`
	EmployeeCode  string  `json:"employee_code"`
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	DepartmentID  *string `json:"department_id,omitempty"`
	BranchID      *string `json:"branch_id,omitempty"`
	ManagerID     *string `json:"manager_id,omitempty"`
	IsManager     bool    `json:"is_manager"`
	IsHeadManager bool    `json:"is_head_manager"`
	UpdatedAt     string  `json:"updated_at"`
}

func ToUserResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		EmployeeCode:  u.EmployeeCode,
		FullName:      u.FullName,
		Email:         u.Email,
		Role:          string(u.RoleCode),
		DepartmentID:  u.DepartmentID,
		BranchID:      u.BranchID,
		ManagerID:     u.ManagerID,
		IsManager:     u.IsManager,
		IsHeadManager: u.IsHeadManager,
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}

// HierarchyResponse is a user with their manager and direct reports
type HierarchyResponse struct {
	User         UserResponse   `json:"user"`
	Manager      *UserResponse  `json:"manager,omitempty"`
	Subordinates []UserResponse `json:"subordinates"`
}

// AssignManagerRequest assigns an employee to a manager under the acting head manager
type AssignManagerRequest struct {
	ActorID    string `json:"-"`
	EmployeeID string `json:"-"`
	ManagerID  string `json:"manager_id"`
}

func (r *AssignManagerRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if validator.IsEmpty(r.ManagerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "manager_id",
			Message: "manager_id is required",
		})
	} else if !validator.IsValidUUID(r.ManagerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "manager_id",
			Message: "manager_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
