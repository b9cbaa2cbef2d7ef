package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrManagerNotFound        = errors.New("manager not found")
	ErrHeadManagerRequired    = errors.New("head manager access required")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrDifferentTenant        = errors.New("users belong to different organizations")
	ErrDifferentDepartment    = errors.New("users belong to different departments")
	ErrSelfAssignment         = errors.New("user cannot be assigned as their own manager")
	ErrCircularHierarchy      = errors.New("assignment would create a circular reporting line")
	ErrAlreadyHeadManager     = errors.New("user is already a head manager")
)
