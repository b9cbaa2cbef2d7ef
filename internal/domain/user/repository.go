package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	// LockByID reads the user row with FOR UPDATE; only meaningful inside a transaction.
	LockByID(ctx context.Context, id string) (User, error)
	// FindAdmin returns one active ADMIN of the tenant, or ErrUserNotFound.
	FindAdmin(ctx context.Context, tenantID string) (User, error)
	GetManagerID(ctx context.Context, id string) (*string, error)
	GetSubordinates(ctx context.Context, managerID string) ([]User, error)
	ListManagers(ctx context.Context, tenantID string) ([]User, error)
	UpdateHierarchy(ctx context.Context, id string, update HierarchyUpdate) error
}
