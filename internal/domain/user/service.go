package user

import "context"

// HierarchyService manages the manager edges between users of one tenant.
type HierarchyService interface {
	MakeHeadManager(ctx context.Context, actorID, targetID string) (UserResponse, error)
	MakeManager(ctx context.Context, actorID, targetID string) (UserResponse, error)
	AssignManager(ctx context.Context, req AssignManagerRequest) (UserResponse, error)
	GetHierarchy(ctx context.Context, actorID, userID string) (HierarchyResponse, error)
	ListManagers(ctx context.Context, actorID string) ([]UserResponse, error)
}
