package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
)

// maxDepth caps the upward manager walk. Chains longer than this are treated
// as circular.
const maxDepth = 64

type HierarchyServiceImpl struct {
	tx    database.Transactor
	users user.UserRepository
}

func NewHierarchyService(tx database.Transactor, users user.UserRepository) *HierarchyServiceImpl {
	return &HierarchyServiceImpl{tx: tx, users: users}
}

// MakeHeadManager implements user.HierarchyService.
func (s *HierarchyServiceImpl) MakeHeadManager(ctx context.Context, actorID, targetID string) (user.UserResponse, error) {
	var updated user.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		actor, err := s.users.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			return user.ErrAdminPrivilegeRequired
		}

		target, err := s.users.LockByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target.TenantID != actor.TenantID {
			return user.ErrUserNotFound
		}

		if err := s.users.UpdateHierarchy(ctx, target.ID, user.HierarchyUpdate{
			ManagerID:     nil,
			IsManager:     true,
			IsHeadManager: true,
		}); err != nil {
			return err
		}
		updated, err = s.users.GetByID(ctx, target.ID)
		return err
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("User promoted to head manager", "user_id", targetID, "actor_id", actorID)
	return user.ToUserResponse(updated), nil
}

// MakeManager implements user.HierarchyService. The target reports to the
// acting head manager afterwards.
func (s *HierarchyServiceImpl) MakeManager(ctx context.Context, actorID, targetID string) (user.UserResponse, error) {
	var updated user.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		head, err := s.headManager(ctx, actorID)
		if err != nil {
			return err
		}
		if targetID == head.ID {
			return user.ErrSelfAssignment
		}

		target, err := s.users.LockByID(ctx, targetID)
		if err != nil {
			return err
		}
		if err := sameDepartment(head, target); err != nil {
			return err
		}
		if target.IsHeadManager {
			return user.ErrAlreadyHeadManager
		}

		if err := s.checkCycle(ctx, target.ID, head.ID); err != nil {
			return err
		}

		headID := head.ID
		if err := s.users.UpdateHierarchy(ctx, target.ID, user.HierarchyUpdate{
			ManagerID: &headID,
			IsManager: true,
		}); err != nil {
			return err
		}
		updated, err = s.users.GetByID(ctx, target.ID)
		return err
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("User made manager", "user_id", targetID, "head_manager_id", actorID)
	return user.ToUserResponse(updated), nil
}

// AssignManager implements user.HierarchyService.
func (s *HierarchyServiceImpl) AssignManager(ctx context.Context, req user.AssignManagerRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	var updated user.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		head, err := s.headManager(ctx, req.ActorID)
		if err != nil {
			return err
		}

		employee, err := s.users.LockByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		manager, err := s.users.GetByID(ctx, req.ManagerID)
		if errors.Is(err, user.ErrUserNotFound) {
			return user.ErrManagerNotFound
		}
		if err != nil {
			return err
		}

		if err := sameDepartment(head, employee); err != nil {
			return err
		}
		if err := sameDepartment(head, manager); err != nil {
			return err
		}
		if employee.ID == manager.ID {
			return user.ErrSelfAssignment
		}
		if err := s.checkCycle(ctx, employee.ID, manager.ID); err != nil {
			return err
		}

		managerID := manager.ID
		if err := s.users.UpdateHierarchy(ctx, employee.ID, user.HierarchyUpdate{
			ManagerID:     &managerID,
			IsManager:     employee.IsManager,
			IsHeadManager: employee.IsHeadManager,
		}); err != nil {
			return err
		}
		updated, err = s.users.GetByID(ctx, employee.ID)
		return err
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("Employee assigned to manager",
		"employee_id", req.EmployeeID,
		"manager_id", req.ManagerID,
		"head_manager_id", req.ActorID,
	)
	return user.ToUserResponse(updated), nil
}

// GetHierarchy implements user.HierarchyService.
func (s *HierarchyServiceImpl) GetHierarchy(ctx context.Context, actorID, userID string) (user.HierarchyResponse, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return user.HierarchyResponse{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.HierarchyResponse{}, err
	}
	if u.TenantID != actor.TenantID {
		return user.HierarchyResponse{}, user.ErrUserNotFound
	}

	resp := user.HierarchyResponse{
		User:         user.ToUserResponse(u),
		Subordinates: []user.UserResponse{},
	}

	if u.ManagerID != nil {
		manager, err := s.users.GetByID(ctx, *u.ManagerID)
		if err != nil && !errors.Is(err, user.ErrUserNotFound) {
			return user.HierarchyResponse{}, err
		}
		if err == nil {
			m := user.ToUserResponse(manager)
			resp.Manager = &m
		}
	}

	subordinates, err := s.users.GetSubordinates(ctx, u.ID)
	if err != nil {
		return user.HierarchyResponse{}, fmt.Errorf("failed to get subordinates: %w", err)
	}
	for _, sub := range subordinates {
		resp.Subordinates = append(resp.Subordinates, user.ToUserResponse(sub))
	}
	return resp, nil
}

// ListManagers implements user.HierarchyService.
func (s *HierarchyServiceImpl) ListManagers(ctx context.Context, actorID string) ([]user.UserResponse, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	managers, err := s.users.ListManagers(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	out := make([]user.UserResponse, 0, len(managers))
	for _, m := range managers {
		out = append(out, user.ToUserResponse(m))
	}
	return out, nil
}

func (s *HierarchyServiceImpl) headManager(ctx context.Context, actorID string) (user.User, error) {
	head, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return user.User{}, err
	}
	if !head.IsHeadManager {
		return user.User{}, user.ErrHeadManagerRequired
	}
	return head, nil
}

func sameDepartment(head, other user.User) error {
	if head.TenantID != other.TenantID {
		return user.ErrDifferentTenant
	}
	if !head.SameDepartment(other) {
		return user.ErrDifferentDepartment
	}
	return nil
}

// checkCycle walks upward from managerID and fails when employeeID is met,
// a user repeats, or the walk exceeds maxDepth.
func (s *HierarchyServiceImpl) checkCycle(ctx context.Context, employeeID, managerID string) error {
	visited := make(map[string]struct{}, 8)
	current := managerID
	for depth := 0; depth < maxDepth; depth++ {
		if current == employeeID {
			return user.ErrCircularHierarchy
		}
		if _, seen := visited[current]; seen {
			return user.ErrCircularHierarchy
		}
		visited[current] = struct{}{}

		next, err := s.users.GetManagerID(ctx, current)
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to walk hierarchy: %w", err)
		}
		if next == nil {
			return nil
		}
		current = *next
	}
	return user.ErrCircularHierarchy
}
