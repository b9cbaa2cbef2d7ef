package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `
	u.id, u.tenant_id, u.branch_id, u.department_id, u.role_id, r.code,
	u.employee_code, u.full_name, u.email, u.manager_id, u.is_manager,
	u.is_head_manager, u.is_active, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.TenantID,
		&u.BranchID,
		&u.DepartmentID,
		&u.RoleID,
		&u.RoleCode,
		&u.EmployeeCode,
		&u.FullName,
		&u.Email,
		&u.ManagerID,
		&u.IsManager,
		&u.IsHeadManager,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func collectUsers(rows pgx.Rows) ([]user.User, error) {
	defer rows.Close()
	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + `
		FROM users u
		INNER JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrUserNotFound
	}
	return u, err
}

// LockByID implements user.UserRepository.
func (r *userRepositoryImpl) LockByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + `
		FROM users u
		INNER JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1
		FOR UPDATE OF u`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrUserNotFound
	}
	return u, err
}

// FindAdmin implements user.UserRepository.
func (r *userRepositoryImpl) FindAdmin(ctx context.Context, tenantID string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + `
		FROM users u
		INNER JOIN roles r ON r.id = u.role_id
		WHERE u.tenant_id = $1 AND r.code = $2 AND u.is_active = TRUE
		ORDER BY u.created_at ASC
		LIMIT 1`

	u, err := scanUser(q.QueryRow(ctx, query, tenantID, string(user.RoleAdmin)))
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrUserNotFound
	}
	return u, err
}

// GetManagerID implements user.UserRepository.
func (r *userRepositoryImpl) GetManagerID(ctx context.Context, id string) (*string, error) {
	q := GetQuerier(ctx, r.db)

	var managerID *string
	err := q.QueryRow(ctx, `SELECT manager_id FROM users WHERE id = $1`, id).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	return managerID, err
}

// GetSubordinates implements user.UserRepository.
func (r *userRepositoryImpl) GetSubordinates(ctx context.Context, managerID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + `
		FROM users u
		INNER JOIN roles r ON r.id = u.role_id
		WHERE u.manager_id = $1 AND u.is_active = TRUE
		ORDER BY u.full_name ASC`

	rows, err := q.Query(ctx, query, managerID)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// ListManagers implements user.UserRepository.
func (r *userRepositoryImpl) ListManagers(ctx context.Context, tenantID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + `
		FROM users u
		INNER JOIN roles r ON r.id = u.role_id
		WHERE u.tenant_id = $1 AND u.is_active = TRUE
		  AND (u.is_manager = TRUE OR u.is_head_manager = TRUE)
		ORDER BY u.is_head_manager DESC, u.full_name ASC`

	rows, err := q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// UpdateHierarchy implements user.UserRepository.
func (r *userRepositoryImpl) UpdateHierarchy(ctx context.Context, id string, update user.HierarchyUpdate) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET manager_id = $1, is_manager = $2, is_head_manager = $3, updated_at = NOW()
		WHERE id = $4`

	tag, err := q.Exec(ctx, query, update.ManagerID, update.IsManager, update.IsHeadManager, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
