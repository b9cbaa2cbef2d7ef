package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type roleLeavePolicyRepositoryImpl struct {
	db *database.DB
}

func NewRoleLeavePolicyRepository(db *database.DB) leave.RoleLeavePolicyRepository {
	return &roleLeavePolicyRepositoryImpl{db: db}
}

const roleLeavePolicyQuery = `
	SELECT p.id, p.role_id, p.leave_type_id, p.annual_quota, p.accrual_type, p.is_active,
	       lt.name, lt.code
	FROM role_leave_policies p
	INNER JOIN leave_types lt ON lt.id = p.leave_type_id
	WHERE p.is_active = TRUE AND lt.is_active = TRUE`

func scanRoleLeavePolicy(row pgx.Row) (leave.RoleLeavePolicy, error) {
	var p leave.RoleLeavePolicy
	err := row.Scan(
		&p.ID,
		&p.RoleID,
		&p.LeaveTypeID,
		&p.AnnualQuota,
		&p.AccrualType,
		&p.IsActive,
		&p.LeaveTypeName,
		&p.LeaveTypeCode,
	)
	return p, err
}

// Get implements leave.RoleLeavePolicyRepository.
func (r *roleLeavePolicyRepositoryImpl) Get(ctx context.Context, roleID, leaveTypeID string) (leave.RoleLeavePolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := roleLeavePolicyQuery + ` AND p.role_id = $1 AND p.leave_type_id = $2`

	p, err := scanRoleLeavePolicy(q.QueryRow(ctx, query, roleID, leaveTypeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.RoleLeavePolicy{}, leave.ErrNoPolicyDefined
	}
	return p, err
}

// ListActiveByRole implements leave.RoleLeavePolicyRepository.
func (r *roleLeavePolicyRepositoryImpl) ListActiveByRole(ctx context.Context, roleID string) ([]leave.RoleLeavePolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := roleLeavePolicyQuery + ` AND p.role_id = $1 ORDER BY lt.code ASC`

	rows, err := q.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []leave.RoleLeavePolicy
	for rows.Next() {
		p, err := scanRoleLeavePolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}
