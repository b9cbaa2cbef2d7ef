package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/ess-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SeedTenantDefaults upserts the default roles, leave types, role policies and
// fixed-date holidays of year for tenantID. Running it again is safe.
func SeedTenantDefaults(ctx context.Context, db *database.DB, tenantID string, year int) (*fixtures.SeededDataIDs, error) {
	ids := fixtures.NewSeededDataIDs()

	err := WithTransaction(ctx, db, func(tx pgx.Tx) error {
		for _, role := range fixtures.GetDefaultRoles() {
			var id string
			err := tx.QueryRow(ctx, `
				INSERT INTO roles (id, tenant_id, code, name)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (tenant_id, code) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`,
				uuid.Must(uuid.NewV7()).String(), tenantID, string(role.Code), role.Name,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("seed role %s: %w", role.Code, err)
			}
			ids.RoleIDs[role.Code] = id
		}

		for _, lt := range fixtures.GetDefaultLeaveTypes(tenantID) {
			var id string
			err := tx.QueryRow(ctx, `
				INSERT INTO leave_types (id, tenant_id, name, code, description, is_active)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (tenant_id, code) DO UPDATE
				SET name = EXCLUDED.name, description = EXCLUDED.description, updated_at = NOW()
				RETURNING id`,
				uuid.Must(uuid.NewV7()).String(), lt.TenantID, lt.Name, lt.Code, lt.Description, lt.IsActive,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("seed leave type %s: %w", lt.Code, err)
			}
			ids.LeaveTypeIDs[lt.Code] = id
		}

		for _, p := range fixtures.GetDefaultRolePolicies() {
			_, err := tx.Exec(ctx, `
				INSERT INTO role_leave_policies (id, role_id, leave_type_id, annual_quota)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (role_id, leave_type_id) DO UPDATE SET annual_quota = EXCLUDED.annual_quota`,
				uuid.Must(uuid.NewV7()).String(), ids.RoleIDs[p.Role], ids.LeaveTypeIDs[p.LeaveTypeCode], p.AnnualQuota,
			)
			if err != nil {
				return fmt.Errorf("seed policy %s/%s: %w", p.Role, p.LeaveTypeCode, err)
			}
		}

		// holidays have no natural key; skip dates the tenant already has
		for _, h := range fixtures.GetDefaultHolidays(tenantID, year) {
			tag, err := tx.Exec(ctx, `
				INSERT INTO holidays (id, tenant_id, name, date, type)
				SELECT $1::uuid, $2::uuid, $3::varchar, $4::date, $5::varchar
				WHERE NOT EXISTS (
					SELECT 1 FROM holidays WHERE tenant_id = $2 AND branch_id IS NULL AND date = $4
				)`,
				uuid.Must(uuid.NewV7()).String(), h.TenantID, h.Name, h.Date, string(h.Type),
			)
			if err != nil {
				return fmt.Errorf("seed holiday %s: %w", h.Name, err)
			}
			ids.HolidaysCreated += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
