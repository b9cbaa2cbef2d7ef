package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// ListInRange implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) ListInRange(ctx context.Context, tenantID string, branchID *string, start, end time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	// $2 NULL matches only organization-wide rows.
	query := `
		SELECT id, tenant_id, branch_id, name, date, type, created_at
		FROM holidays
		WHERE tenant_id = $1
		  AND (branch_id IS NULL OR branch_id = $2)
		  AND date BETWEEN $3 AND $4
		ORDER BY date ASC`

	rows, err := q.Query(ctx, query, tenantID, branchID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.TenantID, &h.BranchID, &h.Name, &h.Date, &h.Type, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
