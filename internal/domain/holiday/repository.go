package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// ListInRange returns the tenant's holidays in [start, end] that are either
	// organization-wide or specific to branchID. A nil branchID yields only
	// organization-wide holidays.
	ListInRange(ctx context.Context, tenantID string, branchID *string, start, end time.Time) ([]Holiday, error)
}
