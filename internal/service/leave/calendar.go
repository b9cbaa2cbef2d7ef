package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/utils"
)

// DateSet is a set of calendar dates keyed by YYYY-MM-DD.
type DateSet map[string]struct{}

func (s DateSet) Add(t time.Time) {
	s[utils.DateKey(t)] = struct{}{}
}

func (s DateSet) Contains(t time.Time) bool {
	_, ok := s[utils.DateKey(t)]
	return ok
}

// CalendarResolver answers which dates are not working days for a tenant branch.
type CalendarResolver struct {
	holidays holiday.HolidayRepository
}

func NewCalendarResolver(holidays holiday.HolidayRepository) *CalendarResolver {
	return &CalendarResolver{holidays: holidays}
}

// NonWorkingDates returns every Saturday, Sunday and holiday in [start, end].
// Holidays match when organization-wide or specific to branchID.
func (c *CalendarResolver) NonWorkingDates(ctx context.Context, start, end time.Time, tenantID string, branchID *string) (DateSet, error) {
	set := DateSet{}
	if end.Before(start) {
		return set, nil
	}

	utils.EachDay(start, end, func(day time.Time) {
		if utils.IsWeekend(day) {
			set.Add(day)
		}
	})

	holidays, err := c.holidays.ListInRange(ctx, tenantID, branchID, utils.DateOnly(start), utils.DateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	for _, h := range holidays {
		if h.BranchID != nil && (branchID == nil || *h.BranchID != *branchID) {
			continue
		}
		set.Add(h.Date)
	}

	return set, nil
}
