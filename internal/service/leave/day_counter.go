package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

// DayCounter computes the chargeable duration of a leave request.
type DayCounter struct {
	calendar *CalendarResolver
}

func NewDayCounter(calendar *CalendarResolver) *DayCounter {
	return &DayCounter{calendar: calendar}
}

// CountDays returns 0.5 for a half day, otherwise the number of working days in [start, end].
func (d *DayCounter) CountDays(ctx context.Context, start, end time.Time, halfDay *leave.HalfDayType, tenantID string, branchID *string) (decimal.Decimal, error) {
	if start.After(end) {
		return decimal.Zero, leave.ErrInvalidRange
	}
	if halfDay != nil {
		if !utils.DateOnly(start).Equal(utils.DateOnly(end)) {
			return decimal.Zero, leave.ErrInvalidHalfDay
		}
		return leave.HalfDayDays, nil
	}

	dates, err := d.WorkingDates(ctx, start, end, tenantID, branchID)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(int64(len(dates))), nil
}

// WorkingDates lists the dates in [start, end] that are neither weekend nor holiday.
func (d *DayCounter) WorkingDates(ctx context.Context, start, end time.Time, tenantID string, branchID *string) ([]time.Time, error) {
	if start.After(end) {
		return nil, leave.ErrInvalidRange
	}

	nonWorking, err := d.calendar.NonWorkingDates(ctx, start, end, tenantID, branchID)
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	utils.EachDay(start, end, func(day time.Time) {
		if !nonWorking.Contains(day) {
			dates = append(dates, day)
		}
	})
	return dates, nil
}
