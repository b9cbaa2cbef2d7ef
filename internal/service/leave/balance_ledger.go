package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceLedger owns the allocated, carry forward and used counters per
// (user, leave type, year). used is only changed through charge and refund,
// which callers run inside the state machine transaction.
type BalanceLedger struct {
	balances     leave.LeaveBalanceRepository
	applications leave.LeaveApplicationRepository
	policies     leave.RoleLeavePolicyRepository
	users        user.UserRepository
}

func NewBalanceLedger(
	balances leave.LeaveBalanceRepository,
	applications leave.LeaveApplicationRepository,
	policies leave.RoleLeavePolicyRepository,
	users user.UserRepository,
) *BalanceLedger {
	return &BalanceLedger{
		balances:     balances,
		applications: applications,
		policies:     policies,
		users:        users,
	}
}

// GetOrInit returns the balance row, creating it from the user's role policy on first access.
func (l *BalanceLedger) GetOrInit(ctx context.Context, userID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	balance, err := l.balances.Get(ctx, userID, leaveTypeID, year)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, leave.ErrBalanceNotFound) {
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	u, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return leave.LeaveBalance{}, err
	}
	policy, err := l.policies.Get(ctx, u.RoleID, leaveTypeID)
	if err != nil {
		return leave.LeaveBalance{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to generate balance id: %w", err)
	}

	balance, err = l.balances.CreateIfAbsent(ctx, leave.LeaveBalance{
		ID:           id.String(),
		UserID:       userID,
		LeaveTypeID:  leaveTypeID,
		Year:         year,
		Allocated:    policy.AnnualQuota,
		Used:         decimal.Zero,
		CarryForward: decimal.Zero,
	})
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to initialize leave balance: %w", err)
	}

	slog.Info("Initialized leave balance",
		"user_id", userID,
		"leave_type_id", leaveTypeID,
		"year", year,
		"allocated", balance.Allocated.String(),
	)
	return balance, nil
}

// Available recomputes the balance summary, including live pending days.
func (l *BalanceLedger) Available(ctx context.Context, userID, leaveTypeID string, year int) (leave.BalanceSummary, error) {
	balance, err := l.GetOrInit(ctx, userID, leaveTypeID, year)
	if err != nil {
		return leave.BalanceSummary{}, err
	}
	return l.summarize(ctx, balance, "")
}

// lockAvailable initializes the row if needed, then locks it and recomputes
// the summary with excludeID left out of pending.
func (l *BalanceLedger) lockAvailable(ctx context.Context, userID, leaveTypeID string, year int, excludeID string) (leave.BalanceSummary, leave.LeaveBalance, error) {
	if _, err := l.GetOrInit(ctx, userID, leaveTypeID, year); err != nil {
		return leave.BalanceSummary{}, leave.LeaveBalance{}, err
	}
	balance, err := l.lock(ctx, userID, leaveTypeID, year)
	if err != nil {
		return leave.BalanceSummary{}, leave.LeaveBalance{}, err
	}
	summary, err := l.summarize(ctx, balance, excludeID)
	if err != nil {
		return leave.BalanceSummary{}, leave.LeaveBalance{}, err
	}
	return summary, balance, nil
}

func (l *BalanceLedger) summarize(ctx context.Context, balance leave.LeaveBalance, excludeID string) (leave.BalanceSummary, error) {
	pending, err := l.applications.SumPending(ctx, balance.UserID, balance.LeaveTypeID, balance.Year, excludeID)
	if err != nil {
		return leave.BalanceSummary{}, fmt.Errorf("failed to sum pending leave: %w", err)
	}
	return leave.NewBalanceSummary(balance, pending), nil
}

// lock reads an existing balance row with FOR UPDATE.
func (l *BalanceLedger) lock(ctx context.Context, userID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	balance, err := l.balances.GetForUpdate(ctx, userID, leaveTypeID, year)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}
	return balance, nil
}

func (l *BalanceLedger) charge(ctx context.Context, balance leave.LeaveBalance, days decimal.Decimal) error {
	if err := l.balances.IncrementUsed(ctx, balance.ID, days); err != nil {
		if errors.Is(err, leave.ErrInsufficientBalance) {
			return &leave.BalanceError{Available: balance.Remaining(), Requested: days}
		}
		return fmt.Errorf("failed to charge leave balance: %w", err)
	}
	return nil
}

func (l *BalanceLedger) refund(ctx context.Context, balanceID string, days decimal.Decimal) error {
	if err := l.balances.DecrementUsed(ctx, balanceID, days); err != nil {
		return fmt.Errorf("failed to refund leave balance: %w", err)
	}
	return nil
}

// checkCovers fails with a BalanceError when summary cannot cover requested.
func checkCovers(summary leave.BalanceSummary, requested decimal.Decimal) error {
	if summary.Available.LessThan(requested) {
		return &leave.BalanceError{Available: summary.Available, Requested: requested}
	}
	return nil
}
