package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const leaveBalanceColumns = `
	id, user_id, leave_type_id, year, allocated, used, carry_forward, created_at, updated_at`

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.LeaveTypeID,
		&b.Year,
		&b.Allocated,
		&b.Used,
		&b.CarryForward,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}
	return b, err
}

// Get implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, userID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE user_id = $1 AND leave_type_id = $2 AND year = $3`

	return scanLeaveBalance(q.QueryRow(ctx, query, userID, leaveTypeID, year))
}

// GetForUpdate implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE user_id = $1 AND leave_type_id = $2 AND year = $3
		FOR UPDATE`

	return scanLeaveBalance(q.QueryRow(ctx, query, userID, leaveTypeID, year))
}

// CreateIfAbsent implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) CreateIfAbsent(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	// Two first reads may race here; the unique key keeps a single row and both
	// callers read it back.
	insert := `
		INSERT INTO leave_balances (id, user_id, leave_type_id, year, allocated, used, carry_forward)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, leave_type_id, year) DO NOTHING`

	_, err := q.Exec(ctx, insert,
		balance.ID,
		balance.UserID,
		balance.LeaveTypeID,
		balance.Year,
		balance.Allocated,
		balance.Used,
		balance.CarryForward,
	)
	if err != nil {
		return leave.LeaveBalance{}, err
	}

	return r.Get(ctx, balance.UserID, balance.LeaveTypeID, balance.Year)
}

// IncrementUsed implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) IncrementUsed(ctx context.Context, id string, days decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET used = used + $1, updated_at = NOW()
		WHERE id = $2 AND allocated + carry_forward - used >= $1`

	tag, err := q.Exec(ctx, query, days, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrInsufficientBalance
	}
	return nil
}

// DecrementUsed implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) DecrementUsed(ctx context.Context, id string, days decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET used = used - $1, updated_at = NOW()
		WHERE id = $2 AND used >= $1`

	tag, err := q.Exec(ctx, query, days, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrInvalidState
	}
	return nil
}
