package leave

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory backing store. Transactions are serialized and
// restore a snapshot when fn fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users      map[string]user.User
	policies   []leave.RoleLeavePolicy
	holidays   []holiday.Holiday
	balances   map[string]leave.LeaveBalance
	apps       map[string]leave.LeaveApplication
	attendance map[string]attendance.Attendance

	failAttendanceInsert error
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]user.User{},
		balances:   map[string]leave.LeaveBalance{},
		apps:       map[string]leave.LeaveApplication{},
		attendance: map[string]attendance.Attendance{},
	}
}

func (m *memStore) repositories() Repositories {
	return Repositories{
		Users:        memUsers{m},
		Applications: memApps{m},
		Balances:     memBalances{m},
		Policies:     memPolicies{m},
		Holidays:     memHolidays{m},
		Attendance:   memAttendance{m},
	}
}

type memSnapshot struct {
	balances   map[string]leave.LeaveBalance
	apps       map[string]leave.LeaveApplication
	attendance map[string]attendance.Attendance
	users      map[string]user.User
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type memTxKey struct{}

// WithinTransaction implements database.Transactor.
func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := memSnapshot{
		balances:   copyMap(m.balances),
		apps:       copyMap(m.apps),
		attendance: copyMap(m.attendance),
		users:      copyMap(m.users),
	}
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.mu.Lock()
		m.balances = snap.balances
		m.apps = snap.apps
		m.attendance = snap.attendance
		m.users = snap.users
		m.mu.Unlock()
		return err
	}
	return nil
}

// Users

type memUsers struct{ *memStore }

func (r memUsers) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r memUsers) LockByID(ctx context.Context, id string) (user.User, error) {
	return r.GetByID(ctx, id)
}

func (r memUsers) FindAdmin(_ context.Context, tenantID string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var admins []user.User
	for _, u := range r.users {
		if u.TenantID == tenantID && u.RoleCode == user.RoleAdmin && u.IsActive {
			admins = append(admins, u)
		}
	}
	if len(admins) == 0 {
		return user.User{}, user.ErrUserNotFound
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].ID < admins[j].ID })
	return admins[0], nil
}

func (r memUsers) GetManagerID(ctx context.Context, id string) (*string, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.ManagerID, nil
}

func (r memUsers) GetSubordinates(_ context.Context, managerID string) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []user.User
	for _, u := range r.users {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r memUsers) ListManagers(_ context.Context, tenantID string) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []user.User
	for _, u := range r.users {
		if u.TenantID == tenantID && (u.IsManager || u.IsHeadManager) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r memUsers) UpdateHierarchy(_ context.Context, id string, update user.HierarchyUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.ManagerID = update.ManagerID
	u.IsManager = update.IsManager
	u.IsHeadManager = update.IsHeadManager
	r.users[id] = u
	return nil
}

// Applications

type memApps struct{ *memStore }

func (r memApps) Create(_ context.Context, app leave.LeaveApplication) (leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app.CreatedAt = app.AppliedAt
	app.UpdatedAt = app.AppliedAt
	r.apps[app.ID] = app
	return app, nil
}

func (r memApps) GetByID(_ context.Context, id string) (leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
	}
	return app, nil
}

func (r memApps) LockByID(ctx context.Context, id string) (leave.LeaveApplication, error) {
	return r.GetByID(ctx, id)
}

func (r memApps) HasOverlapping(_ context.Context, userID string, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.UserID == userID && app.BlocksNewApplications() && app.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r memApps) SumPending(_ context.Context, userID, leaveTypeID string, year int, excludeID string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, app := range r.apps {
		if app.UserID == userID && app.LeaveTypeID == leaveTypeID && app.Year == year &&
			app.Status == leave.StatusPending && app.ID != excludeID {
			total = total.Add(app.TotalDays)
		}
	}
	return total, nil
}

func matchesFilter(app leave.LeaveApplication, filter leave.ApplicationFilter) bool {
	if filter.Status != nil && app.Status != *filter.Status {
		return false
	}
	if filter.Year != nil && app.Year != *filter.Year {
		return false
	}
	if filter.LeaveTypeID != nil && app.LeaveTypeID != *filter.LeaveTypeID {
		return false
	}
	return true
}

func (r memApps) ListByUser(_ context.Context, userID string, filter leave.ApplicationFilter) ([]leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveApplication
	for _, app := range r.apps {
		if app.UserID == userID && matchesFilter(app, filter) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memApps) ListPendingByApprover(_ context.Context, approverID string, filter leave.ApplicationFilter) ([]leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	filter.Status = nil
	var out []leave.LeaveApplication
	for _, app := range r.apps {
		if app.CurrentApproverID == approverID && app.Status == leave.StatusPending && matchesFilter(app, filter) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memApps) ListApprovedInDepartment(_ context.Context, tenantID, departmentID string, start, end time.Time) ([]leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveApplication
	for _, app := range r.apps {
		u := r.users[app.UserID]
		if app.TenantID != tenantID || u.DepartmentID == nil || *u.DepartmentID != departmentID {
			continue
		}
		if app.Status == leave.StatusApproved && app.Overlaps(start, end) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r memApps) transition(id string, from leave.ApplicationStatus, apply func(*leave.LeaveApplication)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.Status != from {
		return leave.ErrInvalidState
	}
	apply(&app)
	r.apps[id] = app
	return nil
}

func (r memApps) MarkApproved(_ context.Context, id, actorID string, at time.Time) error {
	return r.transition(id, leave.StatusPending, func(a *leave.LeaveApplication) {
		a.Status = leave.StatusApproved
		a.ApprovedBy = &actorID
		a.ApprovedAt = &at
	})
}

func (r memApps) MarkRejected(_ context.Context, id, actorID, reason string, at time.Time) error {
	return r.transition(id, leave.StatusPending, func(a *leave.LeaveApplication) {
		a.Status = leave.StatusRejected
		a.RejectedBy = &actorID
		a.RejectedAt = &at
		a.RejectionReason = &reason
	})
}

func (r memApps) MarkCancelled(_ context.Context, id, actorID string, from leave.ApplicationStatus, at time.Time) error {
	return r.transition(id, from, func(a *leave.LeaveApplication) {
		a.Status = leave.StatusCancelled
		a.CancelledBy = &actorID
		a.CancelledAt = &at
	})
}

// Balances

type memBalances struct{ *memStore }

func (r memBalances) find(userID, leaveTypeID string, year int) (leave.LeaveBalance, bool) {
	for _, b := range r.balances {
		if b.UserID == userID && b.LeaveTypeID == leaveTypeID && b.Year == year {
			return b, true
		}
	}
	return leave.LeaveBalance{}, false
}

func (r memBalances) Get(_ context.Context, userID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.find(userID, leaveTypeID, year)
	if !ok {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (r memBalances) GetForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	return r.Get(ctx, userID, leaveTypeID, year)
}

func (r memBalances) CreateIfAbsent(_ context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.find(balance.UserID, balance.LeaveTypeID, balance.Year); ok {
		return existing, nil
	}
	r.balances[balance.ID] = balance
	return balance, nil
}

func (r memBalances) IncrementUsed(_ context.Context, id string, days decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[id]
	if !ok || b.Remaining().LessThan(days) {
		return leave.ErrInsufficientBalance
	}
	b.Used = b.Used.Add(days)
	r.balances[id] = b
	return nil
}

func (r memBalances) DecrementUsed(_ context.Context, id string, days decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[id]
	if !ok || b.Used.LessThan(days) {
		return leave.ErrInvalidState
	}
	b.Used = b.Used.Sub(days)
	r.balances[id] = b
	return nil
}

// Policies

type memPolicies struct{ *memStore }

func (r memPolicies) Get(_ context.Context, roleID, leaveTypeID string) (leave.RoleLeavePolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.policies {
		if p.RoleID == roleID && p.LeaveTypeID == leaveTypeID && p.IsActive {
			return p, nil
		}
	}
	return leave.RoleLeavePolicy{}, leave.ErrNoPolicyDefined
}

func (r memPolicies) ListActiveByRole(_ context.Context, roleID string) ([]leave.RoleLeavePolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.RoleLeavePolicy
	for _, p := range r.policies {
		if p.RoleID == roleID && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

// Holidays

type memHolidays struct{ *memStore }

func (r memHolidays) ListInRange(_ context.Context, tenantID string, branchID *string, start, end time.Time) ([]holiday.Holiday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []holiday.Holiday
	for _, h := range r.holidays {
		if h.TenantID != tenantID || h.Date.Before(start) || h.Date.After(end) {
			continue
		}
		if h.BranchID != nil && (branchID == nil || *h.BranchID != *branchID) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

// Attendance

type memAttendance struct{ *memStore }

func (r memAttendance) HasConflict(_ context.Context, userID string, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendance {
		if a.UserID == userID && !a.Date.Before(start) && !a.Date.After(end) && a.Status != attendance.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r memAttendance) CreateLeaveAttendance(_ context.Context, rows []attendance.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAttendanceInsert != nil {
		return r.failAttendanceInsert
	}
	for _, row := range rows {
		if row.LeaveApplicationID == nil {
			return attendance.ErrLeaveLinkRequired
		}
		for _, existing := range r.attendance {
			if existing.UserID == row.UserID && existing.Date.Equal(row.Date) {
				return attendance.ErrDateTaken
			}
		}
	}
	for _, row := range rows {
		r.attendance[row.ID] = row
	}
	return nil
}

func (r memAttendance) DeleteByLeaveApplication(_ context.Context, leaveApplicationID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, a := range r.attendance {
		if a.LeaveApplicationID != nil && *a.LeaveApplicationID == leaveApplicationID && a.Status == attendance.StatusOnLeave {
			delete(r.attendance, id)
			n++
		}
	}
	return n, nil
}

func (r memAttendance) ListByLeaveApplication(_ context.Context, leaveApplicationID string) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.attendance {
		if a.LeaveApplicationID != nil && *a.LeaveApplicationID == leaveApplicationID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

var errInjected = errors.New("injected store failure")
