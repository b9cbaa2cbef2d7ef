package leave

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTenant   = "tenant-1"
	testBranch   = "branch-jkt"
	testDept     = "dept-eng"
	roleAdminID  = "role-admin"
	roleMgrID    = "role-manager"
	roleEmpID    = "role-employee"
	leaveTypeCL  = "01956b1e-3c4a-7c10-9a1b-0000000000c1"
	leaveTypeSL  = "01956b1e-3c4a-7c10-9a1b-0000000000a5"
	userAdmin    = "u-admin"
	userHead     = "u-head"
	userManager  = "u-manager"
	userEmployee = "u-employee"
	userOrphan   = "u-orphan"
)

type fixture struct {
	store *memStore
	svc   *LeaveServiceImpl
	now   time.Time
}

func strPtr(s string) *string { return &s }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// newFixture seeds one tenant with an admin, a head manager, a manager
// reporting to the head, an employee reporting to the manager and an
// employee with no manager. The clock starts at 2026-03-01.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()

	add := func(u user.User) {
		u.TenantID = testTenant
		u.IsActive = true
		store.users[u.ID] = u
	}
	add(user.User{ID: userAdmin, RoleID: roleAdminID, RoleCode: user.RoleAdmin, FullName: "Ayu Admin"})
	add(user.User{ID: userHead, RoleID: roleMgrID, RoleCode: user.RoleManager, FullName: "Hana Head",
		DepartmentID: strPtr(testDept), IsManager: true, IsHeadManager: true})
	add(user.User{ID: userManager, RoleID: roleMgrID, RoleCode: user.RoleManager, FullName: "Maya Manager",
		DepartmentID: strPtr(testDept), ManagerID: strPtr(userHead), IsManager: true})
	add(user.User{ID: userEmployee, RoleID: roleEmpID, RoleCode: user.RoleEmployee, FullName: "Eka Employee",
		DepartmentID: strPtr(testDept), BranchID: strPtr(testBranch), ManagerID: strPtr(userManager)})
	add(user.User{ID: userOrphan, RoleID: roleEmpID, RoleCode: user.RoleEmployee, FullName: "Oka Orphan",
		DepartmentID: strPtr(testDept)})

	store.policies = []leave.RoleLeavePolicy{
		{ID: "p1", RoleID: roleEmpID, LeaveTypeID: leaveTypeCL, AnnualQuota: d("12"), AccrualType: leave.AccrualYearly, IsActive: true, LeaveTypeName: "Casual Leave", LeaveTypeCode: "CL"},
		{ID: "p2", RoleID: roleEmpID, LeaveTypeID: leaveTypeSL, AnnualQuota: d("6"), AccrualType: leave.AccrualYearly, IsActive: true, LeaveTypeName: "Sick Leave", LeaveTypeCode: "SL"},
		{ID: "p3", RoleID: roleMgrID, LeaveTypeID: leaveTypeCL, AnnualQuota: d("15"), AccrualType: leave.AccrualYearly, IsActive: true, LeaveTypeName: "Casual Leave", LeaveTypeCode: "CL"},
	}

	f := &fixture{
		store: store,
		now:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewLeaveService(store, store.repositories(), time.UTC)
	f.svc.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) addHoliday(t *testing.T, day string, branchID *string) {
	f.store.holidays = append(f.store.holidays, holiday.Holiday{
		ID:       "h-" + day,
		TenantID: testTenant,
		BranchID: branchID,
		Name:     "Holiday " + day,
		Date:     date(t, day),
		Type:     holiday.TypeNational,
	})
}

func (f *fixture) setBalance(userID, leaveTypeID string, year int, allocated, used string) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for id, b := range f.store.balances {
		if b.UserID == userID && b.LeaveTypeID == leaveTypeID && b.Year == year {
			delete(f.store.balances, id)
		}
	}
	id := "b-" + userID + "-" + leaveTypeID
	f.store.balances[id] = leave.LeaveBalance{
		ID:           id,
		UserID:       userID,
		LeaveTypeID:  leaveTypeID,
		Year:         year,
		Allocated:    d(allocated),
		Used:         d(used),
		CarryForward: decimal.Zero,
	}
}

func (f *fixture) balance(t *testing.T, userID, leaveTypeID string, year int) leave.LeaveBalance {
	t.Helper()
	b, err := memBalances{f.store}.Get(context.Background(), userID, leaveTypeID, year)
	require.NoError(t, err)
	return b
}

func (f *fixture) application(t *testing.T, id string) leave.LeaveApplication {
	t.Helper()
	app, err := memApps{f.store}.GetByID(context.Background(), id)
	require.NoError(t, err)
	return app
}

func (f *fixture) leaveAttendance(t *testing.T, appID string) []attendance.Attendance {
	t.Helper()
	rows, err := memAttendance{f.store}.ListByLeaveApplication(context.Background(), appID)
	require.NoError(t, err)
	return rows
}

func (f *fixture) addAttendance(t *testing.T, userID, day string, status attendance.Status) {
	f.store.attendance["att-"+userID+"-"+day] = attendance.Attendance{
		ID:       "att-" + userID + "-" + day,
		UserID:   userID,
		TenantID: testTenant,
		Date:     date(t, day),
		Status:   status,
	}
}

func (f *fixture) submit(userID, leaveTypeID, start, end string) (leave.LeaveApplicationResponse, error) {
	return f.svc.Submit(context.Background(), leave.ApplyLeaveRequest{
		UserID:      userID,
		LeaveTypeID: leaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      "Family matters",
	})
}

func (f *fixture) mustSubmit(t *testing.T, userID, leaveTypeID, start, end string) leave.LeaveApplicationResponse {
	t.Helper()
	resp, err := f.submit(userID, leaveTypeID, start, end)
	require.NoError(t, err)
	return resp
}
