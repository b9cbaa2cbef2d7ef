package leave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attendanceDates(rows []attendance.Attendance) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.Date.Format("2006-01-02"))
	}
	return out
}

func TestScenario_CasualLeaveApprovalThenOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setBalance(userEmployee, leaveTypeCL, 2026, "12", "2")

	before, err := f.svc.ledger.Available(ctx, userEmployee, leaveTypeCL, 2026)
	require.NoError(t, err)
	assertDecimal(t, "10", before.Available)

	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")
	assertDecimal(t, "3", resp.TotalDays)

	approved, err := f.svc.Approve(ctx, userManager, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusApproved), approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, userManager, *approved.ApprovedBy)
	assert.Len(t, approved.Attendance, 3)

	after, err := f.svc.ledger.Available(ctx, userEmployee, leaveTypeCL, 2026)
	require.NoError(t, err)
	assertDecimal(t, "5", after.Used)
	assertDecimal(t, "7", after.Available)

	rows := f.leaveAttendance(t, resp.ID)
	assert.Equal(t, []string{"2026-03-10", "2026-03-11", "2026-03-12"}, attendanceDates(rows))
	for _, r := range rows {
		assert.Equal(t, attendance.StatusOnLeave, r.Status)
	}

	_, err = f.submit(userEmployee, leaveTypeCL, "2026-03-11", "2026-03-13")
	assert.ErrorIs(t, err, leave.ErrOverlappingApplication)
}

func TestApprove_MaterializesWorkingDaysOnly(t *testing.T) {
	f := newFixture(t)
	f.addHoliday(t, "2026-03-12", nil)

	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-14")
	assertDecimal(t, "3", resp.TotalDays)

	_, err := f.svc.Approve(context.Background(), userManager, resp.ID)
	require.NoError(t, err)

	rows := f.leaveAttendance(t, resp.ID)
	assert.Equal(t, []string{"2026-03-10", "2026-03-11", "2026-03-13"}, attendanceDates(rows))
	assertDecimal(t, "3", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)
}

func TestApprove_LookupAndAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-10")

	_, err := f.svc.Approve(ctx, userManager, "missing")
	assert.ErrorIs(t, err, leave.ErrLeaveApplicationNotFound)

	// The head manager outranks the approver but was not assigned.
	_, err = f.svc.Approve(ctx, userHead, resp.ID)
	assert.ErrorIs(t, err, leave.ErrUnauthorized)

	_, err = f.svc.Approve(ctx, userEmployee, resp.ID)
	assert.ErrorIs(t, err, leave.ErrUnauthorized)

	assert.Equal(t, leave.StatusPending, f.application(t, resp.ID).Status)
}

func TestApprove_SecondCallIsInvalidStateWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")

	_, err := f.svc.Approve(ctx, userManager, resp.ID)
	require.NoError(t, err)
	used := f.balance(t, userEmployee, leaveTypeCL, 2026).Used
	rows := len(f.store.attendance)

	_, err = f.svc.Approve(ctx, userManager, resp.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	_, err = f.svc.Reject(ctx, leave.RejectLeaveRequest{ApplicationID: resp.ID, ActorID: userManager, Reason: "Too late now"})
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	assert.True(t, used.Equal(f.balance(t, userEmployee, leaveTypeCL, 2026).Used))
	assert.Len(t, f.store.attendance, rows)
}

func TestApprove_RechecksBalance(t *testing.T) {
	f := newFixture(t)
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")

	// Balance shrank after submission.
	f.setBalance(userEmployee, leaveTypeCL, 2026, "12", "11")

	_, err := f.svc.Approve(context.Background(), userManager, resp.ID)

	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	assert.Equal(t, leave.StatusPending, f.application(t, resp.ID).Status)
	assertDecimal(t, "11", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)
	assert.Empty(t, f.leaveAttendance(t, resp.ID))
}

func TestApprove_OwnPendingDaysAreNotCountedTwice(t *testing.T) {
	f := newFixture(t)
	f.setBalance(userEmployee, leaveTypeCL, 2026, "12", "9")
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")

	_, err := f.svc.Approve(context.Background(), userManager, resp.ID)

	require.NoError(t, err)
	assertDecimal(t, "12", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)
}

func TestApprove_RollsBackWhenAttendanceFails(t *testing.T) {
	f := newFixture(t)
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")
	f.store.failAttendanceInsert = errInjected

	_, err := f.svc.Approve(context.Background(), userManager, resp.ID)

	assert.ErrorIs(t, err, errInjected)
	app := f.application(t, resp.ID)
	assert.Equal(t, leave.StatusPending, app.Status)
	assert.Nil(t, app.ApprovedBy)
	assertDecimal(t, "0", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)
	assert.Empty(t, f.store.attendance)
}

func TestApprove_PendingAttendanceOnLeaveDayIsAConflict(t *testing.T) {
	f := newFixture(t)
	f.addAttendance(t, userEmployee, "2026-03-11", attendance.StatusPending)
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")

	_, err := f.svc.Approve(context.Background(), userManager, resp.ID)

	assert.ErrorIs(t, err, leave.ErrAttendanceConflict)
	assert.Equal(t, leave.StatusPending, f.application(t, resp.ID).Status)
	assertDecimal(t, "0", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)
	require.Len(t, f.store.attendance, 1)
	for _, a := range f.store.attendance {
		assert.Equal(t, attendance.StatusPending, a.Status)
		assert.Nil(t, a.LeaveApplicationID)
	}
}

func TestApprove_HalfDay(t *testing.T) {
	f := newFixture(t)
	first := string(leave.HalfDayFirst)
	resp, err := f.svc.Submit(context.Background(), leave.ApplyLeaveRequest{
		UserID:      userEmployee,
		LeaveTypeID: leaveTypeCL,
		StartDate:   "2026-03-10",
		EndDate:     "2026-03-10",
		HalfDayType: &first,
		Reason:      "Bank appointment",
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), userManager, resp.ID)
	require.NoError(t, err)

	assertDecimal(t, "0.5", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)
	assert.Len(t, f.leaveAttendance(t, resp.ID), 1)
}

func TestApprove_ConcurrentApprovalsStayWithinBalance(t *testing.T) {
	f := newFixture(t)
	f.setBalance(userEmployee, leaveTypeCL, 2026, "12", "6")
	a := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")
	b := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-17", "2026-03-19")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Approve(context.Background(), userManager, id)
		}()
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	bal := f.balance(t, userEmployee, leaveTypeCL, 2026)
	assertDecimal(t, "12", bal.Used)
	assert.False(t, bal.Remaining().IsNegative())
	assert.Len(t, f.store.attendance, 6)
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")

	_, err := f.svc.Reject(ctx, leave.RejectLeaveRequest{ApplicationID: resp.ID, ActorID: userManager, Reason: "   "})
	assert.ErrorIs(t, err, leave.ErrRejectionReasonRequired)

	_, err = f.svc.Reject(ctx, leave.RejectLeaveRequest{ApplicationID: resp.ID, ActorID: userHead, Reason: "Sprint deadline"})
	assert.ErrorIs(t, err, leave.ErrUnauthorized)

	rejected, err := f.svc.Reject(ctx, leave.RejectLeaveRequest{ApplicationID: resp.ID, ActorID: userManager, Reason: "Sprint deadline"})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusRejected), rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "Sprint deadline", *rejected.RejectionReason)

	_, err = f.svc.Reject(ctx, leave.RejectLeaveRequest{ApplicationID: resp.ID, ActorID: userManager, Reason: "Sprint deadline"})
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	_, err = f.svc.Approve(ctx, userManager, resp.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	assertDecimal(t, "0", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)
	assert.Empty(t, f.store.attendance)

	// Rejected dates are free again.
	_, err = f.submit(userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")
	assert.NoError(t, err)
}

func TestCancel_Pending(t *testing.T) {
	f := newFixture(t)
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")

	cancelled, err := f.svc.Cancel(context.Background(), userEmployee, resp.ID)

	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusCancelled), cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, userEmployee, *cancelled.CancelledBy)
	assertDecimal(t, "0", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)

	_, err = f.submit(userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")
	assert.NoError(t, err, "cancelled dates are free again")
}

func TestCancel_ApprovedIsFullyReversed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setBalance(userEmployee, leaveTypeCL, 2026, "12", "2")
	f.addAttendance(t, userEmployee, "2026-03-02", attendance.StatusCheckedOut)
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")

	_, err := f.svc.Approve(ctx, userManager, resp.ID)
	require.NoError(t, err)
	require.Len(t, f.leaveAttendance(t, resp.ID), 3)

	_, err = f.svc.Cancel(ctx, userEmployee, resp.ID)
	require.NoError(t, err)

	assertDecimal(t, "2", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)
	assert.Empty(t, f.leaveAttendance(t, resp.ID))
	assert.Len(t, f.store.attendance, 1, "attendance not owned by the leave must stay")
}

func TestCancel_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-10")
	_, err := f.svc.Cancel(ctx, userManager, pending.ID)
	assert.ErrorIs(t, err, leave.ErrUnauthorized, "only the applicant may cancel")

	_, err = f.svc.Cancel(ctx, userEmployee, "missing")
	assert.ErrorIs(t, err, leave.ErrLeaveApplicationNotFound)

	_, err = f.svc.Cancel(ctx, userEmployee, pending.ID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, userEmployee, pending.ID)
	assert.ErrorIs(t, err, leave.ErrAlreadyCancelled)

	rejected := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-11", "2026-03-11")
	_, err = f.svc.Reject(ctx, leave.RejectLeaveRequest{ApplicationID: rejected.ID, ActorID: userManager, Reason: "Team offsite"})
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, userEmployee, rejected.ID)
	assert.ErrorIs(t, err, leave.ErrCannotCancelRejected)
}

func TestCancel_AfterStartIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")
	_, err := f.svc.Approve(ctx, userManager, resp.ID)
	require.NoError(t, err)

	f.now = time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	_, err = f.svc.Cancel(ctx, userEmployee, resp.ID)

	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyStarted)
	assert.Equal(t, leave.StatusApproved, f.application(t, resp.ID).Status)
	assertDecimal(t, "3", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)
	assert.Len(t, f.leaveAttendance(t, resp.ID), 3)
}

func TestCancel_OnStartDayIsAllowed(t *testing.T) {
	f := newFixture(t)
	resp := f.mustSubmit(t, userEmployee, leaveTypeCL, "2026-03-10", "2026-03-12")

	f.now = time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	_, err := f.svc.Cancel(context.Background(), userEmployee, resp.ID)

	assert.NoError(t, err)
}

func TestBalanceConservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setBalance(userEmployee, leaveTypeCL, 2026, "12", "1")
	f.addHoliday(t, "2026-03-19", nil)
	start := f.balance(t, userEmployee, leaveTypeCL, 2026).Remaining()

	ranges := [][2]string{
		{"2026-03-10", "2026-03-12"},
		{"2026-03-16", "2026-03-20"},
		{"2026-04-06", "2026-04-06"},
	}
	var ids []string
	for _, r := range ranges {
		resp := f.mustSubmit(t, userEmployee, leaveTypeCL, r[0], r[1])
		_, err := f.svc.Approve(ctx, userManager, resp.ID)
		require.NoError(t, err)
		ids = append(ids, resp.ID)
	}
	assertDecimal(t, "9", f.balance(t, userEmployee, leaveTypeCL, 2026).Used)

	for _, id := range ids {
		_, err := f.svc.Cancel(ctx, userEmployee, id)
		require.NoError(t, err)
	}

	end := f.balance(t, userEmployee, leaveTypeCL, 2026).Remaining()
	assert.True(t, start.Equal(end), "start %s, end %s", start, end)
	assert.Empty(t, f.store.attendance)
}
