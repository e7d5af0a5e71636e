package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/salary"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttendance struct {
	attendance.AttendanceRepository
	rows    map[string]attendance.Attendance // employeeID|date
	absents int64
}

func rowKey(employeeID string, day time.Time) string {
	return employeeID + "|" + day.Format("2006-01-02")
}

func (f *fakeAttendance) GetByEmployeeAndDate(_ context.Context, employeeID string, day time.Time) (attendance.Attendance, error) {
	r, ok := f.rows[rowKey(employeeID, day)]
	if !ok {
		return attendance.Attendance{}, pgx.ErrNoRows
	}
	return r, nil
}

func (f *fakeAttendance) Create(_ context.Context, r attendance.Attendance) (attendance.Attendance, error) {
	r.ID = "a-" + rowKey(r.EmployeeID, r.Date)
	f.rows[rowKey(r.EmployeeID, r.Date)] = r
	return r, nil
}

func (f *fakeAttendance) find(id string) (string, attendance.Attendance) {
	for k, r := range f.rows {
		if r.ID == id {
			return k, r
		}
	}
	return "", attendance.Attendance{}
}

func (f *fakeAttendance) MarkCheckIn(_ context.Context, id string, at time.Time) (attendance.Attendance, error) {
	k, r := f.find(id)
	r.CheckIn, r.Status = &at, attendance.RecordPresent
	f.rows[k] = r
	return r, nil
}

func (f *fakeAttendance) MarkCheckOut(_ context.Context, id string, at time.Time, breakHours, work, extra float64) (attendance.Attendance, error) {
	k, r := f.find(id)
	r.CheckOut, r.BreakHours, r.WorkHours, r.ExtraHours = &at, breakHours, &work, &extra
	f.rows[k] = r
	return r, nil
}

func (f *fakeAttendance) ListByEmployeeRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, r := range f.rows {
		if r.EmployeeID == employeeID && !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendance) ListByCompanyDate(_ context.Context, _ string, day time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, r := range f.rows {
		if r.Date.Equal(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendance) InsertAbsents(context.Context, string, time.Time) (int64, error) {
	return f.absents, nil
}

type fakeEmployees struct {
	employee.EmployeeRepository
	list []employee.Employee
}

func (f *fakeEmployees) ListByCompany(context.Context, string) ([]employee.Employee, error) {
	return f.list, nil
}

type fakeRequests struct {
	leave.RequestRepository
	approved []leave.Request
}

func (f *fakeRequests) HasApprovedLeave(_ context.Context, employeeID string, day time.Time) (bool, error) {
	for _, r := range f.approved {
		if r.EmployeeID == employeeID && !day.Before(r.StartDate) && !day.After(r.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequests) ListApprovedCovering(context.Context, string, time.Time) ([]leave.Request, error) {
	return f.approved, nil
}

type fakeSalary struct {
	salary.SalaryRepository
	breakHours map[string]decimal.Decimal
}

func (f *fakeSalary) GetStructure(_ context.Context, employeeID string) (salary.Structure, error) {
	b, ok := f.breakHours[employeeID]
	if !ok {
		return salary.Structure{}, pgx.ErrNoRows
	}
	return salary.Structure{EmployeeID: employeeID, BreakHours: b}, nil
}

type fixture struct {
	svc        *AttendanceServiceImpl
	attendance *fakeAttendance
	requests   *fakeRequests
	employees  *fakeEmployees
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func at(s string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", s)
	return t
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		attendance: &fakeAttendance{rows: map[string]attendance.Attendance{}},
		requests:   &fakeRequests{},
		employees:  &fakeEmployees{},
	}
	sal := &fakeSalary{breakHours: map[string]decimal.Decimal{"e-1": decimal.NewFromInt(1)}}
	f.svc = NewAttendanceService(f.attendance, f.employees, f.requests, sal, 8, time.UTC).(*AttendanceServiceImpl)
	f.svc.now = func() time.Time { return now }
	return f
}

func employeeCtx(employeeID string) context.Context {
	return jwt.ContextWithClaims(context.Background(), jwt.Claims{UserID: "u-" + employeeID, EmployeeID: employeeID, CompanyID: "c-1", Role: user.RoleEmployee})
}

func TestCheckInRejectsWeekend(t *testing.T) {
	f := newFixture(at("2025-03-08 09:00")) // Saturday

	_, err := f.svc.CheckIn(employeeCtx("e-1"), "")
	assert.ErrorIs(t, err, attendance.ErrWeekend)
}

func TestCheckInIsIdempotent(t *testing.T) {
	f := newFixture(at("2025-03-10 09:00"))
	ctx := employeeCtx("e-1")

	first, err := f.svc.CheckIn(ctx, "")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, attendance.RecordPresent, first.Attendance.Status)

	f.svc.now = func() time.Time { return at("2025-03-10 09:30") }
	second, err := f.svc.CheckIn(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, at("2025-03-10 09:00"), *second.Attendance.CheckIn)
}

func TestCheckInRejectsLeave(t *testing.T) {
	f := newFixture(at("2025-03-10 09:00"))
	f.requests.approved = []leave.Request{{EmployeeID: "e-1", StartDate: date("2025-03-10"), EndDate: date("2025-03-11"), Status: leave.StatusApproved}}

	_, err := f.svc.CheckIn(employeeCtx("e-1"), "")
	assert.ErrorIs(t, err, attendance.ErrOnLeave)

	f.attendance.rows[rowKey("e-2", date("2025-03-10"))] = attendance.Attendance{ID: "a-x", EmployeeID: "e-2", Date: date("2025-03-10"), Status: attendance.RecordLeave}
	_, err = f.svc.CheckIn(employeeCtx("e-2"), "")
	assert.ErrorIs(t, err, attendance.ErrOnLeave)
}

func TestCheckInUpgradesAbsentRow(t *testing.T) {
	f := newFixture(at("2025-03-10 10:15"))
	f.attendance.rows[rowKey("e-1", date("2025-03-10"))] = attendance.Attendance{ID: "a-1", EmployeeID: "e-1", Date: date("2025-03-10"), Status: attendance.RecordAbsent}

	resp, err := f.svc.CheckIn(employeeCtx("e-1"), "")
	require.NoError(t, err)
	assert.False(t, resp.Created)
	assert.Equal(t, attendance.RecordPresent, resp.Attendance.Status)
	require.NotNil(t, resp.Attendance.CheckIn)
}

func TestCheckOut(t *testing.T) {
	f := newFixture(at("2025-03-10 09:00"))
	ctx := employeeCtx("e-1")

	_, err := f.svc.CheckOut(ctx, "")
	assert.ErrorIs(t, err, attendance.ErrNoCheckIn)

	_, err = f.svc.CheckIn(ctx, "")
	require.NoError(t, err)

	f.svc.now = func() time.Time { return at("2025-03-10 18:30") }
	out, err := f.svc.CheckOut(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, out.WorkHours)
	assert.Equal(t, 8.5, *out.WorkHours)
	assert.Equal(t, 0.5, *out.ExtraHours)
	assert.Equal(t, 1.0, out.BreakHours)

	f.svc.now = func() time.Time { return at("2025-03-10 20:00") }
	again, err := f.svc.CheckOut(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, at("2025-03-10 18:30"), *again.CheckOut)
}

func TestCheckOutWithoutStructureUsesNoBreak(t *testing.T) {
	f := newFixture(at("2025-03-10 09:00"))
	ctx := employeeCtx("e-7")
	_, err := f.svc.CheckIn(ctx, "")
	require.NoError(t, err)

	f.svc.now = func() time.Time { return at("2025-03-10 13:00") }
	out, err := f.svc.CheckOut(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 4.0, *out.WorkHours)
	assert.Equal(t, 0.0, *out.ExtraHours)
}

func TestMyAttendance(t *testing.T) {
	f := newFixture(at("2025-03-12 09:00"))
	checkIn := at("2025-03-03 09:00")
	f.attendance.rows[rowKey("e-1", date("2025-03-03"))] = attendance.Attendance{ID: "a-1", EmployeeID: "e-1", Date: date("2025-03-03"), CheckIn: &checkIn, Status: attendance.RecordPresent}
	f.attendance.rows[rowKey("e-1", date("2025-03-04"))] = attendance.Attendance{ID: "a-2", EmployeeID: "e-1", Date: date("2025-03-04"), Status: attendance.RecordLeave}

	resp, err := f.svc.MyAttendance(employeeCtx("e-1"), "2025-03-03", "2025-03-09")
	require.NoError(t, err)
	assert.Len(t, resp.Days, 5)
	assert.Equal(t, "2025-03-03", resp.Days[0].Date)
	assert.Equal(t, attendance.Summary{PresentDays: 1, LeaveDays: 1, AbsentDays: 3, TotalWorkingDays: 5}, resp.Summary)

	single, err := f.svc.MyAttendance(employeeCtx("e-1"), "2025-03-08", "")
	require.NoError(t, err)
	assert.Len(t, single.Days, 1)
	assert.Equal(t, 0, single.Summary.TotalWorkingDays)

	_, err = f.svc.MyAttendance(employeeCtx("e-1"), "2025-03-09", "2025-03-01")
	assert.ErrorIs(t, err, attendance.ErrInvalidDateRange)

	_, err = f.svc.MyAttendance(employeeCtx("e-1"), "03/01/2025", "")
	assert.ErrorIs(t, err, attendance.ErrInvalidDate)
}

func TestBoard(t *testing.T) {
	f := newFixture(at("2025-03-10 12:00"))
	day := date("2025-03-10")
	in, out := at("2025-03-10 09:00"), at("2025-03-10 17:30")
	f.employees.list = []employee.Employee{
		{ID: "e-1", FirstName: "Ann"},
		{ID: "e-2", FirstName: "Bob"},
		{ID: "e-3", FirstName: "Cid"},
		{ID: "e-4", FirstName: "Dee"},
	}
	f.attendance.rows[rowKey("e-1", day)] = attendance.Attendance{ID: "a-1", EmployeeID: "e-1", Date: day, CheckIn: &in, CheckOut: &out, Status: attendance.RecordPresent}
	f.attendance.rows[rowKey("e-2", day)] = attendance.Attendance{ID: "a-2", EmployeeID: "e-2", Date: day, CheckIn: &in, Status: attendance.RecordPresent}
	f.attendance.rows[rowKey("e-3", day)] = attendance.Attendance{ID: "a-3", EmployeeID: "e-3", Date: day, CheckIn: &in, CheckOut: &out, Status: attendance.RecordPresent}
	f.requests.approved = []leave.Request{{EmployeeID: "e-3", StartDate: day, EndDate: day, Status: leave.StatusApproved}}

	ctx := jwt.ContextWithClaims(context.Background(), jwt.Claims{UserID: "u-hr", CompanyID: "c-1", Role: user.RoleHR})
	board, err := f.svc.Board(ctx, "")
	require.NoError(t, err)
	require.Len(t, board.Entries, 4)

	status := map[string]attendance.BoardStatus{}
	for _, e := range board.Entries {
		status[e.EmployeeID] = e.Status
	}
	assert.Equal(t, attendance.StatusCheckedOut, status["e-1"])
	assert.Equal(t, attendance.StatusCheckedIn, status["e-2"])
	assert.Equal(t, attendance.StatusOnLeave, status["e-3"])
	assert.Equal(t, attendance.StatusNotCheckedIn, status["e-4"])
	require.NotNil(t, board.Entries[0].Hours)
	assert.Equal(t, "8h 30m", *board.Entries[0].Hours)
	assert.Nil(t, board.Entries[1].Hours)
	assert.Equal(t, 1, board.Counts[attendance.StatusOnLeave])
}

func TestMarkAbsents(t *testing.T) {
	f := newFixture(at("2025-03-10 19:00"))
	f.attendance.absents = 3
	ctx := jwt.ContextWithClaims(context.Background(), jwt.Claims{UserID: "u-hr", CompanyID: "c-1", Role: user.RoleHR})

	resp, err := f.svc.MarkAbsents(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.MarkedAbsent)
	assert.Equal(t, "2025-03-10", resp.Date)

	_, err = f.svc.MarkAbsents(ctx, "2025-03-09")
	assert.ErrorIs(t, err, attendance.ErrWeekend)
}
