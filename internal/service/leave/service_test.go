package leave

import (
	"context"
	"testing"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	typeID   = "5b0c1a3e-8f62-4c1d-9d6a-0c6f6f4a7e01"
	empOwn   = "2f1f7c1e-1111-4a4a-8a8a-000000000001"
	empOther = "2f1f7c1e-1111-4a4a-8a8a-000000000002"
)

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeTypes struct {
	leave.LeaveTypeRepository
	rows      []leave.Type
	listCalls int
}

func (f *fakeTypes) List(context.Context) ([]leave.Type, error) {
	f.listCalls++
	return append([]leave.Type(nil), f.rows...), nil
}

func (f *fakeTypes) GetByID(_ context.Context, id string) (leave.Type, error) {
	for _, t := range f.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return leave.Type{}, pgx.ErrNoRows
}

func (f *fakeTypes) Create(_ context.Context, t leave.Type) (leave.Type, error) {
	t.ID = "type-new"
	f.rows = append(f.rows, t)
	return t, nil
}

type fakeAllocations struct {
	leave.AllocationRepository
	used map[string]int
}

func (f *fakeAllocations) AddUsedDays(_ context.Context, employeeID, leaveTypeID string, days int) (bool, error) {
	f.used[employeeID+"|"+leaveTypeID] += days
	return true, nil
}

type fakeRequests struct {
	leave.RequestRepository
	rows map[string]leave.Request
	seq  int
}

func (f *fakeRequests) Create(_ context.Context, r leave.Request) (leave.Request, error) {
	f.seq++
	r.ID = "req-" + string(rune('0'+f.seq))
	r.CreatedAt = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	f.rows[r.ID] = r
	return r, nil
}

func (f *fakeRequests) GetByIDForUpdate(_ context.Context, id string) (leave.Request, error) {
	r, ok := f.rows[id]
	if !ok {
		return leave.Request{}, pgx.ErrNoRows
	}
	return r, nil
}

func (f *fakeRequests) UpdateStatus(_ context.Context, id string, status leave.RequestStatus, reviewedBy string) error {
	r := f.rows[id]
	r.Status, r.ReviewedBy = status, &reviewedBy
	f.rows[id] = r
	return nil
}

func (f *fakeRequests) List(_ context.Context, _ string, filter leave.RequestFilter) ([]leave.Request, int64, error) {
	var out []leave.Request
	for _, r := range f.rows {
		if filter.EmployeeID == "" || r.EmployeeID == filter.EmployeeID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

type leaveRange struct {
	employeeID string
	from, to   time.Time
}

type fakeAttendance struct {
	attendance.AttendanceRepository
	marked []leaveRange
}

func (f *fakeAttendance) MarkLeaveRange(_ context.Context, employeeID string, from, to time.Time) error {
	f.marked = append(f.marked, leaveRange{employeeID, from, to})
	return nil
}

type fakeEmployees struct {
	employee.EmployeeRepository
	rows map[string]employee.Employee
}

func (f *fakeEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f.rows[id]
	if !ok {
		return employee.Employee{}, pgx.ErrNoRows
	}
	return e, nil
}

type fixture struct {
	svc         leave.LeaveService
	tx          *fakeTx
	types       *fakeTypes
	allocations *fakeAllocations
	requests    *fakeRequests
	attendance  *fakeAttendance
	caches      *cache.Registry
}

func newFixture() *fixture {
	f := &fixture{
		tx:          &fakeTx{},
		types:       &fakeTypes{rows: []leave.Type{{ID: typeID, Name: "Annual", IsPaid: true}}},
		allocations: &fakeAllocations{used: map[string]int{}},
		requests:    &fakeRequests{rows: map[string]leave.Request{}},
		attendance:  &fakeAttendance{},
		caches:      cache.NewRegistry(nil),
	}
	employees := &fakeEmployees{rows: map[string]employee.Employee{
		empOwn:   {ID: empOwn, CompanyID: "c-1", FirstName: "Ann"},
		empOther: {ID: empOther, CompanyID: "c-1", FirstName: "Bob"},
		"foreign": {ID: "foreign", CompanyID: "c-2"},
	}}
	f.svc = NewLeaveService(f.tx, f.types, f.allocations, f.requests, f.attendance, employees, f.caches)
	return f
}

func ctxAs(role user.Role, employeeID string) context.Context {
	return jwt.ContextWithClaims(context.Background(), jwt.Claims{
		UserID:     "u-" + string(role),
		EmployeeID: employeeID,
		CompanyID:  "c-1",
		Role:       role,
	})
}

func TestCreateRequestDefaultsDaysToInclusiveSpan(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.CreateRequest(ctxAs(user.RoleEmployee, empOwn), leave.CreateRequestRequest{
		LeaveTypeID: typeID,
		StartDate:   "2025-01-01",
		EndDate:     "2025-01-05",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Days)
	assert.Equal(t, "Pending", resp.Status)
	assert.Equal(t, 5, f.requests.rows[resp.ID].Days)
	require.NotNil(t, resp.Type)
	assert.Equal(t, "Annual", *resp.Type)
}

func TestCreateRequestOnBehalf(t *testing.T) {
	f := newFixture()
	req := leave.CreateRequestRequest{LeaveTypeID: typeID, StartDate: "2025-02-03", EndDate: "2025-02-03", EmployeeID: empOther}

	_, err := f.svc.CreateRequest(ctxAs(user.RoleEmployee, empOwn), req)
	assert.ErrorIs(t, err, leave.ErrOnBehalfNotPermitted)

	_, err = f.svc.CreateRequest(ctxAs(user.RolePayroll, empOwn), req)
	assert.ErrorIs(t, err, leave.ErrOnBehalfNotPermitted)

	resp, err := f.svc.CreateRequest(ctxAs(user.RoleHR, empOwn), req)
	require.NoError(t, err)
	assert.Equal(t, empOther, resp.EmployeeID)
}

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateRequest(ctxAs(user.RoleEmployee, empOwn), leave.CreateRequestRequest{
		LeaveTypeID: typeID,
		StartDate:   "2025-01-05",
		EndDate:     "2025-01-01",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end_date")

	_, err = f.svc.CreateRequest(ctxAs(user.RoleEmployee, empOwn), leave.CreateRequestRequest{
		LeaveTypeID: "9b0c1a3e-8f62-4c1d-9d6a-0c6f6f4a7e09",
		StartDate:   "2025-01-01",
		EndDate:     "2025-01-01",
	})
	assert.ErrorIs(t, err, leave.ErrLeaveTypeNotFound)
}

func TestListRequestsScopesEmployees(t *testing.T) {
	f := newFixture()
	f.requests.rows["r1"] = leave.Request{ID: "r1", EmployeeID: empOwn, Status: leave.StatusPending}
	f.requests.rows["r2"] = leave.Request{ID: "r2", EmployeeID: empOther, Status: leave.StatusPending}

	own, err := f.svc.ListRequests(ctxAs(user.RoleEmployee, empOwn), leave.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, "r1", own.Items[0].ID)

	all, err := f.svc.ListRequests(ctxAs(user.RolePayroll, ""), leave.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, int64(2), all.Total)
}

func TestApprove(t *testing.T) {
	f := newFixture()
	start, end := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	f.requests.rows["r1"] = leave.Request{ID: "r1", EmployeeID: empOwn, LeaveTypeID: typeID, StartDate: start, EndDate: end, Days: 3, Status: leave.StatusPending}
	f.caches.MustGet(cache.Employee).Set("employee:"+empOwn, "stale")

	resp, err := f.svc.Approve(ctxAs(user.RoleHR, ""), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", resp.ID)

	assert.Equal(t, leave.StatusApproved, f.requests.rows["r1"].Status)
	assert.Equal(t, 3, f.allocations.used[empOwn+"|"+typeID])
	require.Len(t, f.attendance.marked, 1)
	assert.Equal(t, leaveRange{empOwn, start, end}, f.attendance.marked[0])
	assert.Equal(t, 1, f.tx.calls)
	assert.Empty(t, f.caches.MustGet(cache.Employee).Keys())

	_, err = f.svc.Approve(ctxAs(user.RoleHR, ""), "r1")
	assert.ErrorIs(t, err, leave.ErrRequestProcessed)
	assert.Equal(t, 3, f.allocations.used[empOwn+"|"+typeID])
}

func TestRejectAndNotFound(t *testing.T) {
	f := newFixture()
	other := "c-2"
	f.requests.rows["r1"] = leave.Request{ID: "r1", EmployeeID: empOwn, Status: leave.StatusPending}
	f.requests.rows["r2"] = leave.Request{ID: "r2", EmployeeID: "foreign", Status: leave.StatusPending, CompanyID: &other}

	_, err := f.svc.Reject(ctxAs(user.RoleHR, ""), "r1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, f.requests.rows["r1"].Status)
	assert.Empty(t, f.attendance.marked)

	_, err = f.svc.Approve(ctxAs(user.RoleHR, ""), "r1")
	assert.ErrorIs(t, err, leave.ErrRequestProcessed)

	_, err = f.svc.Reject(ctxAs(user.RoleHR, ""), "missing")
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)

	_, err = f.svc.Approve(ctxAs(user.RoleHR, ""), "r2")
	assert.ErrorIs(t, err, leave.ErrForbiddenRequest)
}

func TestListTypesIsCached(t *testing.T) {
	f := newFixture()
	ctx := ctxAs(user.RoleEmployee, empOwn)

	first, err := f.svc.ListTypes(ctx)
	require.NoError(t, err)
	_, err = f.svc.ListTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, f.types.listCalls)

	_, err = f.svc.CreateType(ctx, leave.CreateTypeRequest{Name: "  Sick  "})
	require.NoError(t, err)

	after, err := f.svc.ListTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 2)
	assert.Equal(t, "Sick", after[1].Name)
	assert.Equal(t, 2, f.types.listCalls)
}
