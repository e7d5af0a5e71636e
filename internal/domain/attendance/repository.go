package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)
	Create(ctx context.Context, record Attendance) (Attendance, error)
	// MarkCheckIn sets check_in and flips the row to present.
	MarkCheckIn(ctx context.Context, id string, at time.Time) (Attendance, error)
	MarkCheckOut(ctx context.Context, id string, at time.Time, breakHours, workHours, extraHours float64) (Attendance, error)
	ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
	ListByCompanyDate(ctx context.Context, companyID string, date time.Time) ([]Attendance, error)
	ListRoster(ctx context.Context, companyID string, date time.Time, limit, offset int) ([]RosterEntry, int64, error)
	// MarkLeaveRange writes leave rows for every day of the range, leaving checked-in days untouched.
	MarkLeaveRange(ctx context.Context, employeeID string, from, to time.Time) error
	// InsertAbsents adds absent rows for employees without a record or approved leave on date.
	InsertAbsents(ctx context.Context, companyID string, date time.Time) (int64, error)
	CountStatuses(ctx context.Context, employeeID string, from, to time.Time) (present int, leave int, err error)
}
