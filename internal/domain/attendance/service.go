package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	// CheckIn records the caller's check-in for date (YYYY-MM-DD, empty for today).
	CheckIn(ctx context.Context, date string) (CheckInResponse, error)
	CheckOut(ctx context.Context, date string) (AttendanceResponse, error)
	// RecordCheckIn is the shared check-in path for manual and face check-ins.
	RecordCheckIn(ctx context.Context, employeeID string, day time.Time) (Attendance, bool, error)
	MyAttendance(ctx context.Context, from, to string) (MyAttendanceResponse, error)
	ListByDate(ctx context.Context, filter RosterFilter) (RosterResponse, error)
	Board(ctx context.Context, date string) (BoardResponse, error)
	MarkAbsents(ctx context.Context, date string) (MarkAbsentsResponse, error)
	MarkAbsentsForCompany(ctx context.Context, companyID string, day time.Time) (int64, error)
}
