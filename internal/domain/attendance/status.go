package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
)

// BoardStatus is the derived per-employee state shown on the attendance board.
type BoardStatus string

const (
	StatusOnLeave      BoardStatus = "on-leave"
	StatusCheckedOut   BoardStatus = "checked-out"
	StatusCheckedIn    BoardStatus = "checked-in"
	StatusNotCheckedIn BoardStatus = "not-checked-in"
)

// LeaveSpan is an inclusive date range of a leave request.
type LeaveSpan struct {
	EmployeeID string
	Start      time.Time
	End        time.Time
	Approved   bool
}

// DayRecord is an attendance row reduced to wall-clock HH:MM times.
type DayRecord struct {
	EmployeeID string
	Date       time.Time
	CheckIn    *string
	CheckOut   *string
}

// DeriveStatus computes the employee's status for today with precedence
// on-leave > checked-out > checked-in > not-checked-in.
func DeriveStatus(today time.Time, leaves []LeaveSpan, records []DayRecord, employeeID string) BoardStatus {
	day := DateOnly(today)

	for _, l := range leaves {
		if l.EmployeeID != employeeID || !l.Approved {
			continue
		}
		if !day.Before(DateOnly(l.Start)) && !day.After(DateOnly(l.End)) {
			return StatusOnLeave
		}
	}

	for _, r := range records {
		if r.EmployeeID != employeeID || !DateOnly(r.Date).Equal(day) {
			continue
		}
		switch {
		case r.CheckIn != nil && r.CheckOut != nil:
			return StatusCheckedOut
		case r.CheckIn != nil:
			return StatusCheckedIn
		}
	}

	return StatusNotCheckedIn
}

// ComputeHoursWorked formats the span between two HH:MM times as "8h 30m".
// A nil check-out yields nil. Check-out before check-in is rejected.
func ComputeHoursWorked(checkIn string, checkOut *string) (*string, error) {
	if checkOut == nil {
		return nil, nil
	}
	start, err := minutesOfDay(checkIn)
	if err != nil {
		return nil, err
	}
	end, err := minutesOfDay(*checkOut)
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, ErrCheckOutBeforeCheckIn
	}
	elapsed := end - start
	formatted := fmt.Sprintf("%dh %dm", elapsed/60, elapsed%60)
	return &formatted, nil
}

func minutesOfDay(hhmm string) (int, error) {
	if !validator.IsValidTimeOfDay(hhmm) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, hhmm)
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, hhmm)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// WorkHours is the time between check-in and check-out minus the break,
// rounded to two decimals and never negative.
func WorkHours(checkIn, checkOut time.Time, breakHours float64) float64 {
	hours := checkOut.Sub(checkIn).Hours() - breakHours
	return math.Max(0, round2(hours))
}

// ExtraHours is the overtime beyond the expected daily hours, never negative.
func ExtraHours(workHours, expectedHours float64) float64 {
	return math.Max(0, round2(workHours-expectedHours))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DateOnly drops the clock part, keeping the calendar date of t in its own zone.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ClockTime renders t as HH:MM in loc.
func ClockTime(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format("15:04")
	return &s
}
