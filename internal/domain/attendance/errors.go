package attendance

import "errors"

var (
	ErrCheckOutBeforeCheckIn = errors.New("check-out is earlier than check-in")
	ErrInvalidTimeOfDay      = errors.New("time must use HH:MM")
	ErrInvalidDate           = errors.New("date must use YYYY-MM-DD")
	ErrInvalidDateRange      = errors.New("from must not be after to")
	ErrWeekend               = errors.New("cannot check in or out on weekends (Saturday/Sunday)")
	ErrOnLeave               = errors.New("cannot check in or out on a day with approved leave")
	ErrNoCheckIn             = errors.New("no check-in found for this date")
	ErrAttendanceNotFound    = errors.New("attendance record not found")
)
