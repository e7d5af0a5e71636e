package attendance

import "time"

// RecordStatus is the persisted state of one attendance row.
type RecordStatus string

const (
	RecordPresent RecordStatus = "present"
	RecordAbsent  RecordStatus = "absent"
	RecordLeave   RecordStatus = "leave"
)

// Attendance is one employee's record for one calendar day.
type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	CheckIn    *time.Time
	CheckOut   *time.Time
	BreakHours float64
	WorkHours  *float64
	ExtraHours *float64
	Status     RecordStatus
	CreatedAt  time.Time

	// Join
	EmployeeName *string
}

// RosterEntry is an employee of the company joined with their record for a date, if any.
type RosterEntry struct {
	EmployeeID   string
	FirstName    string
	LastName     string
	AttendanceID *string
	CheckIn      *time.Time
	CheckOut     *time.Time
	WorkHours    *float64
	ExtraHours   *float64
	Status       *RecordStatus
}
