package attendance

import (
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
)

type AttendanceResponse struct {
	ID           string       `json:"id,omitempty"`
	EmployeeID   string       `json:"employee_id,omitempty"`
	EmployeeName *string      `json:"employee_name,omitempty"`
	Date         string       `json:"date"`
	CheckIn      *time.Time   `json:"check_in"`
	CheckOut     *time.Time   `json:"check_out"`
	BreakHours   float64      `json:"break_hours"`
	WorkHours    *float64     `json:"work_hours"`
	ExtraHours   *float64     `json:"extra_hours"`
	Status       RecordStatus `json:"status"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		Date:         a.Date.Format(validator.DateLayout),
		CheckIn:      a.CheckIn,
		CheckOut:     a.CheckOut,
		BreakHours:   a.BreakHours,
		WorkHours:    a.WorkHours,
		ExtraHours:   a.ExtraHours,
		Status:       a.Status,
	}
}

type CheckInResponse struct {
	Attendance AttendanceResponse `json:"attendance"`
	Created    bool               `json:"created"`
}

type Summary struct {
	PresentDays      int `json:"present_days"`
	LeaveDays        int `json:"leave_days"`
	AbsentDays       int `json:"absent_days"`
	TotalWorkingDays int `json:"total_working_days"`
}

type MyAttendanceResponse struct {
	From    string               `json:"from"`
	To      string               `json:"to"`
	Summary Summary              `json:"summary"`
	Days    []AttendanceResponse `json:"days"`
}

type RosterFilter struct {
	Date string
	pagination.Params
}

type RosterItem struct {
	EmployeeID   string        `json:"employee_id"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	AttendanceID *string       `json:"attendance_id"`
	CheckIn      *time.Time    `json:"check_in"`
	CheckOut     *time.Time    `json:"check_out"`
	WorkHours    *float64      `json:"work_hours"`
	ExtraHours   *float64      `json:"extra_hours"`
	Status       *RecordStatus `json:"status"`
}

type RosterResponse struct {
	Date  string       `json:"date"`
	Items []RosterItem `json:"items"`
	pagination.Page
}

type BoardEntry struct {
	EmployeeID   string      `json:"employeeId"`
	EmployeeName string      `json:"employeeName"`
	Status       BoardStatus `json:"status"`
	CheckIn      *string     `json:"checkIn"`
	CheckOut     *string     `json:"checkOut"`
	Hours        *string     `json:"hours"`
}

type BoardResponse struct {
	Date    string              `json:"date"`
	Entries []BoardEntry        `json:"entries"`
	Counts  map[BoardStatus]int `json:"counts"`
}

type MarkAbsentsResponse struct {
	Date         string `json:"date"`
	MarkedAbsent int64  `json:"marked_absent"`
}
