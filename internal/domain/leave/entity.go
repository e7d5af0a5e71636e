package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// DisplayName is the capitalized label (Pending, Approved, Rejected).
func (s RequestStatus) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	}
	return string(s)
}

type Type struct {
	ID     string
	Name   string
	IsPaid bool
}

type Allocation struct {
	ID            string
	EmployeeID    string
	LeaveTypeID   string
	AllocatedDays decimal.Decimal
	UsedDays      decimal.Decimal
	ValidFrom     *time.Time
	ValidTo       *time.Time
	Notes         *string
	CreatedBy     *string
	CreatedAt     time.Time

	// Join
	LeaveTypeName *string
	FirstName     *string
	LastName      *string
}

type Request struct {
	ID            string
	EmployeeID    string
	LeaveTypeID   string
	StartDate     time.Time
	EndDate       time.Time
	Days          int
	Status        RequestStatus
	Notes         *string
	AttachmentURL *string
	ReviewedBy    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Join
	CompanyID     *string
	EmployeeName  *string
	LeaveTypeName *string
}
