package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayrunStatus string

const (
	PayrunCompleted PayrunStatus = "completed"
	PayrunValidated PayrunStatus = "validated"
)

type PayslipStatus string

const (
	PayslipGenerated PayslipStatus = "generated"
	PayslipValidated PayslipStatus = "validated"
	PayslipCancelled PayslipStatus = "cancelled"
)

// DisplayName is the owner-facing label: validated payslips are paid.
func (s PayslipStatus) DisplayName() string {
	if s == PayslipValidated {
		return "Paid"
	}
	return "Pending"
}

type Payrun struct {
	ID                string
	CompanyID         string
	PeriodMonth       int
	PeriodYear        int
	EmployeeCount     int
	TotalEmployerCost decimal.Decimal
	Status            PayrunStatus
	PayslipsSentAt    *time.Time
	CreatedBy         *string
	CreatedAt         time.Time
}

type Payslip struct {
	ID              string
	PayrunID        string
	EmployeeID      string
	PayableDays     int
	TotalWorkedDays int
	TotalLeaves     int
	BasicWage       decimal.Decimal
	GrossWage       decimal.Decimal
	TotalDeductions decimal.Decimal
	NetWage         decimal.Decimal
	Status          PayslipStatus
	CreatedAt       time.Time

	// Join
	CompanyID          string
	FirstName          string
	LastName           string
	Email              string
	PeriodMonth        int
	PeriodYear         int
	WorkingDaysPerWeek *int
}

func (p Payslip) EmployeeName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

type Component struct {
	Name        string
	Amount      decimal.Decimal
	IsDeduction bool
}
