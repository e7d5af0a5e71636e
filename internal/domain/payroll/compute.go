package payroll

import (
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/salary"
	"github.com/shopspring/decimal"
)

const (
	ComponentMonthlyWage     = "Monthly Wage"
	ComponentPFEmployee      = "PF Employee"
	ComponentProfessionalTax = "Professional Tax"
)

var hundred = decimal.NewFromInt(100)

// ExpectedWorkingDays counts Monday-Friday of the month, adding Saturdays
// from six working days per week and Sundays from seven.
func ExpectedWorkingDays(year, month, workingDaysPerWeek int) int {
	if workingDaysPerWeek <= 0 {
		workingDaysPerWeek = salary.DefaultWorkingDaysPerWeek
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	count := 0
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday:
			if workingDaysPerWeek >= 6 {
				count++
			}
		case time.Sunday:
			if workingDaysPerWeek >= 7 {
				count++
			}
		default:
			count++
		}
	}
	return count
}

// AbsentDays is the shortfall of present plus leave days against the expected days.
func AbsentDays(expected, present, leave int) int {
	absent := expected - (present + leave)
	if absent < 0 {
		return 0
	}
	return absent
}

// Computation is the result of pricing one employee-month.
type Computation struct {
	Earnings        []Component
	Deductions      []Component
	Basic           decimal.Decimal
	Gross           decimal.Decimal
	TotalDeductions decimal.Decimal
	Net             decimal.Decimal
	EmployerCost    decimal.Decimal
	PayableDays     int
	PresentDays     int
	LeaveDays       int
	ExpectedDays    int
}

// Components lists earnings then deductions.
func (c Computation) Components() []Component {
	all := make([]Component, 0, len(c.Earnings)+len(c.Deductions))
	all = append(all, c.Earnings...)
	return append(all, c.Deductions...)
}

// ComputePayslip prorates the monthly wage by payable days over expected working days,
// prices the components against the prorated base and applies PF and professional tax.
func ComputePayslip(s salary.Structure, components []salary.Component, presentDays, leaveDays, year, month int) Computation {
	expected := ExpectedWorkingDays(year, month, s.WorkingDaysPerWeek)
	payable := presentDays + leaveDays
	if payable > expected {
		payable = expected
	}

	factor := decimal.NewFromInt(1)
	if expected > 0 {
		factor = decimal.NewFromInt(int64(payable)).Div(decimal.NewFromInt(int64(expected)))
	}
	base := s.MonthlyWage.Mul(factor).Round(2)

	c := Computation{
		Basic:        base,
		PayableDays:  payable,
		PresentDays:  presentDays,
		LeaveDays:    leaveDays,
		ExpectedDays: expected,
	}
	c.Earnings = append(c.Earnings, Component{Name: ComponentMonthlyWage, Amount: base})

	for _, comp := range components {
		line := Component{Name: comp.Name, Amount: comp.Amount(base), IsDeduction: comp.IsDeduction}
		if comp.IsDeduction {
			c.Deductions = append(c.Deductions, line)
		} else {
			c.Earnings = append(c.Earnings, line)
		}
	}

	pfEmployee := percentOf(base, s.PFEmployeeRate)
	if !pfEmployee.IsZero() {
		c.Deductions = append(c.Deductions, Component{Name: ComponentPFEmployee, Amount: pfEmployee, IsDeduction: true})
	}
	if s.ProfessionalTaxOverride != nil && !s.ProfessionalTaxOverride.IsZero() {
		c.Deductions = append(c.Deductions, Component{Name: ComponentProfessionalTax, Amount: s.ProfessionalTaxOverride.Round(2), IsDeduction: true})
	}

	for _, e := range c.Earnings {
		c.Gross = c.Gross.Add(e.Amount)
	}
	for _, d := range c.Deductions {
		c.TotalDeductions = c.TotalDeductions.Add(d.Amount)
	}
	c.Net = c.Gross.Sub(c.TotalDeductions)
	c.EmployerCost = c.Gross.Add(percentOf(base, s.PFEmployerRate))

	return c
}

func percentOf(base decimal.Decimal, rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return base.Mul(*rate).Div(hundred).Round(2)
}
