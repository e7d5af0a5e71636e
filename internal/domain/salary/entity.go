package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

type ComputationType string

const (
	ComputationFixed      ComputationType = "fixed"
	ComputationPercentage ComputationType = "percentage"
)

func (c ComputationType) IsValid() bool {
	return c == ComputationFixed || c == ComputationPercentage
}

// DefaultWorkingDaysPerWeek applies when a structure leaves it unset.
const DefaultWorkingDaysPerWeek = 5

type Structure struct {
	ID                      string
	EmployeeID              string
	MonthlyWage             decimal.Decimal
	WorkingDaysPerWeek      int
	BreakHours              decimal.Decimal
	PFEmployeeRate          *decimal.Decimal
	PFEmployerRate          *decimal.Decimal
	ProfessionalTaxOverride *decimal.Decimal
	CreatedAt               time.Time
	UpdatedAt               time.Time

	// Join
	FirstName *string
	LastName  *string
	Email     *string
}

// YearlyWage is twelve monthly wages.
func (s Structure) YearlyWage() decimal.Decimal {
	return s.MonthlyWage.Mul(decimal.NewFromInt(12))
}

// Component is an earning or deduction on top of the monthly wage.
// Percentage values are a share of the (prorated) monthly wage.
type Component struct {
	ID              string
	EmployeeID      string
	Name            string
	ComputationType ComputationType
	Value           decimal.Decimal
	IsDeduction     bool
}

// Amount resolves the component against a base wage, rounded to two places.
func (c Component) Amount(base decimal.Decimal) decimal.Decimal {
	if c.ComputationType == ComputationPercentage {
		return base.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(2)
	}
	return c.Value.Round(2)
}
