package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

type PayrollRepository interface {
	CreatePayrun(ctx context.Context, p Payrun) (Payrun, error)
	UpdatePayrunTotals(ctx context.Context, id string, employeeCount int, totalEmployerCost decimal.Decimal) error
	GetPayrun(ctx context.Context, companyID, id string) (Payrun, error)
	LatestPayrun(ctx context.Context, companyID string) (Payrun, error)
	ListPayruns(ctx context.Context, companyID string, limit, offset int) ([]Payrun, int64, error)
	SetPayrunStatus(ctx context.Context, id string, status PayrunStatus) error
	// ClaimPayslipMailing stamps payslips_sent_at once; false means another run already did.
	ClaimPayslipMailing(ctx context.Context, payrunID string) (bool, error)

	CreatePayslip(ctx context.Context, p Payslip, components []Component) (Payslip, error)
	GetPayslip(ctx context.Context, id string) (Payslip, error)
	ListPayslipsByPayrun(ctx context.Context, payrunID string, limit, offset int) ([]Payslip, int64, error)
	ListPayslipsByEmployee(ctx context.Context, employeeID string) ([]Payslip, error)
	ListPayslipsByEmployeeYear(ctx context.Context, employeeID string, year int) ([]Payslip, error)
	ListComponents(ctx context.Context, payslipID string) ([]Component, error)
	SetPayslipStatus(ctx context.Context, id string, status PayslipStatus) error
	SetPayrunPayslipsStatus(ctx context.Context, payrunID string, status PayslipStatus) error
	ReplaceComputation(ctx context.Context, payslipID string, c Computation) error

	// EmployerCostByMonth sums total_employer_cost of the year's payruns per month.
	EmployerCostByMonth(ctx context.Context, companyID string, year int) (map[int]decimal.Decimal, error)
}
