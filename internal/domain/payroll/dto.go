package payroll

import (
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreatePayrunRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *CreatePayrunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs.Add("period_month", "period_month must be between 1 and 12")
	}
	if r.PeriodYear < 1000 || r.PeriodYear > 9999 {
		errs.Add("period_year", "period_year must be a four digit year")
	}

	return errs.Err()
}

type PayrunCreatedResponse struct {
	ID                string          `json:"id"`
	EmployeeCount     int             `json:"employee_count"`
	TotalEmployerCost decimal.Decimal `json:"total_employer_cost"`
	PeriodMonth       int             `json:"period_month"`
	PeriodYear        int             `json:"period_year"`
}

type PayrunResponse struct {
	ID                string          `json:"id"`
	PeriodMonth       int             `json:"period_month"`
	PeriodYear        int             `json:"period_year"`
	EmployeeCount     int             `json:"employee_count"`
	TotalEmployerCost decimal.Decimal `json:"total_employer_cost"`
	Status            PayrunStatus    `json:"status"`
	PayslipsSentAt    *time.Time      `json:"payslips_sent_at"`
	CreatedAt         time.Time       `json:"created_at"`
}

func NewPayrunResponse(p Payrun) PayrunResponse {
	return PayrunResponse{
		ID:                p.ID,
		PeriodMonth:       p.PeriodMonth,
		PeriodYear:        p.PeriodYear,
		EmployeeCount:     p.EmployeeCount,
		TotalEmployerCost: p.TotalEmployerCost,
		Status:            p.Status,
		PayslipsSentAt:    p.PayslipsSentAt,
		CreatedAt:         p.CreatedAt,
	}
}

type ListPayrunFilter struct {
	pagination.Params
}

type ListPayrunResponse struct {
	Items []PayrunResponse `json:"items"`
	pagination.Page
}

// PayslipResponse is the administrative row of a payslip.
type PayslipResponse struct {
	ID                  string          `json:"id"`
	PayrunID            string          `json:"payrun_id"`
	EmployeeID          string          `json:"employee_id"`
	EmployeeName        string          `json:"employee_name"`
	PeriodMonth         int             `json:"period_month"`
	PeriodYear          int             `json:"period_year"`
	PayableDays         int             `json:"payable_days"`
	TotalWorkedDays     int             `json:"total_worked_days"`
	TotalLeaves         int             `json:"total_leaves"`
	AbsentDays          int             `json:"absent_days"`
	ExpectedWorkingDays int             `json:"expected_working_days"`
	BasicWage           decimal.Decimal `json:"basic_wage"`
	GrossWage           decimal.Decimal `json:"gross_wage"`
	TotalDeductions     decimal.Decimal `json:"total_deductions"`
	NetWage             decimal.Decimal `json:"net_wage"`
	Status              PayslipStatus   `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
}

func NewPayslipResponse(p Payslip) PayslipResponse {
	wdpw := 0
	if p.WorkingDaysPerWeek != nil {
		wdpw = *p.WorkingDaysPerWeek
	}
	expected := ExpectedWorkingDays(p.PeriodYear, p.PeriodMonth, wdpw)
	return PayslipResponse{
		ID:                  p.ID,
		PayrunID:            p.PayrunID,
		EmployeeID:          p.EmployeeID,
		EmployeeName:        p.EmployeeName(),
		PeriodMonth:         p.PeriodMonth,
		PeriodYear:          p.PeriodYear,
		PayableDays:         p.PayableDays,
		TotalWorkedDays:     p.TotalWorkedDays,
		TotalLeaves:         p.TotalLeaves,
		AbsentDays:          AbsentDays(expected, p.TotalWorkedDays, p.TotalLeaves),
		ExpectedWorkingDays: expected,
		BasicWage:           p.BasicWage,
		GrossWage:           p.GrossWage,
		TotalDeductions:     p.TotalDeductions,
		NetWage:             p.NetWage,
		Status:              p.Status,
		CreatedAt:           p.CreatedAt,
	}
}

type ListPayslipResponse struct {
	Items []PayslipResponse `json:"items"`
	pagination.Page
}

type ComponentResponse struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	IsDeduction bool            `json:"is_deduction"`
}

type PayslipSummary struct {
	Earnings   []ComponentResponse `json:"earnings"`
	Deductions []ComponentResponse `json:"deductions"`
}

type PayslipDetailResponse struct {
	Payslip    PayslipResponse     `json:"payslip"`
	Components []ComponentResponse `json:"components"`
	Summary    PayslipSummary      `json:"summary"`
}

func NewPayslipDetailResponse(p Payslip, components []Component) PayslipDetailResponse {
	resp := PayslipDetailResponse{
		Payslip:    NewPayslipResponse(p),
		Components: make([]ComponentResponse, 0, len(components)),
		Summary: PayslipSummary{
			Earnings:   []ComponentResponse{},
			Deductions: []ComponentResponse{},
		},
	}
	for _, c := range components {
		cr := ComponentResponse{Name: c.Name, Amount: c.Amount, IsDeduction: c.IsDeduction}
		resp.Components = append(resp.Components, cr)
		if c.IsDeduction {
			resp.Summary.Deductions = append(resp.Summary.Deductions, cr)
		} else {
			resp.Summary.Earnings = append(resp.Summary.Earnings, cr)
		}
	}
	return resp
}

// PayslipView is the employee-facing payslip card.
type PayslipView struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Month        string          `json:"month"`
	BasicSalary  decimal.Decimal `json:"basicSalary"`
	Allowances   decimal.Decimal `json:"allowances"`
	Deductions   decimal.Decimal `json:"deductions"`
	NetPay       decimal.Decimal `json:"netPay"`
	Status       string          `json:"status"`
}

// NewPayslipView splits gross into the basic wage and allowances so that
// NetPay always equals BasicSalary + Allowances - Deductions.
func NewPayslipView(p Payslip) PayslipView {
	allowances := p.GrossWage.Sub(p.BasicWage)
	return PayslipView{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		EmployeeName: p.EmployeeName(),
		Month:        PeriodLabel(p.PeriodYear, p.PeriodMonth),
		BasicSalary:  p.BasicWage,
		Allowances:   allowances,
		Deductions:   p.TotalDeductions,
		NetPay:       p.BasicWage.Add(allowances).Sub(p.TotalDeductions),
		Status:       p.Status.DisplayName(),
	}
}

// PeriodLabel formats a period as "March 2025".
func PeriodLabel(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type MonthCost struct {
	Month        int             `json:"month"`
	EmployerCost decimal.Decimal `json:"employer_cost"`
}

type EmployerCostResponse struct {
	Year   int         `json:"year"`
	Months []MonthCost `json:"months"`
}

type MonthHeadcount struct {
	Month         int `json:"month"`
	EmployeeCount int `json:"employee_count"`
}

type EmployeeCountResponse struct {
	Year   int              `json:"year"`
	Months []MonthHeadcount `json:"months"`
}

type SendPayslipsResponse struct {
	PayrunID string `json:"payrun_id"`
	Sent     int    `json:"sent"`
	Failed   int    `json:"failed"`
	Skipped  int    `json:"skipped"`
}

// FileResponse is a generated document ready to be streamed.
type FileResponse struct {
	Name        string
	ContentType string
	Content     []byte
}
