package payroll

import "context"

type PayrollService interface {
	CreatePayrun(ctx context.Context, req CreatePayrunRequest) (PayrunCreatedResponse, error)
	ListPayruns(ctx context.Context, filter ListPayrunFilter) (ListPayrunResponse, error)
	GetPayrun(ctx context.Context, id string) (PayrunResponse, error)
	ListPayrunPayslips(ctx context.Context, payrunID string, filter ListPayrunFilter) (ListPayslipResponse, error)
	ValidatePayrun(ctx context.Context, id string) (StatusResponse, error)

	GetPayslip(ctx context.Context, id string) (PayslipDetailResponse, error)
	ValidatePayslip(ctx context.Context, id string) (StatusResponse, error)
	CancelPayslip(ctx context.Context, id string) (StatusResponse, error)
	RecomputePayslip(ctx context.Context, id string) (StatusResponse, error)
	MyPayslips(ctx context.Context) ([]PayslipView, error)

	ExportPayslip(ctx context.Context, id string) (FileResponse, error)
	// SalaryReport builds the yearly workbook; an empty employeeID means the caller.
	SalaryReport(ctx context.Context, employeeID string, year int) (FileResponse, error)

	EmployerCostMetrics(ctx context.Context, year int) (EmployerCostResponse, error)
	EmployeeCountMetrics(ctx context.Context, year int) (EmployeeCountResponse, error)

	SendPayslips(ctx context.Context, payrunID string) (SendPayslipsResponse, error)
	// SendMonthEndPayslips mails the latest payrun of every company that has not been mailed yet.
	SendMonthEndPayslips(ctx context.Context) error
}
