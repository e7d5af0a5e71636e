package payroll

import "errors"

var (
	ErrPayrunNotFound      = errors.New("payrun not found")
	ErrPayslipNotFound     = errors.New("payslip not found")
	ErrForbiddenPayslip    = errors.New("payslip belongs to another employee")
	ErrStructureMissing    = errors.New("salary structure missing")
	ErrInvalidPeriod       = errors.New("period_month must be 1-12 and period_year four digits")
	ErrYearRequired        = errors.New("year query param required")
	ErrPayslipsAlreadySent = errors.New("payslips of this payrun were already sent")
	ErrPayslipValidated    = errors.New("payslip already validated")
	ErrPayslipCancelled    = errors.New("payslip is cancelled")
	ErrMailerDisabled      = errors.New("outgoing mail is not configured")
)
