package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/company"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/payroll"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/salary"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/email"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/report"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// mailConcurrency bounds the number of payslip mails in flight.
const mailConcurrency = 4

const payslipPageSize = 100

type PayrollServiceImpl struct {
	tx database.Transactor
	payroll.PayrollRepository
	salary.SalaryRepository
	employee.EmployeeRepository
	attendance.AttendanceRepository
	company.CompanyRepository
	mailer email.EmailService
	caches *cache.Registry
	app    *cache.Cache
	now    func() time.Time
}

// NewPayrollService wires the payroll service. mailer may be nil when SMTP is not configured.
func NewPayrollService(
	tx database.Transactor,
	payrollRepository payroll.PayrollRepository,
	salaryRepository salary.SalaryRepository,
	employeeRepository employee.EmployeeRepository,
	attendanceRepository attendance.AttendanceRepository,
	companyRepository company.CompanyRepository,
	mailer email.EmailService,
	caches *cache.Registry,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:                   tx,
		PayrollRepository:    payrollRepository,
		SalaryRepository:     salaryRepository,
		EmployeeRepository:   employeeRepository,
		AttendanceRepository: attendanceRepository,
		CompanyRepository:    companyRepository,
		mailer:               mailer,
		caches:               caches,
		app:                  caches.MustGet(cache.App),
		now:                  time.Now,
	}
}

// myPayslipsKey ends with the company id so company-wide clears reach it.
func myPayslipsKey(employeeID, companyID string) string {
	return "payroll:" + employeeID + ":" + companyID
}

func periodBounds(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// compute prices one employee-month from the current structure and attendance.
func (s *PayrollServiceImpl) compute(ctx context.Context, employeeID string, year, month int) (payroll.Computation, error) {
	structure, err := s.SalaryRepository.GetStructure(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Computation{}, payroll.ErrStructureMissing
		}
		return payroll.Computation{}, fmt.Errorf("failed to get salary structure: %w", err)
	}
	components, err := s.SalaryRepository.ListComponents(ctx, employeeID)
	if err != nil {
		return payroll.Computation{}, fmt.Errorf("failed to list salary components: %w", err)
	}
	from, to := periodBounds(year, month)
	present, leaves, err := s.AttendanceRepository.CountStatuses(ctx, employeeID, from, to)
	if err != nil {
		return payroll.Computation{}, fmt.Errorf("failed to count attendance: %w", err)
	}
	return payroll.ComputePayslip(structure, components, present, leaves, year, month), nil
}

// CreatePayrun implements payroll.PayrollService. Employees without a salary
// structure are skipped; everything else is written in one transaction.
func (s *PayrollServiceImpl) CreatePayrun(ctx context.Context, req payroll.CreatePayrunRequest) (payroll.PayrunCreatedResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.PayrunCreatedResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrunCreatedResponse{}, err
	}

	var (
		payrun payroll.Payrun
		count  int
		total  = decimal.Zero
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := s.PayrollRepository.CreatePayrun(ctx, payroll.Payrun{
			CompanyID:   claims.CompanyID,
			PeriodMonth: req.PeriodMonth,
			PeriodYear:  req.PeriodYear,
			Status:      payroll.PayrunCompleted,
			CreatedBy:   &claims.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to create payrun: %w", err)
		}

		employees, err := s.EmployeeRepository.ListByCompany(ctx, claims.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		for _, e := range employees {
			c, err := s.compute(ctx, e.ID, req.PeriodYear, req.PeriodMonth)
			if errors.Is(err, payroll.ErrStructureMissing) {
				slog.Debug("payrun skips employee without salary structure", "employee_id", e.ID)
				continue
			}
			if err != nil {
				return err
			}
			_, err = s.PayrollRepository.CreatePayslip(ctx, payroll.Payslip{
				PayrunID:        created.ID,
				EmployeeID:      e.ID,
				PayableDays:     c.PayableDays,
				TotalWorkedDays: c.PresentDays,
				TotalLeaves:     c.LeaveDays,
				BasicWage:       c.Basic,
				GrossWage:       c.Gross,
				TotalDeductions: c.TotalDeductions,
				NetWage:         c.Net,
				Status:          payroll.PayslipGenerated,
			}, c.Components())
			if err != nil {
				return fmt.Errorf("failed to create payslip: %w", err)
			}
			count++
			total = total.Add(c.EmployerCost)
		}

		if err := s.PayrollRepository.UpdatePayrunTotals(ctx, created.ID, count, total); err != nil {
			return fmt.Errorf("failed to update payrun totals: %w", err)
		}
		payrun = created
		return nil
	})
	if err != nil {
		return payroll.PayrunCreatedResponse{}, err
	}

	s.caches.ClearCompany(claims.CompanyID)
	slog.Info("payrun created", "payrun_id", payrun.ID, "company_id", claims.CompanyID,
		"period", payroll.PeriodLabel(req.PeriodYear, req.PeriodMonth), "payslips", count)

	return payroll.PayrunCreatedResponse{
		ID:                payrun.ID,
		EmployeeCount:     count,
		TotalEmployerCost: total,
		PeriodMonth:       req.PeriodMonth,
		PeriodYear:        req.PeriodYear,
	}, nil
}

// ListPayruns implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListPayruns(ctx context.Context, filter payroll.ListPayrunFilter) (payroll.ListPayrunResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.ListPayrunResponse{}, err
	}
	rows, total, err := s.PayrollRepository.ListPayruns(ctx, claims.CompanyID, filter.Limit(), filter.Offset())
	if err != nil {
		return payroll.ListPayrunResponse{}, fmt.Errorf("failed to list payruns: %w", err)
	}
	items := make([]payroll.PayrunResponse, 0, len(rows))
	for _, p := range rows {
		items = append(items, payroll.NewPayrunResponse(p))
	}
	return payroll.ListPayrunResponse{Items: items, Page: pagination.NewPage(filter.Params, total)}, nil
}

func (s *PayrollServiceImpl) payrun(ctx context.Context, companyID, id string) (payroll.Payrun, error) {
	p, err := s.PayrollRepository.GetPayrun(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payrun{}, payroll.ErrPayrunNotFound
		}
		return payroll.Payrun{}, fmt.Errorf("failed to get payrun: %w", err)
	}
	return p, nil
}

// GetPayrun implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPayrun(ctx context.Context, id string) (payroll.PayrunResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.PayrunResponse{}, err
	}
	p, err := s.payrun(ctx, claims.CompanyID, id)
	if err != nil {
		return payroll.PayrunResponse{}, err
	}
	return payroll.NewPayrunResponse(p), nil
}

// ListPayrunPayslips implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListPayrunPayslips(ctx context.Context, payrunID string, filter payroll.ListPayrunFilter) (payroll.ListPayslipResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.ListPayslipResponse{}, err
	}
	if _, err := s.payrun(ctx, claims.CompanyID, payrunID); err != nil {
		return payroll.ListPayslipResponse{}, err
	}
	rows, total, err := s.PayrollRepository.ListPayslipsByPayrun(ctx, payrunID, filter.Limit(), filter.Offset())
	if err != nil {
		return payroll.ListPayslipResponse{}, fmt.Errorf("failed to list payslips: %w", err)
	}
	items := make([]payroll.PayslipResponse, 0, len(rows))
	for _, p := range rows {
		items = append(items, payroll.NewPayslipResponse(p))
	}
	return payroll.ListPayslipResponse{Items: items, Page: pagination.NewPage(filter.Params, total)}, nil
}

// ValidatePayrun implements payroll.PayrollService. Cancelled payslips stay cancelled.
func (s *PayrollServiceImpl) ValidatePayrun(ctx context.Context, id string) (payroll.StatusResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.StatusResponse{}, err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.payrun(ctx, claims.CompanyID, id); err != nil {
			return err
		}
		if err := s.PayrollRepository.SetPayrunStatus(ctx, id, payroll.PayrunValidated); err != nil {
			return fmt.Errorf("failed to validate payrun: %w", err)
		}
		if err := s.PayrollRepository.SetPayrunPayslipsStatus(ctx, id, payroll.PayslipValidated); err != nil {
			return fmt.Errorf("failed to validate payslips: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.StatusResponse{}, err
	}
	s.caches.ClearCompany(claims.CompanyID)
	return payroll.StatusResponse{ID: id, Status: string(payroll.PayrunValidated)}, nil
}

// payslip loads a payslip of the caller's company. Roles other than admin and
// payroll may only read their own.
func (s *PayrollServiceImpl) payslip(ctx context.Context, claims jwt.Claims, id string) (payroll.Payslip, error) {
	p, err := s.PayrollRepository.GetPayslip(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	if p.CompanyID != claims.CompanyID {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	if !canManage(claims.Role) && p.EmployeeID != claims.EmployeeID {
		return payroll.Payslip{}, payroll.ErrForbiddenPayslip
	}
	return p, nil
}

func canManage(r user.Role) bool {
	return r == user.RoleAdmin || r == user.RolePayroll
}

// GetPayslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.PayslipDetailResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.PayslipDetailResponse{}, err
	}
	p, err := s.payslip(ctx, claims, id)
	if err != nil {
		return payroll.PayslipDetailResponse{}, err
	}
	components, err := s.PayrollRepository.ListComponents(ctx, id)
	if err != nil {
		return payroll.PayslipDetailResponse{}, fmt.Errorf("failed to list payslip components: %w", err)
	}
	return payroll.NewPayslipDetailResponse(p, components), nil
}

func (s *PayrollServiceImpl) setPayslipStatus(ctx context.Context, id string, status payroll.PayslipStatus) (payroll.StatusResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.StatusResponse{}, err
	}
	p, err := s.payslip(ctx, claims, id)
	if err != nil {
		return payroll.StatusResponse{}, err
	}
	switch {
	case p.Status == status:
		return payroll.StatusResponse{ID: id, Status: string(status)}, nil
	case p.Status == payroll.PayslipValidated:
		return payroll.StatusResponse{}, payroll.ErrPayslipValidated
	case p.Status == payroll.PayslipCancelled:
		return payroll.StatusResponse{}, payroll.ErrPayslipCancelled
	}
	if err := s.PayrollRepository.SetPayslipStatus(ctx, id, status); err != nil {
		return payroll.StatusResponse{}, fmt.Errorf("failed to update payslip: %w", err)
	}
	s.caches.ClearEmployee(p.EmployeeID)
	slog.Info("payslip status changed", "payslip_id", id, "status", status, "by", claims.UserID)
	return payroll.StatusResponse{ID: id, Status: string(status)}, nil
}

// ValidatePayslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) ValidatePayslip(ctx context.Context, id string) (payroll.StatusResponse, error) {
	return s.setPayslipStatus(ctx, id, payroll.PayslipValidated)
}

// CancelPayslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) CancelPayslip(ctx context.Context, id string) (payroll.StatusResponse, error) {
	return s.setPayslipStatus(ctx, id, payroll.PayslipCancelled)
}

// RecomputePayslip implements payroll.PayrollService. The payslip is priced again
// from the current structure and attendance and returns to generated.
func (s *PayrollServiceImpl) RecomputePayslip(ctx context.Context, id string) (payroll.StatusResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.StatusResponse{}, err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.payslip(ctx, claims, id)
		if err != nil {
			return err
		}
		if p.Status == payroll.PayslipValidated {
			return payroll.ErrPayslipValidated
		}
		c, err := s.compute(ctx, p.EmployeeID, p.PeriodYear, p.PeriodMonth)
		if err != nil {
			return err
		}
		if err := s.PayrollRepository.ReplaceComputation(ctx, id, c); err != nil {
			return fmt.Errorf("failed to store recomputed payslip: %w", err)
		}
		s.caches.ClearEmployee(p.EmployeeID)
		return nil
	})
	if err != nil {
		return payroll.StatusResponse{}, err
	}
	return payroll.StatusResponse{ID: id, Status: string(payroll.PayslipGenerated)}, nil
}

// MyPayslips implements payroll.PayrollService.
func (s *PayrollServiceImpl) MyPayslips(ctx context.Context) ([]payroll.PayslipView, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if claims.EmployeeID == "" {
		return nil, employee.ErrProfileNotLinked
	}
	key := myPayslipsKey(claims.EmployeeID, claims.CompanyID)
	return cache.Load(ctx, s.app, key, s.app.DefaultTTL(), func(ctx context.Context) ([]payroll.PayslipView, error) {
		rows, err := s.PayrollRepository.ListPayslipsByEmployee(ctx, claims.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("failed to list payslips: %w", err)
		}
		views := make([]payroll.PayslipView, 0, len(rows))
		for _, p := range rows {
			if p.Status == payroll.PayslipCancelled {
				continue
			}
			views = append(views, payroll.NewPayslipView(p))
		}
		return views, nil
	})
}

func (s *PayrollServiceImpl) companyName(ctx context.Context, id string) string {
	c, err := s.CompanyRepository.GetByID(ctx, id)
	if err != nil {
		slog.Warn("company name unavailable", "error", err, "company_id", id)
		return ""
	}
	return c.Name
}

func (s *PayrollServiceImpl) payslipReport(ctx context.Context, p payroll.Payslip, companyName string) (report.Payslip, error) {
	components, err := s.PayrollRepository.ListComponents(ctx, p.ID)
	if err != nil {
		return report.Payslip{}, fmt.Errorf("failed to list payslip components: %w", err)
	}
	view := payroll.NewPayslipResponse(p)
	r := report.Payslip{
		ID:              p.ID,
		EmployeeName:    p.EmployeeName(),
		Email:           p.Email,
		CompanyName:     companyName,
		Month:           p.PeriodMonth,
		Year:            p.PeriodYear,
		Status:          p.Status.DisplayName(),
		GeneratedAt:     p.CreatedAt,
		PayableDays:     p.PayableDays,
		WorkedDays:      p.TotalWorkedDays,
		LeaveDays:       p.TotalLeaves,
		AbsentDays:      view.AbsentDays,
		Gross:           p.GrossWage,
		TotalDeductions: p.TotalDeductions,
		Net:             p.NetWage,
	}
	for _, c := range components {
		line := report.Line{Name: c.Name, Amount: c.Amount}
		if c.IsDeduction {
			r.Deductions = append(r.Deductions, line)
		} else {
			r.Earnings = append(r.Earnings, line)
		}
	}
	return r, nil
}

// ExportPayslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) ExportPayslip(ctx context.Context, id string) (payroll.FileResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.FileResponse{}, err
	}
	p, err := s.payslip(ctx, claims, id)
	if err != nil {
		return payroll.FileResponse{}, err
	}
	r, err := s.payslipReport(ctx, p, s.companyName(ctx, claims.CompanyID))
	if err != nil {
		return payroll.FileResponse{}, err
	}
	content, err := report.PayslipWorkbook(r)
	if err != nil {
		return payroll.FileResponse{}, fmt.Errorf("failed to render payslip: %w", err)
	}
	return payroll.FileResponse{Name: report.PayslipFileName(r), ContentType: report.ContentTypeXLSX, Content: content}, nil
}

// SalaryReport implements payroll.PayrollService.
func (s *PayrollServiceImpl) SalaryReport(ctx context.Context, employeeID string, year int) (payroll.FileResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.FileResponse{}, err
	}
	if year == 0 {
		return payroll.FileResponse{}, payroll.ErrYearRequired
	}
	if year < 1000 || year > 9999 {
		return payroll.FileResponse{}, payroll.ErrInvalidPeriod
	}
	if employeeID == "" {
		if claims.EmployeeID == "" {
			return payroll.FileResponse{}, employee.ErrProfileNotLinked
		}
		employeeID = claims.EmployeeID
	}
	if employeeID != claims.EmployeeID && !canManage(claims.Role) {
		return payroll.FileResponse{}, payroll.ErrForbiddenPayslip
	}

	e, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.FileResponse{}, employee.ErrEmployeeNotFound
		}
		return payroll.FileResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if e.CompanyID != claims.CompanyID {
		return payroll.FileResponse{}, employee.ErrForbiddenEmployee
	}

	rows, err := s.PayrollRepository.ListPayslipsByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		return payroll.FileResponse{}, fmt.Errorf("failed to list payslips: %w", err)
	}
	y := report.YearlySalary{
		EmployeeName: e.FullName(),
		Email:        e.Email,
		CompanyName:  s.companyName(ctx, claims.CompanyID),
		Year:         year,
	}
	for _, p := range rows {
		if p.Status == payroll.PayslipCancelled {
			continue
		}
		y.Months = append(y.Months, report.MonthRow{
			Month:       p.PeriodMonth,
			Gross:       p.GrossWage,
			Net:         p.NetWage,
			PayableDays: p.PayableDays,
			WorkedDays:  p.TotalWorkedDays,
			LeaveDays:   p.TotalLeaves,
		})
	}
	content, err := report.YearlySalaryWorkbook(y)
	if err != nil {
		return payroll.FileResponse{}, fmt.Errorf("failed to render salary report: %w", err)
	}
	return payroll.FileResponse{Name: report.YearlyFileName(employeeID, year), ContentType: report.ContentTypeXLSX, Content: content}, nil
}

// EmployerCostMetrics implements payroll.PayrollService. Months without a payrun report zero.
func (s *PayrollServiceImpl) EmployerCostMetrics(ctx context.Context, year int) (payroll.EmployerCostResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.EmployerCostResponse{}, err
	}
	if year == 0 {
		return payroll.EmployerCostResponse{}, payroll.ErrYearRequired
	}
	costs, err := s.PayrollRepository.EmployerCostByMonth(ctx, claims.CompanyID, year)
	if err != nil {
		return payroll.EmployerCostResponse{}, fmt.Errorf("failed to sum employer cost: %w", err)
	}
	resp := payroll.EmployerCostResponse{Year: year, Months: make([]payroll.MonthCost, 0, 12)}
	for m := 1; m <= 12; m++ {
		cost, ok := costs[m]
		if !ok {
			cost = decimal.Zero
		}
		resp.Months = append(resp.Months, payroll.MonthCost{Month: m, EmployerCost: cost})
	}
	return resp, nil
}

// EmployeeCountMetrics implements payroll.PayrollService: the headcount joined by the
// end of each month.
func (s *PayrollServiceImpl) EmployeeCountMetrics(ctx context.Context, year int) (payroll.EmployeeCountResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.EmployeeCountResponse{}, err
	}
	if year == 0 {
		return payroll.EmployeeCountResponse{}, payroll.ErrYearRequired
	}
	resp := payroll.EmployeeCountResponse{Year: year, Months: make([]payroll.MonthHeadcount, 0, 12)}
	for m := 1; m <= 12; m++ {
		_, last := periodBounds(year, m)
		n, err := s.EmployeeRepository.CountJoinedBy(ctx, claims.CompanyID, last)
		if err != nil {
			return payroll.EmployeeCountResponse{}, fmt.Errorf("failed to count employees: %w", err)
		}
		resp.Months = append(resp.Months, payroll.MonthHeadcount{Month: m, EmployeeCount: n})
	}
	return resp, nil
}

// SendPayslips implements payroll.PayrollService.
func (s *PayrollServiceImpl) SendPayslips(ctx context.Context, payrunID string) (payroll.SendPayslipsResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return payroll.SendPayslipsResponse{}, err
	}
	if s.mailer == nil || !s.mailer.Configured() {
		return payroll.SendPayslipsResponse{}, payroll.ErrMailerDisabled
	}
	p, err := s.payrun(ctx, claims.CompanyID, payrunID)
	if err != nil {
		return payroll.SendPayslipsResponse{}, err
	}
	claimed, err := s.PayrollRepository.ClaimPayslipMailing(ctx, p.ID)
	if err != nil {
		return payroll.SendPayslipsResponse{}, fmt.Errorf("failed to claim payslip mailing: %w", err)
	}
	if !claimed {
		return payroll.SendPayslipsResponse{}, payroll.ErrPayslipsAlreadySent
	}
	return s.mailPayrun(ctx, p)
}

// SendMonthEndPayslips implements payroll.PayrollService.
func (s *PayrollServiceImpl) SendMonthEndPayslips(ctx context.Context) error {
	if s.mailer == nil {
		slog.Debug("payslip mailing skipped, mail not configured")
		return nil
	}
	companies, err := s.CompanyRepository.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}
	for _, c := range companies {
		p, err := s.PayrollRepository.LatestPayrun(ctx, c.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to get latest payrun: %w", err)
		}
		if p.PayslipsSentAt != nil {
			continue
		}
		claimed, err := s.PayrollRepository.ClaimPayslipMailing(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to claim payslip mailing: %w", err)
		}
		if !claimed {
			continue
		}
		if _, err := s.mailPayrun(ctx, p); err != nil {
			slog.Error("month-end payslip mailing failed", "error", err, "payrun_id", p.ID, "company_id", c.ID)
		}
	}
	return nil
}

// mailPayrun mails every payslip of the payrun with bounded concurrency. A failed
// mail is counted and logged; it does not stop the others.
func (s *PayrollServiceImpl) mailPayrun(ctx context.Context, p payroll.Payrun) (payroll.SendPayslipsResponse, error) {
	var payslips []payroll.Payslip
	for offset := 0; ; offset += payslipPageSize {
		page, total, err := s.PayrollRepository.ListPayslipsByPayrun(ctx, p.ID, payslipPageSize, offset)
		if err != nil {
			return payroll.SendPayslipsResponse{}, fmt.Errorf("failed to list payslips: %w", err)
		}
		payslips = append(payslips, page...)
		if len(page) == 0 || int64(offset+len(page)) >= total {
			break
		}
	}

	companyName := s.companyName(ctx, p.CompanyID)
	var sent, failed, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mailConcurrency)
	for _, ps := range payslips {
		if ps.Status == payroll.PayslipCancelled || ps.Email == "" {
			skipped.Add(1)
			continue
		}
		g.Go(func() error {
			if err := s.mailPayslip(gctx, ps, companyName); err != nil {
				failed.Add(1)
				slog.Error("payslip mail failed", "error", err, "payslip_id", ps.ID, "employee_id", ps.EmployeeID)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	resp := payroll.SendPayslipsResponse{
		PayrunID: p.ID,
		Sent:     int(sent.Load()),
		Failed:   int(failed.Load()),
		Skipped:  int(skipped.Load()),
	}
	slog.Info("payslips mailed", "payrun_id", p.ID, "sent", resp.Sent, "failed", resp.Failed, "skipped", resp.Skipped)
	return resp, nil
}

func (s *PayrollServiceImpl) mailPayslip(ctx context.Context, p payroll.Payslip, companyName string) error {
	r, err := s.payslipReport(ctx, p, companyName)
	if err != nil {
		return err
	}
	attachment, err := report.PayslipWorkbook(r)
	if err != nil {
		return fmt.Errorf("failed to render payslip: %w", err)
	}
	msg := email.PayslipMail{
		To:              p.Email,
		Name:            p.EmployeeName(),
		CompanyName:     companyName,
		Period:          payroll.PeriodLabel(p.PeriodYear, p.PeriodMonth),
		PayableDays:     p.PayableDays,
		WorkedDays:      p.TotalWorkedDays,
		LeaveDays:       p.TotalLeaves,
		Gross:           p.GrossWage.StringFixed(2),
		TotalDeductions: p.TotalDeductions.StringFixed(2),
		Net:             p.NetWage.StringFixed(2),
		Attachment:      attachment,
		AttachmentName:  report.PayslipFileName(r),
	}
	for _, l := range r.Earnings {
		msg.Earnings = append(msg.Earnings, email.PayslipLine{Name: l.Name, Amount: l.Amount.StringFixed(2)})
	}
	for _, l := range r.Deductions {
		msg.Deductions = append(msg.Deductions, email.PayslipLine{Name: l.Name, Amount: l.Amount.StringFixed(2)})
	}
	return s.mailer.SendPayslip(ctx, msg)
}
