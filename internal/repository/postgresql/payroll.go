package postgresql

import (
	"context"
	"fmt"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/payroll"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== PAYRUNS ==========

const payrunColumns = `
	id, company_id, period_month, period_year, employee_count, total_employer_cost,
	status, payslips_sent_at, created_by, created_at
`

func scanPayrun(row interface{ Scan(dest ...any) error }) (payroll.Payrun, error) {
	var p payroll.Payrun
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.PeriodMonth, &p.PeriodYear, &p.EmployeeCount, &p.TotalEmployerCost,
		&p.Status, &p.PayslipsSentAt, &p.CreatedBy, &p.CreatedAt,
	)
	return p, err
}

func (r *payrollRepository) CreatePayrun(ctx context.Context, p payroll.Payrun) (payroll.Payrun, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO payruns (company_id, period_month, period_year, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + payrunColumns
	return scanPayrun(q.QueryRow(ctx, query, p.CompanyID, p.PeriodMonth, p.PeriodYear, p.Status, p.CreatedBy))
}

func (r *payrollRepository) UpdatePayrunTotals(ctx context.Context, id string, employeeCount int, totalEmployerCost decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx,
		`UPDATE payruns SET employee_count = $1, total_employer_cost = $2 WHERE id = $3`,
		employeeCount, totalEmployerCost, id,
	)
	return err
}

func (r *payrollRepository) GetPayrun(ctx context.Context, companyID, id string) (payroll.Payrun, error) {
	q := GetQuerier(ctx, r.db)
	return scanPayrun(q.QueryRow(ctx,
		`SELECT `+payrunColumns+` FROM payruns WHERE id = $1 AND company_id = $2`,
		id, companyID,
	))
}

func (r *payrollRepository) LatestPayrun(ctx context.Context, companyID string) (payroll.Payrun, error) {
	q := GetQuerier(ctx, r.db)
	return scanPayrun(q.QueryRow(ctx, `
		SELECT `+payrunColumns+`
		FROM payruns
		WHERE company_id = $1
		ORDER BY period_year DESC, period_month DESC, created_at DESC
		LIMIT 1
	`, companyID))
}

func (r *payrollRepository) ListPayruns(ctx context.Context, companyID string, limit, offset int) ([]payroll.Payrun, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payruns WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payruns: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+payrunColumns+`
		FROM payruns
		WHERE company_id = $1
		ORDER BY period_year DESC, period_month DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payruns []payroll.Payrun
	for rows.Next() {
		p, err := scanPayrun(rows)
		if err != nil {
			return nil, 0, err
		}
		payruns = append(payruns, p)
	}
	return payruns, total, rows.Err()
}

func (r *payrollRepository) SetPayrunStatus(ctx context.Context, id string, status payroll.PayrunStatus) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE payruns SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *payrollRepository) ClaimPayslipMailing(ctx context.Context, payrunID string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx,
		`UPDATE payruns SET payslips_sent_at = NOW() WHERE id = $1 AND payslips_sent_at IS NULL`,
		payrunID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ========== PAYSLIPS ==========

const payslipColumns = `
	ps.id, ps.payrun_id, ps.employee_id, ps.payable_days, ps.total_worked_days, ps.total_leaves,
	ps.basic_wage, ps.gross_wage, ps.total_deductions, ps.net_wage, ps.status, ps.created_at,
	pr.company_id, e.first_name, e.last_name, e.email, pr.period_month, pr.period_year,
	ss.working_days_per_week
`

const payslipFrom = `
	FROM payslips ps
	JOIN payruns pr ON pr.id = ps.payrun_id
	JOIN employees e ON e.id = ps.employee_id
	LEFT JOIN salary_structure ss ON ss.employee_id = ps.employee_id
`

func scanPayslip(row interface{ Scan(dest ...any) error }) (payroll.Payslip, error) {
	var p payroll.Payslip
	err := row.Scan(
		&p.ID, &p.PayrunID, &p.EmployeeID, &p.PayableDays, &p.TotalWorkedDays, &p.TotalLeaves,
		&p.BasicWage, &p.GrossWage, &p.TotalDeductions, &p.NetWage, &p.Status, &p.CreatedAt,
		&p.CompanyID, &p.FirstName, &p.LastName, &p.Email, &p.PeriodMonth, &p.PeriodYear,
		&p.WorkingDaysPerWeek,
	)
	return p, err
}

func (r *payrollRepository) listPayslips(ctx context.Context, query string, args ...any) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		payslips = append(payslips, p)
	}
	return payslips, rows.Err()
}

// CreatePayslip inserts the payslip and its component lines.
func (r *payrollRepository) CreatePayslip(ctx context.Context, p payroll.Payslip, components []payroll.Component) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO payslips (
			payrun_id, employee_id, payable_days, total_worked_days, total_leaves,
			basic_wage, gross_wage, total_deductions, net_wage, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := q.QueryRow(ctx, query,
		p.PayrunID, p.EmployeeID, p.PayableDays, p.TotalWorkedDays, p.TotalLeaves,
		p.BasicWage, p.GrossWage, p.TotalDeductions, p.NetWage, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return payroll.Payslip{}, err
	}
	if err := r.insertComponents(ctx, p.ID, components); err != nil {
		return payroll.Payslip{}, err
	}
	return p, nil
}

func (r *payrollRepository) insertComponents(ctx context.Context, payslipID string, components []payroll.Component) error {
	if len(components) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)
	batch := &pgx.Batch{}
	for _, c := range components {
		batch.Queue(
			`INSERT INTO payslip_components (payslip_id, component_name, amount, is_deduction) VALUES ($1, $2, $3, $4)`,
			payslipID, c.Name, c.Amount, c.IsDeduction,
		)
	}
	results := q.SendBatch(ctx, batch)
	for range components {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert payslip component: %w", err)
		}
	}
	return results.Close()
}

func (r *payrollRepository) GetPayslip(ctx context.Context, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)
	return scanPayslip(q.QueryRow(ctx, `SELECT `+payslipColumns+payslipFrom+` WHERE ps.id = $1`, id))
}

func (r *payrollRepository) ListPayslipsByPayrun(ctx context.Context, payrunID string, limit, offset int) ([]payroll.Payslip, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payslips WHERE payrun_id = $1`, payrunID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payslips: %w", err)
	}

	payslips, err := r.listPayslips(ctx, `SELECT `+payslipColumns+payslipFrom+`
		WHERE ps.payrun_id = $1
		ORDER BY e.first_name, e.last_name
		LIMIT $2 OFFSET $3
	`, payrunID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return payslips, total, nil
}

func (r *payrollRepository) ListPayslipsByEmployee(ctx context.Context, employeeID string) ([]payroll.Payslip, error) {
	return r.listPayslips(ctx, `SELECT `+payslipColumns+payslipFrom+`
		WHERE ps.employee_id = $1
		ORDER BY pr.period_year DESC, pr.period_month DESC, ps.created_at DESC
	`, employeeID)
}

func (r *payrollRepository) ListPayslipsByEmployeeYear(ctx context.Context, employeeID string, year int) ([]payroll.Payslip, error) {
	return r.listPayslips(ctx, `SELECT `+payslipColumns+payslipFrom+`
		WHERE ps.employee_id = $1 AND pr.period_year = $2 AND ps.status <> 'cancelled'
		ORDER BY pr.period_month, ps.created_at
	`, employeeID, year)
}

func (r *payrollRepository) ListComponents(ctx context.Context, payslipID string) ([]payroll.Component, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT component_name, amount, is_deduction
		FROM payslip_components
		WHERE payslip_id = $1
		ORDER BY is_deduction, component_name
	`, payslipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []payroll.Component
	for rows.Next() {
		var c payroll.Component
		if err := rows.Scan(&c.Name, &c.Amount, &c.IsDeduction); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (r *payrollRepository) SetPayslipStatus(ctx context.Context, id string, status payroll.PayslipStatus) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE payslips SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetPayrunPayslipsStatus moves only payslips still in the generated state, so
// cancelled payslips stay cancelled.
func (r *payrollRepository) SetPayrunPayslipsStatus(ctx context.Context, payrunID string, status payroll.PayslipStatus) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx,
		`UPDATE payslips SET status = $1 WHERE payrun_id = $2 AND status = $3`,
		status, payrunID, payroll.PayslipGenerated,
	)
	return err
}

// ReplaceComputation rewrites the amounts and component lines and resets the
// payslip to generated.
func (r *payrollRepository) ReplaceComputation(ctx context.Context, payslipID string, c payroll.Computation) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE payslips
		SET payable_days = $1, total_worked_days = $2, total_leaves = $3,
			basic_wage = $4, gross_wage = $5, total_deductions = $6, net_wage = $7,
			status = $8
		WHERE id = $9
	`,
		c.PayableDays, c.PresentDays, c.LeaveDays,
		c.Basic, c.Gross, c.TotalDeductions, c.Net,
		payroll.PayslipGenerated, payslipID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if _, err := q.Exec(ctx, `DELETE FROM payslip_components WHERE payslip_id = $1`, payslipID); err != nil {
		return err
	}
	return r.insertComponents(ctx, payslipID, c.Components())
}

// ========== METRICS ==========

func (r *payrollRepository) EmployerCostByMonth(ctx context.Context, companyID string, year int) (map[int]decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT period_month, SUM(total_employer_cost)
		FROM payruns
		WHERE company_id = $1 AND period_year = $2
		GROUP BY period_month
	`, companyID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	costs := make(map[int]decimal.Decimal, 12)
	for rows.Next() {
		var month int
		var cost decimal.Decimal
		if err := rows.Scan(&month, &cost); err != nil {
			return nil, err
		}
		costs[month] = cost
	}
	return costs, rows.Err()
}
