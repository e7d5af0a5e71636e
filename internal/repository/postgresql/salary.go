package postgresql

import (
	"context"
	"fmt"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/salary"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type salaryRepositoryImpl struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.SalaryRepository {
	return &salaryRepositoryImpl{db: db}
}

const structureColumns = `
	s.id, s.employee_id, s.monthly_wage, s.working_days_per_week, s.break_hours,
	s.pf_employee_rate, s.pf_employer_rate, s.professional_tax_override,
	s.created_at, s.updated_at, e.first_name, e.last_name, e.email
`

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}

func scanStructure(row interface{ Scan(dest ...any) error }) (salary.Structure, error) {
	var s salary.Structure
	var pfEmployee, pfEmployer, tax decimal.NullDecimal
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.MonthlyWage, &s.WorkingDaysPerWeek, &s.BreakHours,
		&pfEmployee, &pfEmployer, &tax,
		&s.CreatedAt, &s.UpdatedAt, &s.FirstName, &s.LastName, &s.Email,
	)
	if err != nil {
		return salary.Structure{}, err
	}
	s.PFEmployeeRate = fromNullable(pfEmployee)
	s.PFEmployerRate = fromNullable(pfEmployer)
	s.ProfessionalTaxOverride = fromNullable(tax)
	return s, nil
}

// GetStructure implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) GetStructure(ctx context.Context, employeeID string) (salary.Structure, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + structureColumns + `
		FROM salary_structure s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.employee_id = $1
	`
	return scanStructure(q.QueryRow(ctx, query, employeeID))
}

// UpsertStructure implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) UpsertStructure(ctx context.Context, s salary.Structure) (salary.Structure, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO salary_structure (
			employee_id, monthly_wage, working_days_per_week, break_hours,
			pf_employee_rate, pf_employer_rate, professional_tax_override
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id) DO UPDATE SET
			monthly_wage = EXCLUDED.monthly_wage,
			working_days_per_week = EXCLUDED.working_days_per_week,
			break_hours = EXCLUDED.break_hours,
			pf_employee_rate = EXCLUDED.pf_employee_rate,
			pf_employer_rate = EXCLUDED.pf_employer_rate,
			professional_tax_override = EXCLUDED.professional_tax_override,
			updated_at = NOW()
	`
	_, err := q.Exec(ctx, query,
		s.EmployeeID, s.MonthlyWage, s.WorkingDaysPerWeek, s.BreakHours,
		nullable(s.PFEmployeeRate), nullable(s.PFEmployerRate), nullable(s.ProfessionalTaxOverride),
	)
	if err != nil {
		return salary.Structure{}, fmt.Errorf("failed to save salary structure: %w", err)
	}
	return r.GetStructure(ctx, s.EmployeeID)
}

// ListStructures implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) ListStructures(ctx context.Context, companyID string, limit, offset int) ([]salary.Structure, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM salary_structure s
		JOIN employees e ON e.id = s.employee_id
		WHERE e.company_id = $1
	`, companyID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count salary structures: %w", err)
	}

	query := `
		SELECT ` + structureColumns + `
		FROM salary_structure s
		JOIN employees e ON e.id = s.employee_id
		WHERE e.company_id = $1
		ORDER BY e.first_name, e.last_name
		LIMIT $2 OFFSET $3
	`
	rows, err := q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var structures []salary.Structure
	for rows.Next() {
		s, err := scanStructure(rows)
		if err != nil {
			return nil, 0, err
		}
		structures = append(structures, s)
	}
	return structures, total, rows.Err()
}

const componentColumns = `id, employee_id, name, computation_type, value, is_deduction`

func scanComponent(row interface{ Scan(dest ...any) error }) (salary.Component, error) {
	var c salary.Component
	err := row.Scan(&c.ID, &c.EmployeeID, &c.Name, &c.ComputationType, &c.Value, &c.IsDeduction)
	return c, err
}

// ListComponents implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) ListComponents(ctx context.Context, employeeID string) ([]salary.Component, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT `+componentColumns+` FROM salary_components WHERE employee_id = $1 ORDER BY is_deduction, name`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []salary.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

// GetComponent implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) GetComponent(ctx context.Context, employeeID, componentID string) (salary.Component, error) {
	q := GetQuerier(ctx, r.db)
	return scanComponent(q.QueryRow(ctx,
		`SELECT `+componentColumns+` FROM salary_components WHERE id = $1 AND employee_id = $2`,
		componentID, employeeID,
	))
}

// CreateComponent implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) CreateComponent(ctx context.Context, c salary.Component) (salary.Component, error) {
	q := GetQuerier(ctx, r.db)
	return scanComponent(q.QueryRow(ctx, `
		INSERT INTO salary_components (employee_id, name, computation_type, value, is_deduction)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+componentColumns,
		c.EmployeeID, c.Name, c.ComputationType, c.Value, c.IsDeduction,
	))
}

// UpdateComponent implements salary.SalaryRepository.
func (r *salaryRepositoryImpl) UpdateComponent(ctx context.Context, c salary.Component) (salary.Component, error) {
	q := GetQuerier(ctx, r.db)
	return scanComponent(q.QueryRow(ctx, `
		UPDATE salary_components
		SET name = $1, computation_type = $2, value = $3, is_deduction = $4
		WHERE id = $5 AND employee_id = $6
		RETURNING `+componentColumns,
		c.Name, c.ComputationType, c.Value, c.IsDeduction, c.ID, c.EmployeeID,
	))
}

// DeleteComponent implements salary.SalaryRepository. A missing row reports pgx.ErrNoRows.
func (r *salaryRepositoryImpl) DeleteComponent(ctx context.Context, employeeID, componentID string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM salary_components WHERE id = $1 AND employee_id = $2`, componentID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
