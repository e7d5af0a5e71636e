package postgresql

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.user_id, e.company_id, e.first_name, e.last_name, e.email, e.phone,
	e.department, e.position, e.location, e.gender, e.manager_id,
	e.avatar_url, e.avatar_key, e.about_job, e.interests, e.hobbies, e.address,
	e.date_of_joining, e.joining_serial, e.created_at, e.updated_at,
	u.login_id, u.role
`

const employeeFrom = `
	FROM employees e
	LEFT JOIN users u ON u.id = e.user_id
`

func scanEmployee(row interface{ Scan(dest ...any) error }) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.UserID, &e.CompanyID, &e.FirstName, &e.LastName, &e.Email, &e.Phone,
		&e.Department, &e.Position, &e.Location, &e.Gender, &e.ManagerID,
		&e.AvatarURL, &e.AvatarKey, &e.AboutJob, &e.Interests, &e.Hobbies, &e.Address,
		&e.DateOfJoining, &e.JoiningSerial, &e.CreatedAt, &e.UpdatedAt,
		&e.LoginID, &e.Role,
	)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	return scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+employeeFrom+` WHERE e.id = $1`, id))
}

// GetByUserID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	return scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+employeeFrom+` WHERE e.user_id = $1`, userID))
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, companyID string, limit, offset int) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := `SELECT ` + employeeColumns + employeeFrom + `
		WHERE e.company_id = $1
		ORDER BY e.first_name, e.last_name
		LIMIT $2 OFFSET $3
	`
	employees, err := r.query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ListByCompany implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	query := `SELECT ` + employeeColumns + employeeFrom + `
		WHERE e.company_id = $1
		ORDER BY e.first_name, e.last_name
	`
	return r.query(ctx, query, companyID)
}

func (r *employeeRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// ExistsByEmail implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ExistsByEmail(ctx context.Context, companyID, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM employees WHERE company_id = $1 AND LOWER(email) = LOWER($2))`,
		companyID, email,
	).Scan(&exists)
	return exists, err
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO employees (
			user_id, company_id, first_name, last_name, email, phone,
			department, position, location, gender, manager_id,
			date_of_joining, joining_serial
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		e.UserID, e.CompanyID, e.FirstName, e.LastName, e.Email, e.Phone,
		e.Department, e.Position, e.Location, e.Gender, e.ManagerID,
		e.DateOfJoining, e.JoiningSerial,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return e, nil
}

// UpdatePrivateInfo implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdatePrivateInfo(ctx context.Context, id string, fields map[string]*string) (employee.Employee, error) {
	if len(fields) == 0 {
		return employee.Employee{}, employee.ErrNoAllowedFields
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	// Column names come from the allow list, never from the request.
	for _, column := range employee.PrivateFields {
		value, ok := fields[column]
		if !ok {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	for column := range fields {
		if !slices.Contains(employee.PrivateFields, column) {
			return employee.Employee{}, fmt.Errorf("column %q is not editable", column)
		}
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`UPDATE employees SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.GetByID(ctx, id)
}

// UpdateAvatar implements employee.EmployeeRepository. Nil values clear the avatar.
func (r *employeeRepositoryImpl) UpdateAvatar(ctx context.Context, id string, url, key *string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx,
		`UPDATE employees SET avatar_url = $1, avatar_key = $2, updated_at = NOW() WHERE id = $3`,
		url, key, id,
	)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to update avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.GetByID(ctx, id)
}

// NextJoiningSerial implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) NextJoiningSerial(ctx context.Context, year int) (int, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO joining_counters (year, current_serial)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET
			current_serial = joining_counters.current_serial + 1,
			updated_at = NOW()
		RETURNING current_serial
	`
	var serial int
	if err := q.QueryRow(ctx, query, year).Scan(&serial); err != nil {
		return 0, fmt.Errorf("failed to reserve joining serial: %w", err)
	}
	return serial, nil
}

// CountJoinedBy implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) CountJoinedBy(ctx context.Context, companyID string, date time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM employees WHERE company_id = $1 AND date_of_joining <= $2::date`,
		companyID, date,
	).Scan(&n)
	return n, err
}
