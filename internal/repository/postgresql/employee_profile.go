package postgresql

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type profileRepositoryImpl struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) employee.ProfileRepository {
	return &profileRepositoryImpl{db: db}
}

// ListSkills implements employee.ProfileRepository.
func (r *profileRepositoryImpl) ListSkills(ctx context.Context, employeeID string) ([]employee.Skill, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT id, employee_id, skill, created_at FROM employee_skills WHERE employee_id = $1 ORDER BY skill ASC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := []employee.Skill{}
	for rows.Next() {
		var s employee.Skill
		if err := rows.Scan(&s.ID, &s.EmployeeID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// SkillExists implements employee.ProfileRepository. The comparison ignores case.
func (r *profileRepositoryImpl) SkillExists(ctx context.Context, employeeID, name string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM employee_skills WHERE employee_id = $1 AND LOWER(skill) = LOWER($2))`,
		employeeID, name,
	).Scan(&exists)
	return exists, err
}

// CreateSkill implements employee.ProfileRepository.
func (r *profileRepositoryImpl) CreateSkill(ctx context.Context, employeeID, name string) (employee.Skill, error) {
	q := GetQuerier(ctx, r.db)
	s := employee.Skill{EmployeeID: employeeID, Name: name}
	err := q.QueryRow(ctx,
		`INSERT INTO employee_skills (employee_id, skill) VALUES ($1, $2) RETURNING id, created_at`,
		employeeID, name,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return employee.Skill{}, employee.ErrSkillExists
		}
		return employee.Skill{}, fmt.Errorf("failed to create skill: %w", err)
	}
	return s, nil
}

// DeleteSkill implements employee.ProfileRepository.
func (r *profileRepositoryImpl) DeleteSkill(ctx context.Context, employeeID, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM employee_skills WHERE id = $1 AND employee_id = $2`, id, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete skill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrSkillNotFound
	}
	return nil
}

const certificationColumns = `id, employee_id, title, issuer, issued_on, expires_on, created_at`

func scanCertification(row interface{ Scan(dest ...any) error }) (employee.Certification, error) {
	var c employee.Certification
	err := row.Scan(&c.ID, &c.EmployeeID, &c.Title, &c.Issuer, &c.IssuedOn, &c.ExpiresOn, &c.CreatedAt)
	return c, err
}

// ListCertifications implements employee.ProfileRepository. Newest first, undated last.
func (r *profileRepositoryImpl) ListCertifications(ctx context.Context, employeeID string) ([]employee.Certification, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+certificationColumns+`
		FROM employee_certifications
		WHERE employee_id = $1
		ORDER BY issued_on DESC NULLS LAST, title ASC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certifications: %w", err)
	}
	defer rows.Close()

	certs := []employee.Certification{}
	for rows.Next() {
		c, err := scanCertification(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

// CreateCertification implements employee.ProfileRepository.
func (r *profileRepositoryImpl) CreateCertification(ctx context.Context, c employee.Certification) (employee.Certification, error) {
	q := GetQuerier(ctx, r.db)
	row := q.QueryRow(ctx, `
		INSERT INTO employee_certifications (employee_id, title, issuer, issued_on, expires_on)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+certificationColumns,
		c.EmployeeID, c.Title, c.Issuer, c.IssuedOn, c.ExpiresOn,
	)
	created, err := scanCertification(row)
	if err != nil {
		return employee.Certification{}, fmt.Errorf("failed to create certification: %w", err)
	}
	return created, nil
}

// setClause renders "col = $n" pairs for the allowed columns present in fields.
func setClause(allowed []string, fields map[string]any) ([]string, []any, error) {
	for column := range fields {
		if !slices.Contains(allowed, column) {
			return nil, nil, fmt.Errorf("column %q is not editable", column)
		}
	}
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+2)
	// Column names come from the allow list, never from the request.
	for _, column := range allowed {
		value, ok := fields[column]
		if !ok {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	return sets, args, nil
}

// UpdateCertification implements employee.ProfileRepository.
func (r *profileRepositoryImpl) UpdateCertification(ctx context.Context, employeeID, id string, fields map[string]any) (employee.Certification, error) {
	sets, args, err := setClause(employee.CertificationFields, fields)
	if err != nil {
		return employee.Certification{}, err
	}
	if len(sets) == 0 {
		return employee.Certification{}, employee.ErrNoCertificationFields
	}
	args = append(args, employeeID, id)

	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`
		UPDATE employee_certifications SET %s
		WHERE employee_id = $%d AND id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), certificationColumns,
	)
	c, err := scanCertification(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Certification{}, employee.ErrCertificationNotFound
		}
		return employee.Certification{}, fmt.Errorf("failed to update certification: %w", err)
	}
	return c, nil
}

// DeleteCertification implements employee.ProfileRepository.
func (r *profileRepositoryImpl) DeleteCertification(ctx context.Context, employeeID, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM employee_certifications WHERE id = $1 AND employee_id = $2`, id, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete certification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrCertificationNotFound
	}
	return nil
}

// GetPersonalInfo implements employee.ProfileRepository.
func (r *profileRepositoryImpl) GetPersonalInfo(ctx context.Context, employeeID string) (employee.PersonalInfo, error) {
	q := GetQuerier(ctx, r.db)
	var p employee.PersonalInfo
	err := q.QueryRow(ctx,
		`SELECT dob, nationality, gender, marital_status, address, updated_at FROM employees WHERE id = $1`,
		employeeID,
	).Scan(&p.DateOfBirth, &p.Nationality, &p.Gender, &p.MaritalStatus, &p.Address, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.PersonalInfo{}, employee.ErrEmployeeNotFound
		}
		return employee.PersonalInfo{}, fmt.Errorf("failed to get personal info: %w", err)
	}
	return p, nil
}

// UpdatePersonalInfo implements employee.ProfileRepository.
func (r *profileRepositoryImpl) UpdatePersonalInfo(ctx context.Context, employeeID string, fields map[string]any) error {
	sets, args, err := setClause(employee.PersonalFields, fields)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, employeeID)

	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`UPDATE employees SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update personal info: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// GetBankDetails implements employee.ProfileRepository.
func (r *profileRepositoryImpl) GetBankDetails(ctx context.Context, employeeID string) (*employee.BankDetails, error) {
	q := GetQuerier(ctx, r.db)
	var b employee.BankDetails
	err := q.QueryRow(ctx, `
		SELECT id, employee_id, account_number, bank_name, ifsc_code, pan, uan, employee_code
		FROM bank_details
		WHERE employee_id = $1
	`, employeeID).Scan(&b.ID, &b.EmployeeID, &b.AccountNumber, &b.BankName, &b.IFSCCode, &b.PAN, &b.UAN, &b.EmployeeCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bank details: %w", err)
	}
	return &b, nil
}

// UpsertBankDetails implements employee.ProfileRepository. Columns absent from
// fields keep their stored value.
func (r *profileRepositoryImpl) UpsertBankDetails(ctx context.Context, employeeID string, fields map[string]*string) error {
	if len(fields) == 0 {
		return nil
	}
	columns := []string{"employee_id"}
	placeholders := []string{"$1"}
	updates := []string{"updated_at = NOW()"}
	args := []any{employeeID}
	for _, column := range employee.BankFields {
		value, ok := fields[column]
		if !ok {
			continue
		}
		args = append(args, value)
		columns = append(columns, column)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		updates = append(updates, column+" = EXCLUDED."+column)
	}
	if len(args) != len(fields)+1 {
		return errors.New("bank details contain a column that is not editable")
	}

	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`
		INSERT INTO bank_details (%s) VALUES (%s)
		ON CONFLICT (employee_id) DO UPDATE SET %s`,
		strings.Join(columns, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "),
	)
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert bank details: %w", err)
	}
	return nil
}
