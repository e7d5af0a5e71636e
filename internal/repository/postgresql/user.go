package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint failure.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `
	u.id, u.company_id, u.login_id, u.password_hash, u.role, u.is_first_login,
	u.created_at, u.updated_at, e.id, e.email
`

func scanUser(row interface{ Scan(dest ...any) error }) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.CompanyID, &u.LoginID, &u.PasswordHash, &u.Role, &u.IsFirstLogin,
		&u.CreatedAt, &u.UpdatedAt, &u.EmployeeID, &u.EmployeeEmail,
	)
	return u, err
}

// GetByLoginIDOrEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByLoginIDOrEmail(ctx context.Context, identifier string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN employees e ON e.user_id = u.id
		WHERE u.login_id = $1 OR LOWER(e.email) = LOWER($1)
		ORDER BY (u.login_id = $1) DESC
		LIMIT 1
	`
	return scanUser(q.QueryRow(ctx, query, identifier))
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN employees e ON e.user_id = u.id
		WHERE u.id = $1
	`
	return scanUser(q.QueryRow(ctx, query, id))
}

// GetByEmployeeEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmployeeEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN employees e ON e.user_id = u.id
		WHERE LOWER(e.email) = LOWER($1)
		LIMIT 1
	`
	return scanUser(q.QueryRow(ctx, query, email))
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO users (company_id, login_id, password_hash, role, is_first_login)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		newUser.CompanyID,
		newUser.LoginID,
		newUser.PasswordHash,
		newUser.Role,
		newUser.IsFirstLogin,
	).Scan(&newUser.ID, &newUser.CreatedAt, &newUser.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrLoginIDExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return newUser, nil
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string, firstLogin bool) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE users
		SET password_hash = $1, is_first_login = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := q.Exec(ctx, query, passwordHash, firstLogin, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ListByCompany implements user.UserRepository.
func (r *userRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]user.Summary, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT u.id, u.login_id, u.role, e.id, e.first_name, e.last_name, e.email, u.created_at
		FROM users u
		LEFT JOIN employees e ON e.user_id = u.id
		WHERE u.company_id = $1
		ORDER BY u.created_at DESC
	`
	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.Summary
	for rows.Next() {
		var s user.Summary
		if err := rows.Scan(&s.ID, &s.LoginID, &s.Role, &s.EmployeeID, &s.FirstName, &s.LastName, &s.Email, &s.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, s)
	}
	return users, rows.Err()
}
