package user

import (
	"context"
)

type UserRepository interface {
	// GetByLoginIDOrEmail matches users.login_id exactly or the employee e-mail case-insensitively.
	GetByLoginIDOrEmail(ctx context.Context, identifier string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmployeeEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string, firstLogin bool) error
	ListByCompany(ctx context.Context, companyID string) ([]Summary, error)
}

type AccessRightRepository interface {
	ListByCompany(ctx context.Context, companyID string) ([]AccessRight, error)
	Upsert(ctx context.Context, right AccessRight) error
}
