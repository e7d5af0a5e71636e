package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	List(ctx context.Context, companyID string, limit, offset int) ([]Employee, int64, error)
	ListByCompany(ctx context.Context, companyID string) ([]Employee, error)
	ExistsByEmail(ctx context.Context, companyID, email string) (bool, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	// UpdatePrivateInfo sets only the given columns; keys must come from PrivateFields.
	UpdatePrivateInfo(ctx context.Context, id string, fields map[string]*string) (Employee, error)
	UpdateAvatar(ctx context.Context, id string, url, key *string) (Employee, error)
	// NextJoiningSerial reserves the next per-year serial. It must run inside a transaction.
	NextJoiningSerial(ctx context.Context, year int) (int, error)
	CountJoinedBy(ctx context.Context, companyID string, date time.Time) (int, error)
}
