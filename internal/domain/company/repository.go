package company

import "context"

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)
	// List returns every tenant, oldest first. The cron jobs iterate it.
	List(ctx context.Context) ([]Company, error)
}
