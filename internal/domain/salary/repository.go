package salary

import "context"

type SalaryRepository interface {
	GetStructure(ctx context.Context, employeeID string) (Structure, error)
	UpsertStructure(ctx context.Context, s Structure) (Structure, error)
	ListStructures(ctx context.Context, companyID string, limit, offset int) ([]Structure, int64, error)

	ListComponents(ctx context.Context, employeeID string) ([]Component, error)
	GetComponent(ctx context.Context, employeeID, componentID string) (Component, error)
	CreateComponent(ctx context.Context, c Component) (Component, error)
	UpdateComponent(ctx context.Context, c Component) (Component, error)
	DeleteComponent(ctx context.Context, employeeID, componentID string) error
}
