package salary

import "context"

type SalaryService interface {
	Mine(ctx context.Context) (SalaryResponse, error)
	List(ctx context.Context, filter ListFilter) (ListStructureResponse, error)
	UpsertStructure(ctx context.Context, employeeID string, req UpsertStructureRequest) (StructureResponse, error)
	AddComponent(ctx context.Context, employeeID string, req CreateComponentRequest) (ComponentResponse, error)
	UpdateComponent(ctx context.Context, employeeID, componentID string, req UpdateComponentRequest) (ComponentResponse, error)
	DeleteComponent(ctx context.Context, employeeID, componentID string) error
}
