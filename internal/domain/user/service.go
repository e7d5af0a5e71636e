package user

import "context"

// AccessService resolves permissions against per-company overrides and the embedded defaults.
type AccessService interface {
	Allowed(ctx context.Context, companyID string, role Role, module Module, action Action) (bool, error)
	Matrix(ctx context.Context, companyID string) (AccessMatrixResponse, error)
	Upsert(ctx context.Context, req UpsertAccessRightRequest) (AccessRight, error)
	ListUsers(ctx context.Context) ([]Summary, error)
}
