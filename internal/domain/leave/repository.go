package leave

import (
	"context"
	"time"
)

type LeaveTypeRepository interface {
	List(ctx context.Context) ([]Type, error)
	GetByID(ctx context.Context, id string) (Type, error)
	Create(ctx context.Context, t Type) (Type, error)
}

type AllocationRepository interface {
	Create(ctx context.Context, a Allocation) (Allocation, error)
	ListByCompany(ctx context.Context, companyID, employeeID string, limit, offset int) ([]Allocation, int64, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Allocation, error)
	// AddUsedDays increments the oldest allocation of the type; it reports false when none exists.
	AddUsedDays(ctx context.Context, employeeID, leaveTypeID string, days int) (bool, error)
}

type RequestRepository interface {
	Create(ctx context.Context, r Request) (Request, error)
	// GetByIDForUpdate locks the row when called inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, companyID string, filter RequestFilter) ([]Request, int64, error)
	UpdateStatus(ctx context.Context, id string, status RequestStatus, reviewedBy string) error
	ListApprovedCovering(ctx context.Context, companyID string, day time.Time) ([]Request, error)
	HasApprovedLeave(ctx context.Context, employeeID string, day time.Time) (bool, error)
}
