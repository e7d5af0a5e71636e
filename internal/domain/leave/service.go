package leave

import "context"

type LeaveService interface {
	ListTypes(ctx context.Context) ([]TypeResponse, error)
	CreateType(ctx context.Context, req CreateTypeRequest) (TypeResponse, error)

	CreateAllocation(ctx context.Context, req CreateAllocationRequest) (AllocationResponse, error)
	ListAllocations(ctx context.Context, filter AllocationFilter) (ListAllocationResponse, error)
	MyAllocations(ctx context.Context) ([]AllocationResponse, error)

	CreateRequest(ctx context.Context, req CreateRequestRequest) (RequestResponse, error)
	ListRequests(ctx context.Context, filter RequestFilter) (ListRequestResponse, error)
	Approve(ctx context.Context, id string) (ReviewResponse, error)
	Reject(ctx context.Context, id string) (ReviewResponse, error)
}
