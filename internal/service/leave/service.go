package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/jackc/pgx/v5"
)

const typesKey = "leaveType:all"

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveTypeRepository
	leave.AllocationRepository
	leave.RequestRepository
	attendance.AttendanceRepository
	employee.EmployeeRepository
	caches *cache.Registry
	types  *cache.Cache
}

func NewLeaveService(
	tx database.Transactor,
	leaveTypeRepository leave.LeaveTypeRepository,
	allocationRepository leave.AllocationRepository,
	requestRepository leave.RequestRepository,
	attendanceRepository attendance.AttendanceRepository,
	employeeRepository employee.EmployeeRepository,
	caches *cache.Registry,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                   tx,
		LeaveTypeRepository:  leaveTypeRepository,
		AllocationRepository: allocationRepository,
		RequestRepository:    requestRepository,
		AttendanceRepository: attendanceRepository,
		EmployeeRepository:   employeeRepository,
		caches:               caches,
		types:                caches.MustGet(cache.LeaveType),
	}
}

// ListTypes implements leave.LeaveService.
func (s *LeaveServiceImpl) ListTypes(ctx context.Context) ([]leave.TypeResponse, error) {
	types, err := cache.Load(ctx, s.types, typesKey, s.types.DefaultTTL(), s.LeaveTypeRepository.List)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	resp := make([]leave.TypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, leave.NewTypeResponse(t))
	}
	return resp, nil
}

// CreateType implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateType(ctx context.Context, req leave.CreateTypeRequest) (leave.TypeResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.TypeResponse{}, err
	}
	created, err := s.LeaveTypeRepository.Create(ctx, leave.Type{Name: req.Name, IsPaid: req.IsPaid})
	if err != nil {
		if errors.Is(err, leave.ErrLeaveTypeExists) {
			return leave.TypeResponse{}, err
		}
		return leave.TypeResponse{}, fmt.Errorf("failed to create leave type: %w", err)
	}
	s.types.Delete(typesKey)
	return leave.NewTypeResponse(created), nil
}

func (s *LeaveServiceImpl) leaveType(ctx context.Context, id string) (leave.Type, error) {
	t, err := s.LeaveTypeRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Type{}, leave.ErrLeaveTypeNotFound
		}
		return leave.Type{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	return t, nil
}

// companyEmployee loads id and checks it belongs to companyID.
func (s *LeaveServiceImpl) companyEmployee(ctx context.Context, companyID, id string) (employee.Employee, error) {
	e, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrForbiddenEmployee
	}
	return e, nil
}

// CreateAllocation implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateAllocation(ctx context.Context, req leave.CreateAllocationRequest) (leave.AllocationResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return leave.AllocationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.AllocationResponse{}, err
	}
	if _, err := s.companyEmployee(ctx, claims.CompanyID, req.EmployeeID); err != nil {
		return leave.AllocationResponse{}, err
	}
	if _, err := s.leaveType(ctx, req.LeaveTypeID); err != nil {
		return leave.AllocationResponse{}, err
	}

	created, err := s.AllocationRepository.Create(ctx, req.ToAllocation(claims.UserID))
	if err != nil {
		return leave.AllocationResponse{}, fmt.Errorf("failed to create leave allocation: %w", err)
	}
	return leave.NewAllocationResponse(created), nil
}

// ListAllocations implements leave.LeaveService.
func (s *LeaveServiceImpl) ListAllocations(ctx context.Context, filter leave.AllocationFilter) (leave.ListAllocationResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return leave.ListAllocationResponse{}, err
	}

	rows, total, err := s.AllocationRepository.ListByCompany(ctx, claims.CompanyID, filter.EmployeeID, filter.Limit(), filter.Offset())
	if err != nil {
		return leave.ListAllocationResponse{}, fmt.Errorf("failed to list leave allocations: %w", err)
	}
	items := make([]leave.AllocationResponse, 0, len(rows))
	for _, a := range rows {
		items = append(items, leave.NewAllocationResponse(a))
	}
	return leave.ListAllocationResponse{Items: items, Page: pagination.NewPage(filter.Params, total)}, nil
}

// MyAllocations implements leave.LeaveService.
func (s *LeaveServiceImpl) MyAllocations(ctx context.Context) ([]leave.AllocationResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if claims.EmployeeID == "" {
		return nil, employee.ErrProfileNotLinked
	}
	rows, err := s.AllocationRepository.ListByEmployee(ctx, claims.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave allocations: %w", err)
	}
	resp := make([]leave.AllocationResponse, 0, len(rows))
	for _, a := range rows {
		resp = append(resp, leave.NewAllocationResponse(a))
	}
	return resp, nil
}

// CreateRequest implements leave.LeaveService. Admin and HR may file on behalf of
// another employee of their company.
func (s *LeaveServiceImpl) CreateRequest(ctx context.Context, req leave.CreateRequestRequest) (leave.RequestResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}

	employeeID := claims.EmployeeID
	if req.EmployeeID != "" && req.EmployeeID != claims.EmployeeID {
		if claims.Role != user.RoleAdmin && claims.Role != user.RoleHR {
			return leave.RequestResponse{}, leave.ErrOnBehalfNotPermitted
		}
		if _, err := s.companyEmployee(ctx, claims.CompanyID, req.EmployeeID); err != nil {
			return leave.RequestResponse{}, err
		}
		employeeID = req.EmployeeID
	}
	if employeeID == "" {
		return leave.RequestResponse{}, employee.ErrProfileNotLinked
	}

	t, err := s.leaveType(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	created, err := s.RequestRepository.Create(ctx, req.ToRequest(employeeID))
	if err != nil {
		return leave.RequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	created.LeaveTypeName = &t.Name

	slog.Info("leave request created", "request_id", created.ID, "employee_id", employeeID, "days", created.Days, "by", claims.UserID)
	return leave.NewRequestResponse(created), nil
}

// ListRequests implements leave.LeaveService. Roles without company-wide visibility
// only see their own requests.
func (s *LeaveServiceImpl) ListRequests(ctx context.Context, filter leave.RequestFilter) (leave.ListRequestResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return leave.ListRequestResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return leave.ListRequestResponse{}, err
	}

	if !claims.Role.IsStaff() {
		if claims.EmployeeID == "" {
			return leave.ListRequestResponse{}, employee.ErrProfileNotLinked
		}
		filter.EmployeeID = claims.EmployeeID
	}

	rows, total, err := s.RequestRepository.List(ctx, claims.CompanyID, filter)
	if err != nil {
		return leave.ListRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	items := make([]leave.RequestResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, leave.NewRequestResponse(r))
	}
	return leave.ListRequestResponse{Items: items, Page: pagination.NewPage(filter.Params, total)}, nil
}

// pending locks the request and checks it is still awaiting review.
func (s *LeaveServiceImpl) pending(ctx context.Context, companyID, id string) (leave.Request, error) {
	r, err := s.RequestRepository.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	if r.CompanyID != nil && *r.CompanyID != companyID {
		return leave.Request{}, leave.ErrForbiddenRequest
	}
	if r.Status != leave.StatusPending {
		return leave.Request{}, leave.ErrRequestProcessed
	}
	return r, nil
}

// Approve implements leave.LeaveService. The status change, the allocation usage and
// the attendance leave rows are written in one transaction.
func (s *LeaveServiceImpl) Approve(ctx context.Context, id string) (leave.ReviewResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return leave.ReviewResponse{}, err
	}

	var approved leave.Request
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.pending(ctx, claims.CompanyID, id)
		if err != nil {
			return err
		}
		if err := s.RequestRepository.UpdateStatus(ctx, r.ID, leave.StatusApproved, claims.UserID); err != nil {
			return fmt.Errorf("failed to approve leave request: %w", err)
		}
		found, err := s.AllocationRepository.AddUsedDays(ctx, r.EmployeeID, r.LeaveTypeID, r.Days)
		if err != nil {
			return fmt.Errorf("failed to update leave allocation: %w", err)
		}
		if !found {
			slog.Warn("approved leave has no allocation", "request_id", r.ID, "employee_id", r.EmployeeID, "leave_type_id", r.LeaveTypeID)
		}
		if err := s.AttendanceRepository.MarkLeaveRange(ctx, r.EmployeeID, r.StartDate, r.EndDate); err != nil {
			return fmt.Errorf("failed to mark attendance as leave: %w", err)
		}
		approved = r
		return nil
	})
	if err != nil {
		return leave.ReviewResponse{}, err
	}

	s.caches.ClearEmployee(approved.EmployeeID)
	slog.Info("leave request approved", "request_id", id, "employee_id", approved.EmployeeID, "by", claims.UserID)
	return leave.ReviewResponse{ID: id, Message: "Leave request approved"}, nil
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, id string) (leave.ReviewResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return leave.ReviewResponse{}, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.pending(ctx, claims.CompanyID, id)
		if err != nil {
			return err
		}
		if err := s.RequestRepository.UpdateStatus(ctx, r.ID, leave.StatusRejected, claims.UserID); err != nil {
			return fmt.Errorf("failed to reject leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.ReviewResponse{}, err
	}

	slog.Info("leave request rejected", "request_id", id, "by", claims.UserID)
	return leave.ReviewResponse{ID: id, Message: "Leave request rejected"}, nil
}
