package postgresql

import (
	"context"
	"fmt"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
)

type allocationRepositoryImpl struct {
	db *database.DB
}

func NewAllocationRepository(db *database.DB) leave.AllocationRepository {
	return &allocationRepositoryImpl{db: db}
}

const allocationColumns = `
	la.id, la.employee_id, la.leave_type_id, la.allocated_days, la.used_days,
	la.valid_from, la.valid_to, la.notes, la.created_by, la.created_at,
	lt.name, e.first_name, e.last_name
`

const allocationFrom = `
	FROM leave_allocations la
	JOIN leave_types lt ON lt.id = la.leave_type_id
	JOIN employees e ON e.id = la.employee_id
`

func scanAllocation(row interface{ Scan(dest ...any) error }) (leave.Allocation, error) {
	var a leave.Allocation
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.LeaveTypeID, &a.AllocatedDays, &a.UsedDays,
		&a.ValidFrom, &a.ValidTo, &a.Notes, &a.CreatedBy, &a.CreatedAt,
		&a.LeaveTypeName, &a.FirstName, &a.LastName,
	)
	return a, err
}

// Create implements leave.AllocationRepository.
func (r *allocationRepositoryImpl) Create(ctx context.Context, a leave.Allocation) (leave.Allocation, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_allocations (employee_id, leave_type_id, allocated_days, used_days, valid_from, valid_to, notes, created_by)
		VALUES ($1, $2, $3, $4, $5::date, $6::date, $7, $8)
		RETURNING id, created_at
	`
	err := q.QueryRow(ctx, query,
		a.EmployeeID, a.LeaveTypeID, a.AllocatedDays, a.UsedDays, a.ValidFrom, a.ValidTo, a.Notes, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return leave.Allocation{}, fmt.Errorf("failed to create allocation: %w", err)
	}
	return a, nil
}

// ListByCompany implements leave.AllocationRepository. An empty employeeID lists every employee.
func (r *allocationRepositoryImpl) ListByCompany(ctx context.Context, companyID, employeeID string, limit, offset int) ([]leave.Allocation, int64, error) {
	q := GetQuerier(ctx, r.db)
	where := ` WHERE e.company_id = $1 AND ($2 = '' OR la.employee_id::text = $2)`

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*)`+allocationFrom+where, companyID, employeeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count allocations: %w", err)
	}

	query := `SELECT ` + allocationColumns + allocationFrom + where + `
		ORDER BY la.created_at DESC
		LIMIT $3 OFFSET $4
	`
	allocations, err := r.list(ctx, query, companyID, employeeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return allocations, total, nil
}

// ListByEmployee implements leave.AllocationRepository.
func (r *allocationRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Allocation, error) {
	query := `SELECT ` + allocationColumns + allocationFrom + `
		WHERE la.employee_id = $1
		ORDER BY lt.name, la.created_at
	`
	return r.list(ctx, query, employeeID)
}

func (r *allocationRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]leave.Allocation, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []leave.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

// AddUsedDays implements leave.AllocationRepository.
func (r *allocationRepositoryImpl) AddUsedDays(ctx context.Context, employeeID, leaveTypeID string, days int) (bool, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE leave_allocations
		SET used_days = used_days + $3
		WHERE id = (
			SELECT id FROM leave_allocations
			WHERE employee_id = $1 AND leave_type_id = $2
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE
		)
	`
	tag, err := q.Exec(ctx, query, employeeID, leaveTypeID, days)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
