package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
)

type requestRepositoryImpl struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) leave.RequestRepository {
	return &requestRepositoryImpl{db: db}
}

const requestColumns = `
	lr.id, lr.employee_id, lr.leave_type_id, lr.start_date, lr.end_date, lr.days,
	lr.status, lr.notes, lr.attachment_url, lr.reviewed_by, lr.created_at, lr.updated_at,
	e.company_id, e.first_name || ' ' || e.last_name, lt.name
`

const requestFrom = `
	FROM leave_requests lr
	JOIN employees e ON e.id = lr.employee_id
	JOIN leave_types lt ON lt.id = lr.leave_type_id
`

func scanRequest(row interface{ Scan(dest ...any) error }) (leave.Request, error) {
	var r leave.Request
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.LeaveTypeID, &r.StartDate, &r.EndDate, &r.Days,
		&r.Status, &r.Notes, &r.AttachmentURL, &r.ReviewedBy, &r.CreatedAt, &r.UpdatedAt,
		&r.CompanyID, &r.EmployeeName, &r.LeaveTypeName,
	)
	return r, err
}

// Create implements leave.RequestRepository.
func (r *requestRepositoryImpl) Create(ctx context.Context, req leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_requests (employee_id, leave_type_id, start_date, end_date, days, status, notes, attachment_url)
		VALUES ($1, $2, $3::date, $4::date, $5, $6, $7, $8)
		RETURNING id, status, created_at, updated_at
	`
	status := req.Status
	if status == "" {
		status = leave.StatusPending
	}
	err := q.QueryRow(ctx, query,
		req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate, req.Days, status, req.Notes, req.AttachmentURL,
	).Scan(&req.ID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return req, nil
}

// GetByIDForUpdate implements leave.RequestRepository.
func (r *requestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + requestColumns + requestFrom + ` WHERE lr.id = $1 FOR UPDATE OF lr`
	return scanRequest(q.QueryRow(ctx, query, id))
}

// List implements leave.RequestRepository.
func (r *requestRepositoryImpl) List(ctx context.Context, companyID string, filter leave.RequestFilter) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)
	where := `
		WHERE e.company_id = $1
		  AND ($2 = '' OR lr.employee_id::text = $2)
		  AND ($3 = '' OR lr.status = $3)
	`

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*)`+requestFrom+where, companyID, filter.EmployeeID, filter.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	query := `SELECT ` + requestColumns + requestFrom + where + `
		ORDER BY lr.created_at DESC
		LIMIT $4 OFFSET $5
	`
	requests, err := r.list(ctx, query, companyID, filter.EmployeeID, filter.Status, filter.Limit(), filter.Offset())
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *requestRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// UpdateStatus implements leave.RequestRepository.
func (r *requestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.RequestStatus, reviewedBy string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx,
		`UPDATE leave_requests SET status = $1, reviewed_by = $2, updated_at = NOW() WHERE id = $3`,
		status, reviewedBy, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrRequestNotFound
	}
	return nil
}

// ListApprovedCovering implements leave.RequestRepository.
func (r *requestRepositoryImpl) ListApprovedCovering(ctx context.Context, companyID string, day time.Time) ([]leave.Request, error) {
	query := `SELECT ` + requestColumns + requestFrom + `
		WHERE e.company_id = $1
		  AND lr.status = 'approved'
		  AND $2::date BETWEEN lr.start_date AND lr.end_date
	`
	return r.list(ctx, query, companyID, day)
}

// HasApprovedLeave implements leave.RequestRepository.
func (r *requestRepositoryImpl) HasApprovedLeave(ctx context.Context, employeeID string, day time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1 AND status = 'approved'
			  AND $2::date BETWEEN start_date AND end_date
		)
	`, employeeID, day).Scan(&exists)
	return exists, err
}
