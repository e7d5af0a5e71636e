package postgresql

import (
	"context"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

// List implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) List(ctx context.Context) ([]leave.Type, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT id, name, is_paid FROM leave_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []leave.Type
	for rows.Next() {
		var t leave.Type
		if err := rows.Scan(&t.ID, &t.Name, &t.IsPaid); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Type, error) {
	q := GetQuerier(ctx, r.db)
	var t leave.Type
	err := q.QueryRow(ctx, `SELECT id, name, is_paid FROM leave_types WHERE id = $1`, id).Scan(&t.ID, &t.Name, &t.IsPaid)
	return t, err
}

// Create implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Create(ctx context.Context, t leave.Type) (leave.Type, error) {
	q := GetQuerier(ctx, r.db)
	err := q.QueryRow(ctx,
		`INSERT INTO leave_types (name, is_paid) VALUES ($1, $2) RETURNING id`,
		t.Name, t.IsPaid,
	).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return leave.Type{}, leave.ErrLeaveTypeExists
		}
		return leave.Type{}, err
	}
	return t, nil
}
