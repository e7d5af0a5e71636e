package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
)

type accessRightRepositoryImpl struct {
	db *database.DB
}

func NewAccessRightRepository(db *database.DB) user.AccessRightRepository {
	return &accessRightRepositoryImpl{db: db}
}

// ListByCompany implements user.AccessRightRepository.
func (r *accessRightRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]user.AccessRight, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT company_id, role, module, permissions, updated_at
		FROM access_rights
		WHERE company_id = $1
		ORDER BY role, module
	`
	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rights []user.AccessRight
	for rows.Next() {
		var ar user.AccessRight
		var raw []byte
		if err := rows.Scan(&ar.CompanyID, &ar.Role, &ar.Module, &raw, &ar.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &ar.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions of %s/%s: %w", ar.Role, ar.Module, err)
		}
		rights = append(rights, ar)
	}
	return rights, rows.Err()
}

// Upsert implements user.AccessRightRepository.
func (r *accessRightRepositoryImpl) Upsert(ctx context.Context, right user.AccessRight) error {
	q := GetQuerier(ctx, r.db)
	perms, err := json.Marshal(right.Permissions)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO access_rights (company_id, role, module, permissions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, role, module) DO UPDATE SET
			permissions = EXCLUDED.permissions,
			updated_at = NOW()
	`
	_, err = q.Exec(ctx, query, right.CompanyID, right.Role, right.Module, perms)
	return err
}
