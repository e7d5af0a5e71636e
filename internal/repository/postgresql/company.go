package postgresql

import (
	"context"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/company"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
)

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

// GetByID implements company.CompanyRepository.
func (r *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)
	var c company.Company
	err := q.QueryRow(ctx, `SELECT id, name, created_at FROM companies WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	return c, err
}

// List implements company.CompanyRepository.
func (r *companyRepositoryImpl) List(ctx context.Context) ([]company.Company, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT id, name, created_at FROM companies ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []company.Company
	for rows.Next() {
		var c company.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
