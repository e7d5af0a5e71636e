package salary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/salary"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type SalaryServiceImpl struct {
	salary.SalaryRepository
	employee.EmployeeRepository
	caches   *cache.Registry
	salaries *cache.Cache
}

func NewSalaryService(salaryRepository salary.SalaryRepository, employeeRepository employee.EmployeeRepository, caches *cache.Registry) salary.SalaryService {
	return &SalaryServiceImpl{
		SalaryRepository:   salaryRepository,
		EmployeeRepository: employeeRepository,
		caches:             caches,
		salaries:           caches.MustGet(cache.Salary),
	}
}

func salaryKey(employeeID string) string {
	return "salary:" + employeeID
}

// Mine implements salary.SalaryService.
func (s *SalaryServiceImpl) Mine(ctx context.Context) (salary.SalaryResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return salary.SalaryResponse{}, err
	}
	if claims.EmployeeID == "" {
		return salary.SalaryResponse{}, employee.ErrProfileNotLinked
	}
	return cache.Load(ctx, s.salaries, salaryKey(claims.EmployeeID), s.salaries.DefaultTTL(), func(ctx context.Context) (salary.SalaryResponse, error) {
		return s.load(ctx, claims.EmployeeID)
	})
}

func (s *SalaryServiceImpl) load(ctx context.Context, employeeID string) (salary.SalaryResponse, error) {
	resp := salary.SalaryResponse{Components: []salary.ComponentResponse{}}

	wage := decimal.Zero
	structure, err := s.SalaryRepository.GetStructure(ctx, employeeID)
	switch {
	case err == nil:
		sr := salary.NewStructureResponse(structure)
		resp.Structure = &sr
		wage = structure.MonthlyWage
	case !errors.Is(err, pgx.ErrNoRows):
		return salary.SalaryResponse{}, fmt.Errorf("failed to get salary structure: %w", err)
	}

	components, err := s.SalaryRepository.ListComponents(ctx, employeeID)
	if err != nil {
		return salary.SalaryResponse{}, fmt.Errorf("failed to list salary components: %w", err)
	}
	for _, c := range components {
		resp.Components = append(resp.Components, salary.NewComponentResponse(c, wage))
	}
	return resp, nil
}

// List implements salary.SalaryService.
func (s *SalaryServiceImpl) List(ctx context.Context, filter salary.ListFilter) (salary.ListStructureResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return salary.ListStructureResponse{}, err
	}
	rows, total, err := s.SalaryRepository.ListStructures(ctx, claims.CompanyID, filter.Limit(), filter.Offset())
	if err != nil {
		return salary.ListStructureResponse{}, fmt.Errorf("failed to list salary structures: %w", err)
	}
	items := make([]salary.StructureResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, salary.NewStructureResponse(r))
	}
	return salary.ListStructureResponse{Items: items, Page: pagination.NewPage(filter.Params, total)}, nil
}

// target checks that employeeID belongs to the caller's company.
func (s *SalaryServiceImpl) target(ctx context.Context, employeeID string) error {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return err
	}
	e, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to get employee: %w", err)
	}
	if e.CompanyID != claims.CompanyID {
		return employee.ErrForbiddenEmployee
	}
	return nil
}

func (s *SalaryServiceImpl) forget(employeeID string) {
	s.caches.ClearEmployee(employeeID)
}

// monthlyWage is the structure's wage, or ErrStructureRequired when none exists.
func (s *SalaryServiceImpl) monthlyWage(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	structure, err := s.SalaryRepository.GetStructure(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, salary.ErrStructureRequired
		}
		return decimal.Zero, fmt.Errorf("failed to get salary structure: %w", err)
	}
	return structure.MonthlyWage, nil
}

// UpsertStructure implements salary.SalaryService.
func (s *SalaryServiceImpl) UpsertStructure(ctx context.Context, employeeID string, req salary.UpsertStructureRequest) (salary.StructureResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.StructureResponse{}, err
	}
	if err := s.target(ctx, employeeID); err != nil {
		return salary.StructureResponse{}, err
	}

	saved, err := s.SalaryRepository.UpsertStructure(ctx, req.ToStructure(employeeID))
	if err != nil {
		return salary.StructureResponse{}, fmt.Errorf("failed to save salary structure: %w", err)
	}
	s.forget(employeeID)
	slog.Info("salary structure saved", "employee_id", employeeID)
	return salary.NewStructureResponse(saved), nil
}

// AddComponent implements salary.SalaryService. Percentage components need a
// structure to resolve against.
func (s *SalaryServiceImpl) AddComponent(ctx context.Context, employeeID string, req salary.CreateComponentRequest) (salary.ComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.ComponentResponse{}, err
	}
	if err := s.target(ctx, employeeID); err != nil {
		return salary.ComponentResponse{}, err
	}

	c := req.ToComponent(employeeID)
	wage, err := s.monthlyWage(ctx, employeeID)
	if err != nil && (c.ComputationType == salary.ComputationPercentage || !errors.Is(err, salary.ErrStructureRequired)) {
		return salary.ComponentResponse{}, err
	}

	created, err := s.SalaryRepository.CreateComponent(ctx, c)
	if err != nil {
		return salary.ComponentResponse{}, fmt.Errorf("failed to create salary component: %w", err)
	}
	s.forget(employeeID)
	return salary.NewComponentResponse(created, wage), nil
}

// UpdateComponent implements salary.SalaryService.
func (s *SalaryServiceImpl) UpdateComponent(ctx context.Context, employeeID, componentID string, req salary.UpdateComponentRequest) (salary.ComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.ComponentResponse{}, err
	}
	if err := s.target(ctx, employeeID); err != nil {
		return salary.ComponentResponse{}, err
	}

	current, err := s.SalaryRepository.GetComponent(ctx, employeeID, componentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.ComponentResponse{}, salary.ErrComponentNotFound
		}
		return salary.ComponentResponse{}, fmt.Errorf("failed to get salary component: %w", err)
	}

	next := req.Apply(current)
	if next.ComputationType == salary.ComputationPercentage && next.Value.GreaterThan(decimal.NewFromInt(100)) {
		var errs validator.ValidationErrors
		errs.Add("value", "percentage value must not exceed 100")
		return salary.ComponentResponse{}, errs.Err()
	}
	wage, err := s.monthlyWage(ctx, employeeID)
	if err != nil && (next.ComputationType == salary.ComputationPercentage || !errors.Is(err, salary.ErrStructureRequired)) {
		return salary.ComponentResponse{}, err
	}

	updated, err := s.SalaryRepository.UpdateComponent(ctx, next)
	if err != nil {
		return salary.ComponentResponse{}, fmt.Errorf("failed to update salary component: %w", err)
	}
	s.forget(employeeID)
	return salary.NewComponentResponse(updated, wage), nil
}

// DeleteComponent implements salary.SalaryService.
func (s *SalaryServiceImpl) DeleteComponent(ctx context.Context, employeeID, componentID string) error {
	if err := s.target(ctx, employeeID); err != nil {
		return err
	}
	if err := s.SalaryRepository.DeleteComponent(ctx, employeeID, componentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.ErrComponentNotFound
		}
		return fmt.Errorf("failed to delete salary component: %w", err)
	}
	s.forget(employeeID)
	return nil
}
