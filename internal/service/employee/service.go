package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/hrx-hr/hrx-backend-go/internal/service/file"
	"github.com/jackc/pgx/v5"
)

type EmployeeServiceImpl struct {
	employee.EmployeeRepository
	profiles  employee.ProfileRepository
	tx        database.Transactor
	files     file.FileService
	caches    *cache.Registry
	employees *cache.Cache
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepository employee.EmployeeRepository,
	profileRepository employee.ProfileRepository,
	files file.FileService,
	caches *cache.Registry,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		EmployeeRepository: employeeRepository,
		profiles:           profileRepository,
		tx:                 tx,
		files:              files,
		caches:             caches,
		employees:          caches.MustGet(cache.Employee),
	}
}

func cacheKey(id string) string {
	return "employee:" + id
}

func (s *EmployeeServiceImpl) load(ctx context.Context, id string) (employee.Employee, error) {
	return cache.Load(ctx, s.employees, cacheKey(id), s.employees.DefaultTTL(), func(ctx context.Context) (employee.Employee, error) {
		e, err := s.EmployeeRepository.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return employee.Employee{}, employee.ErrEmployeeNotFound
			}
			return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
		}
		return e, nil
	})
}

// forget drops the employee's cached records and the session user built from them.
func (s *EmployeeServiceImpl) forget(e employee.Employee) {
	s.caches.ClearEmployee(e.ID)
	if e.UserID != nil {
		s.caches.MustGet(cache.User).Delete("user:" + *e.UserID)
	}
}

func (s *EmployeeServiceImpl) mine(ctx context.Context) (employee.Employee, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	if claims.EmployeeID == "" {
		return employee.Employee{}, employee.ErrProfileNotLinked
	}
	return s.load(ctx, claims.EmployeeID)
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.ListFilter) (employee.ListEmployeeResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.EmployeeRepository.List(ctx, claims.CompanyID, filter.Limit(), filter.Offset())
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	items := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		items = append(items, employee.NewEmployeeResponse(e))
	}
	return employee.ListEmployeeResponse{Items: items, Page: pagination.NewPage(filter.Params, total)}, nil
}

// GetByID implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.load(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if e.CompanyID != claims.CompanyID {
		return employee.EmployeeResponse{}, employee.ErrForbiddenEmployee
	}
	return employee.NewEmployeeResponse(e), nil
}

// Me implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Me(ctx context.Context) (employee.EmployeeResponse, error) {
	e, err := s.mine(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

// UpdateMyPrivateInfo implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateMyPrivateInfo(ctx context.Context, req employee.UpdatePrivateInfoRequest) (employee.EmployeeResponse, error) {
	current, err := s.mine(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	fields := req.Allowed()
	if len(fields) == 0 {
		return employee.EmployeeResponse{}, employee.ErrNoAllowedFields
	}

	updated, err := s.EmployeeRepository.UpdatePrivateInfo(ctx, current.ID, fields)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update private info: %w", err)
	}
	s.forget(updated)
	return employee.NewEmployeeResponse(updated), nil
}

// UploadAvatar implements employee.EmployeeService. The previous avatar file is removed
// once the new one is stored.
func (s *EmployeeServiceImpl) UploadAvatar(ctx context.Context, req employee.UploadAvatarRequest) (employee.AvatarResponse, error) {
	if req.File == nil {
		return employee.AvatarResponse{}, employee.ErrNoAvatarFile
	}
	ext := strings.ToLower(filepath.Ext(req.Filename))
	contentType, ok := employee.AvatarTypes[ext]
	if !ok {
		return employee.AvatarResponse{}, employee.ErrInvalidAvatarType
	}
	if req.ContentType != "" && !strings.HasPrefix(req.ContentType, "image/") {
		return employee.AvatarResponse{}, employee.ErrInvalidAvatarType
	}
	if req.Size > employee.AvatarMaxBytes {
		return employee.AvatarResponse{}, employee.ErrAvatarTooLarge
	}

	current, err := s.mine(ctx)
	if err != nil {
		return employee.AvatarResponse{}, err
	}

	key, url, err := s.files.StoreAvatar(ctx, req.File, ext, contentType)
	if err != nil {
		return employee.AvatarResponse{}, err
	}

	updated, err := s.EmployeeRepository.UpdateAvatar(ctx, current.ID, &url, &key)
	if err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to remove orphaned avatar", "error", delErr, "key", key)
		}
		return employee.AvatarResponse{}, fmt.Errorf("failed to save avatar: %w", err)
	}
	s.removeFile(ctx, current.AvatarKey)
	s.forget(updated)

	return employee.AvatarResponse{AvatarURL: updated.AvatarURL, Employee: employee.NewEmployeeResponse(updated)}, nil
}

// DeleteAvatar implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteAvatar(ctx context.Context) (employee.AvatarResponse, error) {
	current, err := s.mine(ctx)
	if err != nil {
		return employee.AvatarResponse{}, err
	}

	updated, err := s.EmployeeRepository.UpdateAvatar(ctx, current.ID, nil, nil)
	if err != nil {
		return employee.AvatarResponse{}, fmt.Errorf("failed to clear avatar: %w", err)
	}
	s.removeFile(ctx, current.AvatarKey)
	s.forget(updated)

	return employee.AvatarResponse{Employee: employee.NewEmployeeResponse(updated)}, nil
}

func (s *EmployeeServiceImpl) removeFile(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := s.files.Delete(ctx, *key); err != nil {
		slog.Warn("failed to delete previous avatar", "error", err, "key", *key)
	}
}
