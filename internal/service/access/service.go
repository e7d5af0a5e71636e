package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
)

type AccessServiceImpl struct {
	user.UserRepository
	user.AccessRightRepository
	caches    *cache.Registry
	companies *cache.Cache
	defaults  user.Rights
}

func NewAccessService(userRepository user.UserRepository, accessRepository user.AccessRightRepository, caches *cache.Registry) user.AccessService {
	return &AccessServiceImpl{
		UserRepository:        userRepository,
		AccessRightRepository: accessRepository,
		caches:                caches,
		companies:             caches.MustGet(cache.Company),
		defaults:              user.DefaultRights,
	}
}

// overridesKey ends with the company id so Registry.ClearCompany drops it.
func overridesKey(companyID string) string {
	return "access:" + companyID
}

func (s *AccessServiceImpl) overrides(ctx context.Context, companyID string) ([]user.AccessRight, error) {
	return cache.Load(ctx, s.companies, overridesKey(companyID), s.companies.DefaultTTL(), func(ctx context.Context) ([]user.AccessRight, error) {
		rights, err := s.AccessRightRepository.ListByCompany(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to list access rights: %w", err)
		}
		return rights, nil
	})
}

// effective overlays the company overrides on the defaults. An override
// replaces the whole role/module cell.
func (s *AccessServiceImpl) effective(ctx context.Context, companyID string) (user.Rights, []user.AccessRight, error) {
	overrides, err := s.overrides(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	rights := s.defaults.Clone()
	for _, o := range overrides {
		if rights[o.Role] == nil {
			rights[o.Role] = make(map[user.Module]user.Permissions)
		}
		perms := make(user.Permissions, len(o.Permissions))
		for action, allowed := range o.Permissions {
			perms[action] = allowed
		}
		rights[o.Role][o.Module] = perms
	}
	return rights, overrides, nil
}

// Allowed implements user.AccessService.
func (s *AccessServiceImpl) Allowed(ctx context.Context, companyID string, role user.Role, module user.Module, action user.Action) (bool, error) {
	if companyID == "" {
		return false, user.ErrCompanyIDRequired
	}
	rights, _, err := s.effective(ctx, companyID)
	if err != nil {
		return false, err
	}
	return rights.Allows(role, user.Resource{Module: module, Action: action}), nil
}

// Matrix implements user.AccessService.
func (s *AccessServiceImpl) Matrix(ctx context.Context, companyID string) (user.AccessMatrixResponse, error) {
	rights, overrides, err := s.effective(ctx, companyID)
	if err != nil {
		return user.AccessMatrixResponse{}, err
	}
	if overrides == nil {
		overrides = []user.AccessRight{}
	}
	return user.AccessMatrixResponse{Rights: rights, Overrides: overrides}, nil
}

// Upsert implements user.AccessService.
func (s *AccessServiceImpl) Upsert(ctx context.Context, req user.UpsertAccessRightRequest) (user.AccessRight, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return user.AccessRight{}, err
	}
	if err := req.Validate(); err != nil {
		return user.AccessRight{}, err
	}

	right := req.ToAccessRight(claims.CompanyID)
	if err := s.AccessRightRepository.Upsert(ctx, right); err != nil {
		return user.AccessRight{}, fmt.Errorf("failed to save access right: %w", err)
	}
	s.caches.ClearCompany(claims.CompanyID)

	slog.Info("access right updated",
		"company_id", claims.CompanyID,
		"role", right.Role,
		"module", right.Module,
		"by", claims.UserID,
	)
	return right, nil
}

// ListUsers implements user.AccessService.
func (s *AccessServiceImpl) ListUsers(ctx context.Context) ([]user.Summary, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.UserRepository.ListByCompany(ctx, claims.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []user.Summary{}
	}
	return users, nil
}
