package user

import (
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
)

// UpsertAccessRightRequest overrides one role/module cell of the company matrix.
type UpsertAccessRightRequest struct {
	Role        string          `json:"role"`
	Module      string          `json:"module"`
	Permissions map[string]bool `json:"permissions"`
}

func (r *UpsertAccessRightRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Role(r.Role).IsValid() {
		errs.Add("role", "role must be one of admin, hr, payroll, employee")
	}
	if !Module(r.Module).IsValid() {
		errs.Add("module", "module must be one of employees, salary, attendance, leaves, payroll, settings")
	}
	if len(r.Permissions) == 0 {
		errs.Add("permissions", "permissions is required")
	}
	for action := range r.Permissions {
		if !Action(action).IsValid() {
			errs.Add("permissions", "unknown action "+action)
		}
	}

	return errs.Err()
}

// ToAccessRight converts a validated request.
func (r *UpsertAccessRightRequest) ToAccessRight(companyID string) AccessRight {
	perms := make(Permissions, len(r.Permissions))
	for action, allowed := range r.Permissions {
		perms[Action(action)] = allowed
	}
	return AccessRight{
		CompanyID:   companyID,
		Role:        Role(r.Role),
		Module:      Module(r.Module),
		Permissions: perms,
	}
}

// AccessMatrixResponse is the effective role x module matrix of a company.
type AccessMatrixResponse struct {
	Rights    Rights        `json:"rights"`
	Overrides []AccessRight `json:"overrides"`
}
