package user

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Module string

const (
	ModuleEmployees  Module = "employees"
	ModuleSalary     Module = "salary"
	ModuleAttendance Module = "attendance"
	ModuleLeaves     Module = "leaves"
	ModulePayroll    Module = "payroll"
	ModuleSettings   Module = "settings"
)

var Modules = []Module{ModuleEmployees, ModuleSalary, ModuleAttendance, ModuleLeaves, ModulePayroll, ModuleSettings}

func (m Module) IsValid() bool {
	for _, known := range Modules {
		if m == known {
			return true
		}
	}
	return false
}

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionManage:
		return true
	}
	return false
}

// Permissions maps an action to whether it is granted. Missing actions are denied.
type Permissions map[Action]bool

// Rights is the role x module access matrix.
type Rights map[Role]map[Module]Permissions

// AccessRight is a per-company override of one matrix cell.
type AccessRight struct {
	CompanyID   string      `json:"company_id"`
	Role        Role        `json:"role"`
	Module      Module      `json:"module"`
	Permissions Permissions `json:"permissions"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Resource names one action on one module, written "<module>:<action>".
type Resource struct {
	Module Module
	Action Action
}

func (r Resource) String() string {
	return string(r.Module) + ":" + string(r.Action)
}

// ParseResource parses "<module>:<action>".
func ParseResource(s string) (Resource, error) {
	module, action, ok := strings.Cut(s, ":")
	if !ok {
		return Resource{}, fmt.Errorf("resource %q: expected <module>:<action>", s)
	}
	r := Resource{Module: Module(module), Action: Action(action)}
	if !r.Module.IsValid() {
		return Resource{}, fmt.Errorf("resource %q: %w", s, ErrInvalidModule)
	}
	if !r.Action.IsValid() {
		return Resource{}, fmt.Errorf("resource %q: %w", s, ErrInvalidAction)
	}
	return r, nil
}

//go:embed default_rights.yaml
var defaultRightsYAML []byte

// DefaultRights is the built-in access matrix applied when a company has no override.
var DefaultRights = mustParseRights(defaultRightsYAML)

func mustParseRights(data []byte) Rights {
	rights, err := ParseRights(data)
	if err != nil {
		panic(fmt.Sprintf("user: embedded default rights: %v", err))
	}
	return rights
}

// ParseRights decodes a YAML access matrix and rejects unknown roles, modules and actions.
func ParseRights(data []byte) (Rights, error) {
	var rights Rights
	if err := yaml.Unmarshal(data, &rights); err != nil {
		return nil, err
	}
	for role, modules := range rights {
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
		}
		for module, perms := range modules {
			if !module.IsValid() {
				return nil, fmt.Errorf("%w: %q", ErrInvalidModule, module)
			}
			for action := range perms {
				if !action.IsValid() {
					return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
				}
			}
		}
	}
	return rights, nil
}

// Allows reports whether the matrix grants the action. Unknown roles and modules are denied.
func (r Rights) Allows(role Role, res Resource) bool {
	modules, ok := r[role]
	if !ok {
		return false
	}
	perms, ok := modules[res.Module]
	if !ok {
		return false
	}
	return perms[res.Action]
}

// Clone returns a deep copy so callers can overlay company overrides.
func (r Rights) Clone() Rights {
	out := make(Rights, len(r))
	for role, modules := range r {
		m := make(map[Module]Permissions, len(modules))
		for module, perms := range modules {
			p := make(Permissions, len(perms))
			for action, allowed := range perms {
				p[action] = allowed
			}
			m[module] = p
		}
		out[role] = m
	}
	return out
}

// CanAccess checks a role against the default matrix. resource is "<module>:<action>".
func CanAccess(role Role, resource string) bool {
	res, err := ParseResource(resource)
	if err != nil {
		return false
	}
	return DefaultRights.Allows(role, res)
}
