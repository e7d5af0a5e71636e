package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Full access, settings and cache administration
	RoleHR       Role = "hr"       // Employee records, attendance, leave allocation
	RolePayroll  Role = "payroll"  // Salary, payruns, leave approval
	RoleEmployee Role = "employee" // Self-service
)

// Roles lists every role in display order.
var Roles = []Role{RoleEmployee, RoleHR, RolePayroll, RoleAdmin}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleHR, RolePayroll, RoleEmployee:
		return true
	}
	return false
}

// DisplayName is the label shown to users.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleHR:
		return "HR Officer"
	case RolePayroll:
		return "Payroll Officer"
	case RoleEmployee:
		return "Employee"
	}
	return string(r)
}

// IsStaff reports whether the role sees company-wide records rather than only its own.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleHR || r == RolePayroll
}

type User struct {
	ID           string
	CompanyID    string
	LoginID      string
	PasswordHash string
	Role         Role
	IsFirstLogin bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	EmployeeID    *string
	EmployeeEmail *string
}

// Summary is a user row joined with the owning employee, for admin listings.
type Summary struct {
	ID         string    `json:"id"`
	LoginID    string    `json:"login_id"`
	Role       Role      `json:"role"`
	EmployeeID *string   `json:"employee_id,omitempty"`
	FirstName  *string   `json:"first_name,omitempty"`
	LastName   *string   `json:"last_name,omitempty"`
	Email      *string   `json:"email,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
