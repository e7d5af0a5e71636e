package salary

import (
	"strings"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type UpsertStructureRequest struct {
	MonthlyWage             *decimal.Decimal `json:"monthly_wage"`
	WorkingDaysPerWeek      *int             `json:"working_days_per_week"`
	BreakHours              *decimal.Decimal `json:"break_hours"`
	PFEmployeeRate          *decimal.Decimal `json:"pf_employee_rate"`
	PFEmployerRate          *decimal.Decimal `json:"pf_employer_rate"`
	ProfessionalTaxOverride *decimal.Decimal `json:"professional_tax_override"`
}

func (r *UpsertStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.MonthlyWage == nil {
		errs.Add("monthly_wage", "monthly_wage is required")
	} else if r.MonthlyWage.IsNegative() {
		errs.Add("monthly_wage", "monthly_wage must not be negative")
	}
	if r.WorkingDaysPerWeek != nil && (*r.WorkingDaysPerWeek < 1 || *r.WorkingDaysPerWeek > 7) {
		errs.Add("working_days_per_week", "working_days_per_week must be between 1 and 7")
	}
	if r.BreakHours != nil && (r.BreakHours.IsNegative() || r.BreakHours.GreaterThan(decimal.NewFromInt(24))) {
		errs.Add("break_hours", "break_hours must be between 0 and 24")
	}
	checkRate(&errs, "pf_employee_rate", r.PFEmployeeRate)
	checkRate(&errs, "pf_employer_rate", r.PFEmployerRate)
	if r.ProfessionalTaxOverride != nil && r.ProfessionalTaxOverride.IsNegative() {
		errs.Add("professional_tax_override", "professional_tax_override must not be negative")
	}

	return errs.Err()
}

// ToStructure converts a validated request.
func (r *UpsertStructureRequest) ToStructure(employeeID string) Structure {
	s := Structure{
		EmployeeID:              employeeID,
		MonthlyWage:             *r.MonthlyWage,
		WorkingDaysPerWeek:      DefaultWorkingDaysPerWeek,
		PFEmployeeRate:          r.PFEmployeeRate,
		PFEmployerRate:          r.PFEmployerRate,
		ProfessionalTaxOverride: r.ProfessionalTaxOverride,
	}
	if r.WorkingDaysPerWeek != nil {
		s.WorkingDaysPerWeek = *r.WorkingDaysPerWeek
	}
	if r.BreakHours != nil {
		s.BreakHours = *r.BreakHours
	}
	return s
}

type CreateComponentRequest struct {
	Name            string           `json:"name"`
	ComputationType string           `json:"computation_type"`
	Value           *decimal.Decimal `json:"value"`
	IsDeduction     bool             `json:"is_deduction"`
}

func (r *CreateComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if !ComputationType(r.ComputationType).IsValid() {
		errs.Add("computation_type", "computation_type must be fixed or percentage")
	}
	if r.Value == nil {
		errs.Add("value", "value is required")
	} else if r.Value.IsNegative() {
		errs.Add("value", "value must not be negative")
	} else if ComputationType(r.ComputationType) == ComputationPercentage && r.Value.GreaterThan(hundred) {
		errs.Add("value", "percentage value must not exceed 100")
	}

	return errs.Err()
}

func (r *CreateComponentRequest) ToComponent(employeeID string) Component {
	return Component{
		EmployeeID:      employeeID,
		Name:            r.Name,
		ComputationType: ComputationType(r.ComputationType),
		Value:           *r.Value,
		IsDeduction:     r.IsDeduction,
	}
}

// UpdateComponentRequest patches only the fields present in the body.
type UpdateComponentRequest struct {
	Name            *string          `json:"name"`
	ComputationType *string          `json:"computation_type"`
	Value           *decimal.Decimal `json:"value"`
	IsDeduction     *bool            `json:"is_deduction"`
}

func (r *UpdateComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name == nil && r.ComputationType == nil && r.Value == nil && r.IsDeduction == nil {
		errs.Add("body", "provide at least one of name, computation_type, value, is_deduction")
		return errs.Err()
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.ComputationType != nil && !ComputationType(*r.ComputationType).IsValid() {
		errs.Add("computation_type", "computation_type must be fixed or percentage")
	}
	if r.Value != nil && r.Value.IsNegative() {
		errs.Add("value", "value must not be negative")
	}

	return errs.Err()
}

// Apply returns c with the requested changes.
func (r *UpdateComponentRequest) Apply(c Component) Component {
	if r.Name != nil {
		c.Name = strings.TrimSpace(*r.Name)
	}
	if r.ComputationType != nil {
		c.ComputationType = ComputationType(*r.ComputationType)
	}
	if r.Value != nil {
		c.Value = *r.Value
	}
	if r.IsDeduction != nil {
		c.IsDeduction = *r.IsDeduction
	}
	return c
}

type ListFilter struct {
	pagination.Params
}

type StructureResponse struct {
	ID                      string           `json:"id"`
	EmployeeID              string           `json:"employee_id"`
	EmployeeName            *string          `json:"employee_name,omitempty"`
	Email                   *string          `json:"email,omitempty"`
	MonthlyWage             decimal.Decimal  `json:"monthly_wage"`
	YearlyWage              decimal.Decimal  `json:"yearly_wage"`
	WorkingDaysPerWeek      int              `json:"working_days_per_week"`
	BreakHours              decimal.Decimal  `json:"break_hours"`
	PFEmployeeRate          *decimal.Decimal `json:"pf_employee_rate"`
	PFEmployerRate          *decimal.Decimal `json:"pf_employer_rate"`
	ProfessionalTaxOverride *decimal.Decimal `json:"professional_tax_override"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

func NewStructureResponse(s Structure) StructureResponse {
	resp := StructureResponse{
		ID:                      s.ID,
		EmployeeID:              s.EmployeeID,
		Email:                   s.Email,
		MonthlyWage:             s.MonthlyWage,
		YearlyWage:              s.YearlyWage(),
		WorkingDaysPerWeek:      s.WorkingDaysPerWeek,
		BreakHours:              s.BreakHours,
		PFEmployeeRate:          s.PFEmployeeRate,
		PFEmployerRate:          s.PFEmployerRate,
		ProfessionalTaxOverride: s.ProfessionalTaxOverride,
		UpdatedAt:               s.UpdatedAt,
	}
	if s.FirstName != nil {
		name := *s.FirstName
		if s.LastName != nil && *s.LastName != "" {
			name += " " + *s.LastName
		}
		resp.EmployeeName = &name
	}
	return resp
}

type ComponentResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ComputationType ComputationType `json:"computation_type"`
	Value           decimal.Decimal `json:"value"`
	Amount          decimal.Decimal `json:"amount"`
	IsDeduction     bool            `json:"is_deduction"`
}

// NewComponentResponse resolves the amount against the full monthly wage.
func NewComponentResponse(c Component, monthlyWage decimal.Decimal) ComponentResponse {
	return ComponentResponse{
		ID:              c.ID,
		Name:            c.Name,
		ComputationType: c.ComputationType,
		Value:           c.Value,
		Amount:          c.Amount(monthlyWage),
		IsDeduction:     c.IsDeduction,
	}
}

type SalaryResponse struct {
	Structure  *StructureResponse  `json:"structure"`
	Components []ComponentResponse `json:"components"`
}

type ListStructureResponse struct {
	Items []StructureResponse `json:"items"`
	pagination.Page
}

func checkRate(errs *validator.ValidationErrors, field string, rate *decimal.Decimal) {
	if rate == nil {
		return
	}
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		errs.Add(field, field+" must be between 0 and 100")
	}
}
