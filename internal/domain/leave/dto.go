package leave

import (
	"strings"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateTypeRequest struct {
	Name   string `json:"name"`
	IsPaid bool   `json:"is_paid"`
}

func (r *CreateTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if len(r.Name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}

	return errs.Err()
}

type TypeResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsPaid bool   `json:"is_paid"`
}

func NewTypeResponse(t Type) TypeResponse {
	return TypeResponse{ID: t.ID, Name: t.Name, IsPaid: t.IsPaid}
}

type CreateAllocationRequest struct {
	EmployeeID    string          `json:"employee_id"`
	LeaveTypeID   string          `json:"leave_type_id"`
	AllocatedDays decimal.Decimal `json:"allocated_days"`
	ValidFrom     string          `json:"valid_from"`
	ValidTo       string          `json:"valid_to"`
	Notes         string          `json:"notes"`
}

func (r *CreateAllocationRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if !validator.IsValidUUID(r.LeaveTypeID) {
		errs.Add("leave_type_id", "leave_type_id must be a valid UUID")
	}
	if r.AllocatedDays.IsNegative() {
		errs.Add("allocated_days", "allocated_days must not be negative")
	}
	from, fromOK := parseOptionalDate(&errs, "valid_from", r.ValidFrom)
	to, toOK := parseOptionalDate(&errs, "valid_to", r.ValidTo)
	if fromOK && toOK && from != nil && to != nil && to.Before(*from) {
		errs.Add("valid_to", "valid_to must not be before valid_from")
	}

	return errs.Err()
}

// ToAllocation converts a validated request.
func (r *CreateAllocationRequest) ToAllocation(createdBy string) Allocation {
	a := Allocation{
		EmployeeID:    r.EmployeeID,
		LeaveTypeID:   r.LeaveTypeID,
		AllocatedDays: r.AllocatedDays,
		CreatedBy:     &createdBy,
	}
	if d, ok := validator.IsValidDate(r.ValidFrom); ok {
		a.ValidFrom = &d
	}
	if d, ok := validator.IsValidDate(r.ValidTo); ok {
		a.ValidTo = &d
	}
	if notes := strings.TrimSpace(r.Notes); notes != "" {
		a.Notes = &notes
	}
	return a
}

type AllocationResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  *string         `json:"employee_name,omitempty"`
	LeaveTypeID   string          `json:"leave_type_id"`
	LeaveType     *string         `json:"leave_type,omitempty"`
	AllocatedDays decimal.Decimal `json:"allocated_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
	Remaining     decimal.Decimal `json:"remaining_days"`
	ValidFrom     *string         `json:"valid_from"`
	ValidTo       *string         `json:"valid_to"`
	Notes         *string         `json:"notes,omitempty"`
}

func NewAllocationResponse(a Allocation) AllocationResponse {
	resp := AllocationResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		LeaveTypeID:   a.LeaveTypeID,
		LeaveType:     a.LeaveTypeName,
		AllocatedDays: a.AllocatedDays,
		UsedDays:      a.UsedDays,
		Remaining:     a.AllocatedDays.Sub(a.UsedDays),
		ValidFrom:     formatDate(a.ValidFrom),
		ValidTo:       formatDate(a.ValidTo),
		Notes:         a.Notes,
	}
	if a.FirstName != nil {
		name := strings.TrimSpace(*a.FirstName + " " + deref(a.LastName))
		resp.EmployeeName = &name
	}
	return resp
}

type AllocationFilter struct {
	EmployeeID string
	pagination.Params
}

type ListAllocationResponse struct {
	Items []AllocationResponse `json:"items"`
	pagination.Page
}

// CreateRequestRequest files a leave request. Days defaults to the inclusive span.
type CreateRequestRequest struct {
	LeaveTypeID   string `json:"leave_type_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Days          *int   `json:"days"`
	Notes         string `json:"notes"`
	AttachmentURL string `json:"attachment_url"`
	EmployeeID    string `json:"employee_id"`
}

func (r *CreateRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.LeaveTypeID) {
		errs.Add("leave_type_id", "leave_type_id must be a valid UUID")
	}
	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must use YYYY-MM-DD")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must use YYYY-MM-DD")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	if r.Days != nil && *r.Days < 1 {
		errs.Add("days", "days must be at least 1")
	}

	return errs.Err()
}

// ResolvedDays is the explicit day count, or the inclusive span of the dates.
// It assumes Validate passed.
func (r *CreateRequestRequest) ResolvedDays() int {
	if r.Days != nil {
		return *r.Days
	}
	days, err := InclusiveDays(r.StartDate, r.EndDate)
	if err != nil {
		return 0
	}
	return days
}

// ToRequest converts a validated request for employeeID.
func (r *CreateRequestRequest) ToRequest(employeeID string) Request {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	req := Request{
		EmployeeID:  employeeID,
		LeaveTypeID: r.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Days:        r.ResolvedDays(),
		Status:      StatusPending,
	}
	if notes := strings.TrimSpace(r.Notes); notes != "" {
		req.Notes = &notes
	}
	if url := strings.TrimSpace(r.AttachmentURL); url != "" {
		req.AttachmentURL = &url
	}
	return req
}

type RequestFilter struct {
	EmployeeID string
	Status     string
	pagination.Params
}

func (f *RequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != "" && !validator.IsValidUUID(f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.Status != "" && !RequestStatus(f.Status).IsValid() {
		errs.Add("status", "status must be one of pending, approved, rejected")
	}

	return errs.Err()
}

type RequestResponse struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employeeId"`
	EmployeeName *string       `json:"employeeName,omitempty"`
	LeaveTypeID  string        `json:"leave_type_id"`
	Type         *string       `json:"type,omitempty"`
	StartDate    string        `json:"startDate"`
	EndDate      string        `json:"endDate"`
	Days         int           `json:"days"`
	Status       string        `json:"status"`
	StatusCode   RequestStatus `json:"status_code"`
	AppliedOn    string        `json:"appliedOn"`
	Notes        *string       `json:"notes,omitempty"`
	Attachment   *string       `json:"attachment,omitempty"`
	ReviewedBy   *string       `json:"reviewed_by,omitempty"`
}

func NewRequestResponse(r Request) RequestResponse {
	return RequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		LeaveTypeID:  r.LeaveTypeID,
		Type:         r.LeaveTypeName,
		StartDate:    r.StartDate.Format(validator.DateLayout),
		EndDate:      r.EndDate.Format(validator.DateLayout),
		Days:         r.Days,
		Status:       r.Status.DisplayName(),
		StatusCode:   r.Status,
		AppliedOn:    r.CreatedAt.Format(validator.DateLayout),
		Notes:        r.Notes,
		Attachment:   r.AttachmentURL,
		ReviewedBy:   r.ReviewedBy,
	}
}

type ListRequestResponse struct {
	Items []RequestResponse `json:"items"`
	pagination.Page
}

type ReviewResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func parseOptionalDate(errs *validator.ValidationErrors, field, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	d, ok := validator.IsValidDate(value)
	if !ok {
		errs.Add(field, field+" must use YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(validator.DateLayout)
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
