package employee

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
)

var (
	ErrSkillRequired         = errors.New("skill is required")
	ErrSkillExists           = errors.New("skill already exists")
	ErrSkillNotFound         = errors.New("skill not found")
	ErrCertificationNotFound = errors.New("certification not found")
	ErrNoCertificationFields = errors.New("no certification fields to update")
	ErrNoSensitiveFields     = errors.New("no allowed fields provided")
)

type Skill struct {
	ID         string
	EmployeeID string
	Name       string
	CreatedAt  time.Time
}

type Certification struct {
	ID         string
	EmployeeID string
	Title      string
	Issuer     *string
	IssuedOn   *time.Time
	ExpiresOn  *time.Time
	CreatedAt  time.Time
}

// PersonalInfo is the sensitive half of the employees row.
type PersonalInfo struct {
	DateOfBirth   *time.Time
	Nationality   *string
	Gender        *string
	MaritalStatus *string
	Address       *string
	UpdatedAt     time.Time
}

type BankDetails struct {
	ID            string
	EmployeeID    string
	AccountNumber *string
	BankName      *string
	IFSCCode      *string
	PAN           *string
	UAN           *string
	EmployeeCode  *string
}

// Columns an employee may set on their own certification rows.
const (
	CertTitle     = "title"
	CertIssuer    = "issuer"
	CertIssuedOn  = "issued_on"
	CertExpiresOn = "expires_on"
)

var CertificationFields = []string{CertTitle, CertIssuer, CertIssuedOn, CertExpiresOn}

// Sensitive personal columns on employees.
const (
	FieldDateOfBirth   = "dob"
	FieldNationality   = "nationality"
	FieldGender        = "gender"
	FieldMaritalStatus = "marital_status"
)

var PersonalFields = []string{FieldDateOfBirth, FieldNationality, FieldGender, FieldMaritalStatus, FieldAddress}

// BankFields are the bank_details columns, upserted per employee.
var BankFields = []string{"account_number", "bank_name", "ifsc_code", "pan", "uan", "employee_code"}

// ProfileRepository stores the self-service profile records. Every call is scoped
// to the owning employee so one employee can never touch another's rows.
type ProfileRepository interface {
	ListSkills(ctx context.Context, employeeID string) ([]Skill, error)
	SkillExists(ctx context.Context, employeeID, name string) (bool, error)
	CreateSkill(ctx context.Context, employeeID, name string) (Skill, error)
	DeleteSkill(ctx context.Context, employeeID, id string) error

	ListCertifications(ctx context.Context, employeeID string) ([]Certification, error)
	CreateCertification(ctx context.Context, c Certification) (Certification, error)
	// UpdateCertification sets only the given columns; keys must come from CertificationFields.
	UpdateCertification(ctx context.Context, employeeID, id string, fields map[string]any) (Certification, error)
	DeleteCertification(ctx context.Context, employeeID, id string) error

	GetPersonalInfo(ctx context.Context, employeeID string) (PersonalInfo, error)
	// UpdatePersonalInfo sets only the given columns; keys must come from PersonalFields.
	UpdatePersonalInfo(ctx context.Context, employeeID string, fields map[string]any) error
	// GetBankDetails returns nil when the employee has no bank record yet.
	GetBankDetails(ctx context.Context, employeeID string) (*BankDetails, error)
	UpsertBankDetails(ctx context.Context, employeeID string, fields map[string]*string) error
}

type SkillResponse struct {
	ID    string `json:"id"`
	Skill string `json:"skill"`
}

func NewSkillResponse(s Skill) SkillResponse {
	return SkillResponse{ID: s.ID, Skill: s.Name}
}

type AddSkillRequest struct {
	Skill string `json:"skill"`
}

func (r *AddSkillRequest) Validate() error {
	r.Skill = strings.TrimSpace(r.Skill)
	if r.Skill == "" {
		return ErrSkillRequired
	}
	var errs validator.ValidationErrors
	if len(r.Skill) > 100 {
		errs.Add("skill", "skill must not exceed 100 characters")
	}
	return errs.Err()
}

type CertificationResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Issuer    *string `json:"issuer"`
	IssuedOn  *string `json:"issued_on"`
	ExpiresOn *string `json:"expires_on"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(validator.DateLayout)
	return &s
}

func NewCertificationResponse(c Certification) CertificationResponse {
	return CertificationResponse{
		ID:        c.ID,
		Title:     c.Title,
		Issuer:    c.Issuer,
		IssuedOn:  formatDate(c.IssuedOn),
		ExpiresOn: formatDate(c.ExpiresOn),
	}
}

type AddCertificationRequest struct {
	Title     string  `json:"title"`
	Issuer    *string `json:"issuer"`
	IssuedOn  *string `json:"issued_on"`
	ExpiresOn *string `json:"expires_on"`
}

// Certification validates the form and converts it to the stored shape.
func (r AddCertificationRequest) Certification() (Certification, error) {
	var errs validator.ValidationErrors
	c := Certification{Title: strings.TrimSpace(r.Title), Issuer: blankToNil(r.Issuer)}

	if c.Title == "" {
		errs.Add("title", "title is required")
	}
	c.IssuedOn = parseDate(&errs, CertIssuedOn, r.IssuedOn)
	c.ExpiresOn = parseDate(&errs, CertExpiresOn, r.ExpiresOn)
	checkDateOrder(&errs, c.IssuedOn, c.ExpiresOn)

	if err := errs.Err(); err != nil {
		return Certification{}, err
	}
	return c, nil
}

// UpdateCertificationRequest maps certification columns to new values; a null clears the column.
type UpdateCertificationRequest map[string]*string

// Fields validates the patch and returns typed column values.
func (r UpdateCertificationRequest) Fields() (map[string]any, error) {
	var errs validator.ValidationErrors
	fields := make(map[string]any)

	for _, name := range CertificationFields {
		value, ok := r[name]
		if !ok {
			continue
		}
		switch name {
		case CertTitle:
			if value == nil || strings.TrimSpace(*value) == "" {
				errs.Add(name, "title must not be empty")
				continue
			}
			fields[name] = strings.TrimSpace(*value)
		case CertIssuer:
			fields[name] = blankToNil(value)
		default:
			fields[name] = parseDate(&errs, name, value)
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNoCertificationFields
	}
	return fields, nil
}

// UpdateSensitiveInfoRequest carries personal and bank fields in one body.
type UpdateSensitiveInfoRequest map[string]*string

// Split validates the body into personal column values and bank column values.
// Unknown keys are ignored.
func (r UpdateSensitiveInfoRequest) Split() (personal map[string]any, bank map[string]*string, err error) {
	var errs validator.ValidationErrors
	personal = make(map[string]any)
	bank = make(map[string]*string)

	for _, name := range PersonalFields {
		value, ok := r[name]
		if !ok {
			continue
		}
		if name == FieldDateOfBirth {
			personal[name] = parseDate(&errs, name, value)
			continue
		}
		value = blankToNil(value)
		if value != nil && len(*value) > 500 {
			errs.Add(name, name+" must not exceed 500 characters")
		}
		personal[name] = value
	}
	for _, name := range BankFields {
		value, ok := r[name]
		if !ok {
			continue
		}
		value = blankToNil(value)
		if value != nil && len(*value) > 64 {
			errs.Add(name, name+" must not exceed 64 characters")
		}
		bank[name] = value
	}

	if err := errs.Err(); err != nil {
		return nil, nil, err
	}
	if len(personal) == 0 && len(bank) == 0 {
		return nil, nil, ErrNoSensitiveFields
	}
	return personal, bank, nil
}

type PersonalInfoResponse struct {
	DateOfBirth   *string `json:"dob"`
	Nationality   *string `json:"nationality"`
	Gender        *string `json:"gender"`
	MaritalStatus *string `json:"marital_status"`
	Address       *string `json:"address"`
	UpdatedAt     string  `json:"updated_at"`
}

type BankDetailsResponse struct {
	ID            string  `json:"id"`
	AccountNumber *string `json:"account_number"`
	BankName      *string `json:"bank_name"`
	IFSCCode      *string `json:"ifsc_code"`
	PAN           *string `json:"pan"`
	UAN           *string `json:"uan"`
	EmployeeCode  *string `json:"employee_code"`
}

type PrivateInfoResponse struct {
	Personal PersonalInfoResponse `json:"personal"`
	Bank     *BankDetailsResponse `json:"bank"`
}

func NewPrivateInfoResponse(p PersonalInfo, b *BankDetails) PrivateInfoResponse {
	resp := PrivateInfoResponse{Personal: PersonalInfoResponse{
		DateOfBirth:   formatDate(p.DateOfBirth),
		Nationality:   p.Nationality,
		Gender:        p.Gender,
		MaritalStatus: p.MaritalStatus,
		Address:       p.Address,
		UpdatedAt:     p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}}
	if b != nil {
		resp.Bank = &BankDetailsResponse{
			ID:            b.ID,
			AccountNumber: b.AccountNumber,
			BankName:      b.BankName,
			IFSCCode:      b.IFSCCode,
			PAN:           b.PAN,
			UAN:           b.UAN,
			EmployeeCode:  b.EmployeeCode,
		}
	}
	return resp
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseDate turns an optional YYYY-MM-DD value into a date; null and blank mean no date.
func parseDate(errs *validator.ValidationErrors, field string, value *string) *time.Time {
	value = blankToNil(value)
	if value == nil {
		return nil
	}
	d, ok := validator.IsValidDate(*value)
	if !ok {
		errs.Add(field, field+" must use YYYY-MM-DD")
		return nil
	}
	return &d
}

func checkDateOrder(errs *validator.ValidationErrors, issued, expires *time.Time) {
	if issued != nil && expires != nil && expires.Before(*issued) {
		errs.Add(CertExpiresOn, "expires_on must not be before issued_on")
	}
}
