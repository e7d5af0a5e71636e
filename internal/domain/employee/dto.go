package employee

import (
	"strings"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/pagination"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
)

type ListFilter struct {
	pagination.Params
}

type EmployeeResponse struct {
	ID            string  `json:"id"`
	UserID        *string `json:"user_id,omitempty"`
	CompanyID     string  `json:"company_id"`
	LoginID       *string `json:"login_id,omitempty"`
	Role          *string `json:"role,omitempty"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone,omitempty"`
	Department    *string `json:"department,omitempty"`
	Position      *string `json:"position,omitempty"`
	Location      *string `json:"location,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	ManagerID     *string `json:"manager_id,omitempty"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	AboutJob      *string `json:"about_job,omitempty"`
	Interests     *string `json:"interests,omitempty"`
	Hobbies       *string `json:"hobbies,omitempty"`
	Address       *string `json:"address,omitempty"`
	DateOfJoining string  `json:"date_of_joining"`
	JoiningSerial int     `json:"joining_serial"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:            e.ID,
		UserID:        e.UserID,
		CompanyID:     e.CompanyID,
		LoginID:       e.LoginID,
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		Name:          e.FullName(),
		Email:         e.Email,
		Phone:         e.Phone,
		Department:    e.Department,
		Position:      e.Position,
		Location:      e.Location,
		Gender:        e.Gender,
		ManagerID:     e.ManagerID,
		AvatarURL:     e.AvatarURL,
		AboutJob:      e.AboutJob,
		Interests:     e.Interests,
		Hobbies:       e.Hobbies,
		Address:       e.Address,
		DateOfJoining: e.DateOfJoining.Format(validator.DateLayout),
		JoiningSerial: e.JoiningSerial,
		CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     e.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.Role != nil {
		name := e.Role.DisplayName()
		resp.Role = &name
	}
	return resp
}

type ListEmployeeResponse struct {
	Items []EmployeeResponse `json:"items"`
	pagination.Page
}

// UpdatePrivateInfoRequest maps private field names to new values; a null value clears the field.
type UpdatePrivateInfoRequest map[string]*string

// Allowed drops every key outside PrivateFields and trims the kept values.
func (r UpdatePrivateInfoRequest) Allowed() map[string]*string {
	fields := make(map[string]*string)
	for _, name := range PrivateFields {
		value, ok := r[name]
		if !ok {
			continue
		}
		if value != nil {
			trimmed := strings.TrimSpace(*value)
			value = &trimmed
		}
		fields[name] = value
	}
	return fields
}

func (r UpdatePrivateInfoRequest) Validate() error {
	var errs validator.ValidationErrors

	for name, value := range r.Allowed() {
		if value != nil && len(*value) > 2000 {
			errs.Add(name, name+" must not exceed 2000 characters")
		}
	}

	return errs.Err()
}

type AvatarResponse struct {
	AvatarURL *string          `json:"avatar_url"`
	Employee  EmployeeResponse `json:"employee"`
}
