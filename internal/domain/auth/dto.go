package auth

import (
	"strings"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
)

// MinPasswordLength applies to every password a user chooses.
const MinPasswordLength = 8

type LoginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.LoginID = strings.TrimSpace(r.LoginID)
	if validator.IsEmpty(r.LoginID) {
		errs.Add("login_id", "login_id is required")
	}
	if r.Password == "" {
		errs.Add("password", "password is required")
	}

	return errs.Err()
}

// SessionTrackingRequest is recorded next to every refresh token.
type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresIn  int64     `json:"access_token_expires_in"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresIn int64     `json:"refresh_token_expires_in"`
	Role                  user.Role `json:"role"`
	LoginID               string    `json:"login_id"`
}

type FirstResetRequest struct {
	LoginID      string `json:"login_id"`
	TempPassword string `json:"temp_password"`
	NewPassword  string `json:"new_password"`
}

func (r *FirstResetRequest) Validate() error {
	var errs validator.ValidationErrors

	r.LoginID = strings.TrimSpace(r.LoginID)
	if validator.IsEmpty(r.LoginID) {
		errs.Add("login_id", "login_id is required")
	}
	if r.TempPassword == "" {
		errs.Add("temp_password", "temp_password is required")
	}
	validateNewPassword(&errs, r.NewPassword)
	if r.NewPassword != "" && r.NewPassword == r.TempPassword {
		errs.Add("new_password", "new_password must differ from temp_password")
	}

	return errs.Err()
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CurrentPassword == "" {
		errs.Add("current_password", "current_password is required")
	}
	validateNewPassword(&errs, r.NewPassword)

	return errs.Err()
}

type ForgotPasswordRequest struct {
	LoginID string `json:"login_id"`
}

func (r *ForgotPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	r.LoginID = strings.TrimSpace(r.LoginID)
	if validator.IsEmpty(r.LoginID) {
		errs.Add("login_id", "login_id is required")
	}

	return errs.Err()
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	}
	validateNewPassword(&errs, r.NewPassword)

	return errs.Err()
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RegisterRequest creates a user and its employee profile in the caller's company.
type RegisterRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Role          string `json:"role"`
	Department    string `json:"department"`
	Position      string `json:"position"`
	Location      string `json:"location"`
	Gender        string `json:"gender"`
	ManagerID     string `json:"manager_id"`
	DateOfJoining string `json:"date_of_joining"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)

	if validator.IsEmpty(r.FirstName) {
		errs.Add("first_name", "first_name is required")
	}
	if validator.IsEmpty(r.LastName) {
		errs.Add("last_name", "last_name is required")
	}
	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if r.Role == "" {
		r.Role = string(user.RoleEmployee)
	}
	if !user.Role(r.Role).IsValid() {
		errs.Add("role", "role must be one of admin, hr, payroll, employee")
	}
	if r.ManagerID != "" && !validator.IsValidUUID(r.ManagerID) {
		errs.Add("manager_id", "manager_id must be a valid UUID")
	}
	if r.DateOfJoining != "" {
		if _, ok := validator.IsValidDate(r.DateOfJoining); !ok {
			errs.Add("date_of_joining", "date_of_joining must use YYYY-MM-DD")
		}
	}

	return errs.Err()
}

type RegisterResponse struct {
	EmployeeID   string `json:"employee_id"`
	LoginID      string `json:"login_id"`
	TempPassword string `json:"temp_password"`
}

// SignupRequest is the public self-signup form. The account always gets the employee role.
type SignupRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	CompanyID     string `json:"company_id"`
	DateOfJoining string `json:"date_of_joining"`
}

func (r *SignupRequest) Validate() error {
	var errs validator.ValidationErrors

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.CompanyID = strings.TrimSpace(r.CompanyID)

	if validator.IsEmpty(r.FirstName) {
		errs.Add("first_name", "first_name is required")
	}
	if validator.IsEmpty(r.LastName) {
		errs.Add("last_name", "last_name is required")
	}
	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if validator.IsEmpty(r.CompanyID) {
		errs.Add("company_id", "company_id is required")
	} else if !validator.IsValidUUID(r.CompanyID) {
		errs.Add("company_id", "company_id must be a valid UUID")
	}
	if validator.IsEmpty(r.DateOfJoining) {
		errs.Add("date_of_joining", "date_of_joining is required")
	} else if _, ok := validator.IsValidDate(r.DateOfJoining); !ok {
		errs.Add("date_of_joining", "date_of_joining must use YYYY-MM-DD")
	}

	return errs.Err()
}

type SignupResponse struct {
	LoginID    string `json:"login_id"`
	FirstLogin bool   `json:"first_login"`
	EmailSent  bool   `json:"email_sent"`
}

// SessionUser is the sanitized identity returned by /auth/me. It never carries a password.
type SessionUser struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id,omitempty"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	RoleCode   user.Role `json:"role_code"`
	LoginID    string    `json:"login_id"`
	Department string    `json:"department,omitempty"`
	Position   string    `json:"position,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	JoinDate   string    `json:"joinDate,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
}

func validateNewPassword(errs *validator.ValidationErrors, password string) {
	if password == "" {
		errs.Add("new_password", "new_password is required")
		return
	}
	if len(password) < MinPasswordLength {
		errs.Add("new_password", "new_password must be at least 8 characters long")
	}
}
