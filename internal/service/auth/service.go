package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/company"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/email"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/oauth"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenBytes   = 32
	resetTokenTTL     = 30 * time.Minute
	tempPasswordBytes = 6
)

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	employee.EmployeeRepository
	company.CompanyRepository
	auth.TokenRepository
	jwt      jwt.Service
	mailer   email.EmailService
	google   oauth.GoogleService
	users    *cache.Cache
	loginURL string
	now      func() time.Time
}

// NewAuthService wires the auth flows. google may be nil when Google sign-in is not configured.
func NewAuthService(
	tx database.Transactor,
	userRepository user.UserRepository,
	employeeRepository employee.EmployeeRepository,
	companyRepository company.CompanyRepository,
	tokenRepository auth.TokenRepository,
	jwtService jwt.Service,
	mailer email.EmailService,
	google oauth.GoogleService,
	caches *cache.Registry,
	loginURL string,
) auth.AuthService {
	return &AuthServiceImpl{
		tx:                 tx,
		UserRepository:     userRepository,
		EmployeeRepository: employeeRepository,
		CompanyRepository:  companyRepository,
		TokenRepository:    tokenRepository,
		jwt:                jwtService,
		mailer:             mailer,
		google:             google,
		users:              caches.MustGet(cache.User),
		loginURL:           loginURL,
		now:                time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func userCacheKey(userID string) string {
	return "user:" + userID
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	u, err := a.UserRepository.GetByLoginIDOrEmail(ctx, req.LoginID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by login id: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if u.IsFirstLogin {
		return auth.TokenResponse{}, auth.ErrFirstLoginRequired
	}

	return a.issueTokens(ctx, u, session)
}

// FirstReset implements auth.AuthService.
func (a *AuthServiceImpl) FirstReset(ctx context.Context, req auth.FirstResetRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	u, err := a.UserRepository.GetByLoginIDOrEmail(ctx, req.LoginID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by login id: %w", err)
	}
	if !u.IsFirstLogin {
		return auth.TokenResponse{}, auth.ErrAlreadyReset
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.TempPassword)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidTempPassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	var tokens auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.UserRepository.UpdatePassword(ctx, u.ID, hash, false); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		u.IsFirstLogin = false
		tokens, err = a.issueTokens(ctx, u, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	a.users.Delete(userCacheKey(u.ID))
	return tokens, nil
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return err
	}

	u, err := a.UserRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrCurrentPasswordIncorrect
	}
	if req.NewPassword == req.CurrentPassword {
		return auth.ErrSamePassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := a.UserRepository.UpdatePassword(ctx, u.ID, hash, false); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	a.users.Delete(userCacheKey(u.ID))
	return nil
}

// ForgotPassword implements auth.AuthService. Unknown login ids succeed silently.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) error {
	u, err := a.UserRepository.GetByLoginIDOrEmail(ctx, req.LoginID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Info("password reset requested for unknown login id")
			return nil
		}
		return fmt.Errorf("failed to get user by login id: %w", err)
	}

	token, err := randomHex(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expiresAt := a.now().Add(resetTokenTTL)
	if err := a.TokenRepository.CreatePasswordReset(ctx, u.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	emp, err := a.EmployeeRepository.GetByUserID(ctx, u.ID)
	if err != nil {
		slog.Warn("password reset token issued for user without employee profile", "user_id", u.ID)
		return nil
	}
	err = a.mailer.SendPasswordReset(ctx, email.PasswordResetMail{
		To:        emp.Email,
		Name:      emp.FullName(),
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		slog.Error("failed to send password reset email", "error", err, "user_id", u.ID)
	}
	return nil
}

// ResetPassword implements auth.AuthService.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	reset, err := a.TokenRepository.GetPasswordReset(ctx, req.Token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.ErrInvalidResetToken
		}
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if reset.UsedAt != nil {
		return auth.ErrResetTokenUsed
	}
	if !a.now().Before(reset.ExpiresAt) {
		return auth.ErrResetTokenExpired
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.UserRepository.UpdatePassword(ctx, reset.UserID, hash, false); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := a.TokenRepository.MarkPasswordResetUsed(ctx, reset.ID); err != nil {
			return fmt.Errorf("failed to mark reset token used: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.users.Delete(userCacheKey(reset.UserID))
	return nil
}

// RefreshToken implements auth.AuthService. The presented refresh token is rotated.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userID, err := a.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidRefreshToken
	}

	revoked, err := a.TokenRepository.IsRefreshTokenRevoked(ctx, refreshToken)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return auth.TokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	u, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.TokenResponse{}, auth.ErrInvalidRefreshToken
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	var tokens auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.TokenRepository.RevokeRefreshToken(ctx, refreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		tokens, err = a.issueTokens(ctx, u, session)
		return err
	})
	return tokens, err
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := a.TokenRepository.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.SessionUser, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return auth.SessionUser{}, err
	}

	return cache.Load(ctx, a.users, userCacheKey(claims.UserID), a.users.DefaultTTL(), func(ctx context.Context) (auth.SessionUser, error) {
		u, err := a.UserRepository.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return auth.SessionUser{}, user.ErrUserNotFound
			}
			return auth.SessionUser{}, fmt.Errorf("failed to get user: %w", err)
		}

		me := auth.SessionUser{
			ID:       u.ID,
			Role:     u.Role.DisplayName(),
			RoleCode: u.Role,
			LoginID:  u.LoginID,
		}
		emp, err := a.EmployeeRepository.GetByUserID(ctx, u.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				me.Name = u.LoginID
				return me, nil
			}
			return auth.SessionUser{}, fmt.Errorf("failed to get employee: %w", err)
		}
		me.EmployeeID = emp.ID
		me.Name = emp.FullName()
		me.Email = emp.Email
		me.Department = deref(emp.Department)
		me.Position = deref(emp.Position)
		me.Phone = deref(emp.Phone)
		me.JoinDate = emp.DateOfJoining.Format(validator.DateLayout)
		me.Avatar = deref(emp.AvatarURL)
		return me, nil
	})
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.RegisterResponse, error) {
	claims, err := jwt.RequireClaims(ctx)
	if err != nil {
		return auth.RegisterResponse{}, err
	}

	if req.ManagerID != "" {
		manager, err := a.EmployeeRepository.GetByID(ctx, req.ManagerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return auth.RegisterResponse{}, employee.ErrManagerNotFound
			}
			return auth.RegisterResponse{}, fmt.Errorf("failed to get manager: %w", err)
		}
		if manager.CompanyID != claims.CompanyID {
			return auth.RegisterResponse{}, employee.ErrManagerNotFound
		}
	}

	acc, err := a.createAccount(ctx, claims.CompanyID, user.Role(req.Role), req.DateOfJoining, employee.Employee{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      optional(req.Phone),
		Department: optional(req.Department),
		Position:   optional(req.Position),
		Location:   optional(req.Location),
		Gender:     optional(req.Gender),
		ManagerID:  optional(req.ManagerID),
	})
	if err != nil {
		return auth.RegisterResponse{}, err
	}

	slog.Info("employee registered", "employee_id", acc.employee.ID, "login_id", acc.loginID, "by", claims.UserID)
	return auth.RegisterResponse{EmployeeID: acc.employee.ID, LoginID: acc.loginID, TempPassword: acc.tempPassword}, nil
}

// PublicSignup implements auth.AuthService. The temporary password only travels by mail.
func (a *AuthServiceImpl) PublicSignup(ctx context.Context, req auth.SignupRequest) (auth.SignupResponse, error) {
	if _, err := a.CompanyRepository.GetByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.SignupResponse{}, company.ErrCompanyNotFound
		}
		return auth.SignupResponse{}, fmt.Errorf("failed to get company: %w", err)
	}

	acc, err := a.createAccount(ctx, req.CompanyID, user.RoleEmployee, req.DateOfJoining, employee.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     optional(req.Phone),
	})
	if err != nil {
		return auth.SignupResponse{}, err
	}

	slog.Info("employee signed up", "employee_id", acc.employee.ID, "login_id", acc.loginID, "company_id", req.CompanyID)
	return auth.SignupResponse{LoginID: acc.loginID, FirstLogin: true, EmailSent: acc.mailed}, nil
}

type account struct {
	employee     employee.Employee
	loginID      string
	tempPassword string
	mailed       bool
}

// createAccount creates the user and its employee profile in one transaction, then
// mails the credentials. A mail failure is logged and does not undo the account.
func (a *AuthServiceImpl) createAccount(ctx context.Context, companyID string, role user.Role, joined string, profile employee.Employee) (account, error) {
	exists, err := a.EmployeeRepository.ExistsByEmail(ctx, companyID, profile.Email)
	if err != nil {
		return account{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return account{}, employee.ErrEmailExists
	}

	joinedAt := a.now().UTC()
	if joined != "" {
		joinedAt, _ = validator.IsValidDate(joined)
	}
	joinedAt = time.Date(joinedAt.Year(), joinedAt.Month(), joinedAt.Day(), 0, 0, 0, 0, time.UTC)

	tempPassword, err := randomHex(tempPasswordBytes)
	if err != nil {
		return account{}, fmt.Errorf("failed to generate temporary password: %w", err)
	}
	hash, err := hashPassword(tempPassword)
	if err != nil {
		return account{}, err
	}

	acc := account{tempPassword: tempPassword}
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		serial, err := a.EmployeeRepository.NextJoiningSerial(ctx, joinedAt.Year())
		if err != nil {
			return fmt.Errorf("failed to reserve joining serial: %w", err)
		}
		acc.loginID = auth.GenerateLoginID(profile.FirstName, profile.LastName, joinedAt, serial)

		newUser, err := a.UserRepository.Create(ctx, user.User{
			CompanyID:    companyID,
			LoginID:      acc.loginID,
			PasswordHash: hash,
			Role:         role,
			IsFirstLogin: true,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		profile.UserID = &newUser.ID
		profile.CompanyID = companyID
		profile.Email = strings.ToLower(profile.Email)
		profile.DateOfJoining = joinedAt
		profile.JoiningSerial = serial
		acc.employee, err = a.EmployeeRepository.Create(ctx, profile)
		if err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return account{}, err
	}

	companyName := ""
	if c, err := a.CompanyRepository.GetByID(ctx, companyID); err == nil {
		companyName = c.Name
	}
	err = a.mailer.SendCredentials(ctx, email.CredentialsMail{
		To:           acc.employee.Email,
		Name:         acc.employee.FullName(),
		CompanyName:  companyName,
		LoginID:      acc.loginID,
		TempPassword: tempPassword,
		LoginURL:     a.loginURL,
	})
	if err != nil {
		slog.Error("failed to send credentials email", "error", err, "employee_id", acc.employee.ID)
	}
	acc.mailed = err == nil && a.mailer.Configured()
	return acc, nil
}

// GoogleLoginURL implements auth.AuthService.
func (a *AuthServiceImpl) GoogleLoginURL() (string, string, error) {
	if a.google == nil {
		return "", "", auth.ErrGoogleLoginDisabled
	}
	state, err := a.google.GenerateState()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return a.google.RedirectURL(state), state, nil
}

// LoginWithGoogle implements auth.AuthService. The Google account must share its verified
// e-mail with an existing employee.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, code string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if a.google == nil {
		return auth.TokenResponse{}, auth.ErrGoogleLoginDisabled
	}
	token, err := a.google.Exchange(ctx, code)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to exchange oauth code: %w", err)
	}
	profile, err := a.google.Profile(ctx, token)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	u, err := a.UserRepository.GetByEmployeeEmail(ctx, profile.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.TokenResponse{}, auth.ErrGoogleAccountNotLinked
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return a.issueTokens(ctx, u, session)
}

func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	access, accessExp, err := a.jwt.GenerateAccessToken(jwt.Claims{
		UserID:     u.ID,
		LoginID:    u.LoginID,
		Email:      deref(u.EmployeeEmail),
		EmployeeID: deref(u.EmployeeID),
		CompanyID:  u.CompanyID,
		Role:       u.Role,
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	refresh, refreshExp, err := a.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	if err := a.TokenRepository.CreateRefreshToken(ctx, u.ID, refresh, refreshExp, session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:           access,
		AccessTokenExpiresIn:  accessExp,
		RefreshToken:          refresh,
		RefreshTokenExpiresIn: refreshExp,
		Role:                  u.Role,
		LoginID:               u.LoginID,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
