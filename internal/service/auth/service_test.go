package auth

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/company"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/email"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUsers struct {
	user.UserRepository
	byID     map[string]user.User
	created  []user.User
	getCalls int
}

func (f *fakeUsers) GetByLoginIDOrEmail(_ context.Context, id string) (user.User, error) {
	for _, u := range f.byID {
		if u.LoginID == id || (u.EmployeeEmail != nil && *u.EmployeeEmail == id) {
			return u, nil
		}
	}
	return user.User{}, pgx.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	f.getCalls++
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string, firstLogin bool) error {
	u := f.byID[id]
	u.PasswordHash = hash
	u.IsFirstLogin = firstLogin
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) Create(_ context.Context, u user.User) (user.User, error) {
	u.ID = "u-new"
	f.created = append(f.created, u)
	f.byID[u.ID] = u
	return u, nil
}

type fakeEmployees struct {
	employee.EmployeeRepository
	byUser  map[string]employee.Employee
	serial  int
	created []employee.Employee
}

func (f *fakeEmployees) GetByUserID(_ context.Context, userID string) (employee.Employee, error) {
	e, ok := f.byUser[userID]
	if !ok {
		return employee.Employee{}, pgx.ErrNoRows
	}
	return e, nil
}

func (f *fakeEmployees) ExistsByEmail(_ context.Context, _, email string) (bool, error) {
	for _, e := range f.byUser {
		if e.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEmployees) NextJoiningSerial(_ context.Context, _ int) (int, error) {
	f.serial++
	return f.serial, nil
}

func (f *fakeEmployees) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	e.ID = "e-new"
	f.created = append(f.created, e)
	return e, nil
}

type fakeCompanies struct {
	company.CompanyRepository
}

const missingCompanyID = "9b2f4c1e-0000-4000-8000-000000000000"

func (fakeCompanies) GetByID(_ context.Context, id string) (company.Company, error) {
	if id == missingCompanyID {
		return company.Company{}, pgx.ErrNoRows
	}
	return company.Company{ID: id, Name: "Odoo India"}, nil
}

type fakeTokens struct {
	refresh map[string]bool // token -> revoked
	resets  map[string]auth.PasswordReset
	used    []string
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{refresh: map[string]bool{}, resets: map[string]auth.PasswordReset{}}
}

func (f *fakeTokens) CreateRefreshToken(_ context.Context, _, token string, _ int64, _ auth.SessionTrackingRequest) error {
	f.refresh[token] = false
	return nil
}

func (f *fakeTokens) IsRefreshTokenRevoked(_ context.Context, token string) (bool, error) {
	revoked, ok := f.refresh[token]
	return !ok || revoked, nil
}

func (f *fakeTokens) RevokeRefreshToken(_ context.Context, token string) error {
	f.refresh[token] = true
	return nil
}

func (f *fakeTokens) CreatePasswordReset(_ context.Context, userID, token string, expiresAt time.Time) error {
	f.resets[token] = auth.PasswordReset{ID: "r-" + token[:4], UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeTokens) GetPasswordReset(_ context.Context, token string) (auth.PasswordReset, error) {
	r, ok := f.resets[token]
	if !ok {
		return auth.PasswordReset{}, pgx.ErrNoRows
	}
	return r, nil
}

func (f *fakeTokens) MarkPasswordResetUsed(_ context.Context, id string) error {
	f.used = append(f.used, id)
	return nil
}

type fakeMailer struct {
	off         bool
	mu          sync.Mutex
	credentials []email.CredentialsMail
	resets      []email.PasswordResetMail
}

func (m *fakeMailer) Configured() bool { return !m.off }

func (m *fakeMailer) SendCredentials(_ context.Context, msg email.CredentialsMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentials = append(m.credentials, msg)
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, msg email.PasswordResetMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, msg)
	return nil
}

func (m *fakeMailer) SendPayslip(context.Context, email.PayslipMail) error { return nil }

type fixture struct {
	svc       *AuthServiceImpl
	users     *fakeUsers
	employees *fakeEmployees
	tokens    *fakeTokens
	mailer    *fakeMailer
	jwt       *jwt.JWTService
	caches    *cache.Registry
}

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	empID, empEmail := "e-1", "jane@odoo.in"
	f := &fixture{
		users: &fakeUsers{byID: map[string]user.User{
			"u-1": {
				ID: "u-1", CompanyID: "c-1", LoginID: "OIJADO202501", Role: user.RoleHR,
				PasswordHash: hash(t, "secret-pass"), EmployeeID: &empID, EmployeeEmail: &empEmail,
			},
			"u-2": {
				ID: "u-2", CompanyID: "c-1", LoginID: "OIJOSM202502", Role: user.RoleEmployee,
				PasswordHash: hash(t, "a1b2c3d4e5f6"), IsFirstLogin: true,
			},
		}},
		employees: &fakeEmployees{byUser: map[string]employee.Employee{
			"u-1": {ID: empID, CompanyID: "c-1", FirstName: "Jane", LastName: "Doe", Email: empEmail,
				DateOfJoining: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)},
		}},
		tokens: newFakeTokens(),
		mailer: &fakeMailer{},
		jwt:    jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour, false),
		caches: cache.NewRegistry(nil),
	}
	f.svc = NewAuthService(fakeTx{}, f.users, f.employees, fakeCompanies{}, f.tokens, f.jwt, f.mailer, nil,
		f.caches, "http://localhost:5173/").(*AuthServiceImpl)
	return f
}

func withClaims(userID, companyID string, role user.Role) context.Context {
	return jwt.ContextWithClaims(context.Background(), jwt.Claims{UserID: userID, CompanyID: companyID, Role: role})
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, auth.LoginRequest{LoginID: "nobody", Password: "x"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, auth.LoginRequest{LoginID: "OIJADO202501", Password: "wrong"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, auth.LoginRequest{LoginID: "OIJOSM202502", Password: "a1b2c3d4e5f6"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrFirstLoginRequired)

	tokens, err := f.svc.Login(ctx, auth.LoginRequest{LoginID: "jane@odoo.in", Password: "secret-pass"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.Equal(t, user.RoleHR, tokens.Role)
	assert.Equal(t, "OIJADO202501", tokens.LoginID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Contains(t, f.tokens.refresh, tokens.RefreshToken)
}

func TestFirstReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.FirstReset(ctx, auth.FirstResetRequest{LoginID: "OIJOSM202502", TempPassword: "nope", NewPassword: "new-password"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidTempPassword)

	tokens, err := f.svc.FirstReset(ctx, auth.FirstResetRequest{LoginID: "OIJOSM202502", TempPassword: "a1b2c3d4e5f6", NewPassword: "new-password"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.False(t, f.users.byID["u-2"].IsFirstLogin)

	_, err = f.svc.FirstReset(ctx, auth.FirstResetRequest{LoginID: "OIJOSM202502", TempPassword: "new-password", NewPassword: "other-password"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrAlreadyReset)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := withClaims("u-1", "c-1", user.RoleHR)

	err := f.svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "bad", NewPassword: "another-pass"})
	assert.ErrorIs(t, err, auth.ErrCurrentPasswordIncorrect)

	err = f.svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "secret-pass", NewPassword: "secret-pass"})
	assert.ErrorIs(t, err, auth.ErrSamePassword)

	require.NoError(t, f.svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "secret-pass", NewPassword: "another-pass"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.users.byID["u-1"].PasswordHash), []byte("another-pass")))

	err = f.svc.ChangePassword(context.Background(), auth.ChangePasswordRequest{})
	assert.ErrorIs(t, err, jwt.ErrNoClaims)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	require.NoError(t, f.svc.ForgotPassword(ctx, auth.ForgotPasswordRequest{LoginID: "unknown"}))
	assert.Empty(t, f.tokens.resets)

	require.NoError(t, f.svc.ForgotPassword(ctx, auth.ForgotPasswordRequest{LoginID: "OIJADO202501"}))
	require.Len(t, f.mailer.resets, 1)
	mail := f.mailer.resets[0]
	assert.Equal(t, "jane@odoo.in", mail.To)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), mail.Token)
	assert.Equal(t, now.Add(30*time.Minute), mail.ExpiresAt)

	err := f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: "bogus", NewPassword: "fresh-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)

	f.svc.now = func() time.Time { return now.Add(31 * time.Minute) }
	err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: mail.Token, NewPassword: "fresh-password"})
	assert.ErrorIs(t, err, auth.ErrResetTokenExpired)

	f.svc.now = func() time.Time { return now.Add(5 * time.Minute) }
	require.NoError(t, f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: mail.Token, NewPassword: "fresh-password"}))
	assert.Len(t, f.tokens.used, 1)

	used := f.tokens.resets[mail.Token]
	usedAt := now
	used.UsedAt = &usedAt
	f.tokens.resets[mail.Token] = used
	err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: mail.Token, NewPassword: "fresh-password"})
	assert.ErrorIs(t, err, auth.ErrResetTokenUsed)
}

func TestRefreshTokenRotates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, auth.LoginRequest{LoginID: "OIJADO202501", Password: "secret-pass"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	_, err = f.svc.RefreshToken(ctx, "garbage", auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	// Issued tokens within the same second are identical, so wait for a distinct exp claim.
	time.Sleep(1100 * time.Millisecond)
	second, err := f.svc.RefreshToken(ctx, first.RefreshToken, auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.True(t, f.tokens.refresh[first.RefreshToken])

	_, err = f.svc.RefreshToken(ctx, first.RefreshToken, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	require.NoError(t, f.svc.Logout(ctx, second.RefreshToken))
	assert.True(t, f.tokens.refresh[second.RefreshToken])
}

func TestMeIsSanitizedAndCached(t *testing.T) {
	f := newFixture(t)
	ctx := withClaims("u-1", "c-1", user.RoleHR)

	me, err := f.svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", me.Name)
	assert.Equal(t, "HR Officer", me.Role)
	assert.Equal(t, "2025-01-06", me.JoinDate)

	_, err = f.svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.users.getCalls)
}

func TestMeReloadsAfterUserCacheTTL(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f.caches.SetClock(func() time.Time { return now })
	ctx := withClaims("u-1", "c-1", user.RoleHR)

	_, err := f.svc.Me(ctx)
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	_, err = f.svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.users.getCalls)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, f.caches.MustGet(cache.User).DeleteExpired())
	_, err = f.svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.users.getCalls)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC) }
	f.employees.serial = 2
	ctx := withClaims("u-1", "c-1", user.RoleHR)

	req := auth.RegisterRequest{FirstName: "Harsh", LastName: "Kumar", Email: "Harsh@Odoo.in"}
	require.NoError(t, req.Validate())

	resp, err := f.svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "OIHAKU202503", resp.LoginID)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}$`), resp.TempPassword)

	require.Len(t, f.users.created, 1)
	assert.True(t, f.users.created[0].IsFirstLogin)
	assert.Equal(t, user.RoleEmployee, f.users.created[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.users.created[0].PasswordHash), []byte(resp.TempPassword)))

	require.Len(t, f.employees.created, 1)
	assert.Equal(t, "harsh@odoo.in", f.employees.created[0].Email)
	assert.Equal(t, 3, f.employees.created[0].JoiningSerial)

	require.Len(t, f.mailer.credentials, 1)
	assert.Equal(t, "Odoo India", f.mailer.credentials[0].CompanyName)
	assert.Equal(t, resp.TempPassword, f.mailer.credentials[0].TempPassword)

	_, err = f.svc.Register(ctx, auth.RegisterRequest{FirstName: "Jane", LastName: "Doe", Email: "jane@odoo.in", Role: "employee"})
	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestPublicSignup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	companyID := "5f0c8a52-7c1a-4a5e-9c1e-2b1f1d3c9a10"

	req := auth.SignupRequest{FirstName: "Priya", LastName: "Shah", Email: "Priya@Odoo.in", CompanyID: companyID, DateOfJoining: "2025-06-02"}
	require.NoError(t, req.Validate())

	resp, err := f.svc.PublicSignup(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "OIPRSH202501", resp.LoginID)
	assert.True(t, resp.FirstLogin)
	assert.True(t, resp.EmailSent)

	require.Len(t, f.users.created, 1)
	created := f.users.created[0]
	assert.Equal(t, user.RoleEmployee, created.Role)
	assert.Equal(t, companyID, created.CompanyID)
	assert.True(t, created.IsFirstLogin)

	require.Len(t, f.employees.created, 1)
	assert.Equal(t, "priya@odoo.in", f.employees.created[0].Email)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), f.employees.created[0].DateOfJoining)

	require.Len(t, f.mailer.credentials, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(f.mailer.credentials[0].TempPassword)))
}

func TestPublicSignupRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.PublicSignup(ctx, auth.SignupRequest{FirstName: "A", LastName: "B", Email: "a@b.in", CompanyID: missingCompanyID, DateOfJoining: "2025-06-02"})
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)

	_, err = f.svc.PublicSignup(ctx, auth.SignupRequest{FirstName: "Jane", LastName: "Doe", Email: "jane@odoo.in", CompanyID: "5f0c8a52-7c1a-4a5e-9c1e-2b1f1d3c9a10", DateOfJoining: "2025-06-02"})
	assert.ErrorIs(t, err, employee.ErrEmailExists)
	assert.Empty(t, f.users.created)

	bad := auth.SignupRequest{FirstName: "A", Email: "nope", CompanyID: "c-1"}
	err = bad.Validate()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.ToMap()
	for _, field := range []string{"last_name", "email", "company_id", "date_of_joining"} {
		assert.Contains(t, fields, field)
	}
}

func TestPublicSignupWithoutSMTPReportsNoEmail(t *testing.T) {
	f := newFixture(t)
	f.mailer.off = true

	resp, err := f.svc.PublicSignup(context.Background(), auth.SignupRequest{
		FirstName: "Ravi", LastName: "Iyer", Email: "ravi@odoo.in",
		CompanyID: "5f0c8a52-7c1a-4a5e-9c1e-2b1f1d3c9a10", DateOfJoining: "2025-06-02",
	})
	require.NoError(t, err)
	assert.False(t, resp.EmailSent)
}

func TestGoogleDisabled(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.GoogleLoginURL()
	assert.ErrorIs(t, err, auth.ErrGoogleLoginDisabled)
}
