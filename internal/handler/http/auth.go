package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/middleware"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
)

const (
	refreshCookieName = "refresh_token"
	stateCookieName   = "oauth_state"
	googleCallback    = "/api/v1/auth/oauth/callback/google"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	FirstReset(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	PublicSignup(w http.ResponseWriter, r *http.Request)
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService  jwt.Service
	authService auth.AuthService
	loginURL    string
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService, loginURL string) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
		loginURL:    loginURL,
	}
}

func (a *AuthHandlerImpl) setSessionCookies(w http.ResponseWriter, tokens auth.TokenResponse) {
	http.SetCookie(w, a.jwtService.AccessTokenCookie(tokens.AccessToken, tokens.AccessTokenExpiresIn))
	http.SetCookie(w, a.jwtService.RefreshTokenCookie(tokens.RefreshToken, tokens.RefreshTokenExpiresIn))
}

func clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tokens, err := a.authService.Login(r.Context(), req, sessionFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	a.setSessionCookies(w, tokens)
	response.SuccessWithMessage(w, "Login successful", tokens)
}

// FirstReset implements AuthHandler.
func (a *AuthHandlerImpl) FirstReset(w http.ResponseWriter, r *http.Request) {
	var req auth.FirstResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tokens, err := a.authService.FirstReset(r.Context(), req, sessionFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	a.setSessionCookies(w, tokens)
	response.SuccessWithMessage(w, "Password updated", tokens)
}

// ChangePassword implements AuthHandler.
func (a *AuthHandlerImpl) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ChangePassword(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Password changed successfully", nil)
}

// ForgotPassword implements AuthHandler. Unknown login ids are answered like known ones.
func (a *AuthHandlerImpl) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ForgotPassword(r.Context(), req); err != nil {
		slog.Error("forgot password failed", "error", err)
	}
	response.SuccessWithMessage(w, "If the account exists, a reset link has been sent", nil)
}

// ResetPassword implements AuthHandler.
func (a *AuthHandlerImpl) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ResetPassword(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Password has been reset successfully", nil)
}

// RefreshToken implements AuthHandler. The cookie wins over the body.
func (a *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req auth.RefreshTokenRequest
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		req.RefreshToken = c.Value
	} else if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.RefreshToken == "" {
		response.HandleError(w, auth.ErrInvalidRefreshToken)
		return
	}

	tokens, err := a.authService.RefreshToken(r.Context(), req.RefreshToken, sessionFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	a.setSessionCookies(w, tokens)
	response.SuccessWithMessage(w, "Token refreshed successfully", tokens)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	var refresh string
	if c, err := r.Cookie(refreshCookieName); err == nil {
		refresh = c.Value
	} else {
		var req auth.RefreshTokenRequest
		_ = decodeJSON(w, r, &req)
		refresh = req.RefreshToken
	}

	if err := a.authService.Logout(r.Context(), refresh); err != nil {
		response.HandleError(w, err)
		return
	}
	if access := middleware.TokenFromRequest(r); access != "" {
		a.jwtService.RevokeToken(access)
	}

	clearCookie(w, jwt.AccessCookieName, "/")
	clearCookie(w, refreshCookieName, "/api/v1/auth")
	response.SuccessWithMessage(w, "Logged out", nil)
}

// Me implements AuthHandler.
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	me, err := a.authService.Me(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, me)
}

// Register implements AuthHandler.
func (a *AuthHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := a.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Employee registered", created)
}

// PublicSignup implements AuthHandler.
func (a *AuthHandlerImpl) PublicSignup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := a.authService.PublicSignup(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Account created", resp)
}

// LoginWithGoogle implements AuthHandler.
func (a *AuthHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	redirect, state, err := a.authService.GoogleLoginURL()
	if err != nil {
		response.HandleError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     googleCallback,
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

// OAuthCallbackGoogle implements AuthHandler. Failures redirect to the login page with ?error=.
func (a *AuthHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	fail := func(reason string) {
		http.Redirect(w, r, a.loginURL+"?error="+url.QueryEscape(reason), http.StatusTemporaryRedirect)
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		fail(e)
		return
	}
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != q.Get("state") {
		slog.Warn("google callback state mismatch")
		fail(auth.ErrInvalidOAuthState.Error())
		return
	}
	clearCookie(w, stateCookieName, googleCallback)

	code := q.Get("code")
	if code == "" {
		fail("code_empty")
		return
	}

	tokens, err := a.authService.LoginWithGoogle(r.Context(), code, sessionFrom(r))
	if err != nil {
		slog.Error("google login failed", "error", err)
		fail("login_failed")
		return
	}

	a.setSessionCookies(w, tokens)
	http.Redirect(w, r, a.loginURL, http.StatusTemporaryRedirect)
}
