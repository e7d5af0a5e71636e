package jwt

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// AccessCookieName carries the access token for browser clients.
const AccessCookieName = "token"

var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity fields carried by an access token.
type Claims struct {
	UserID     string
	LoginID    string
	Email      string
	EmployeeID string
	CompanyID  string
	Role       user.Role
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	ParseRefreshToken(token string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	AccessTokenCookie(token string, expiresAt int64) *http.Cookie
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTTL     time.Duration
	refreshTTL    time.Duration
	secureCookies bool
	tokenAuth     *jwtauth.JWTAuth
	revokedTokens map[string]int64
	mu            sync.RWMutex
}

// NewJWTService expects durations already checked by config.Validate.
func NewJWTService(secretKey string, accessTTL, refreshTTL time.Duration, secureCookies bool) *JWTService {
	return &JWTService{
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
		tokenAuth:     jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens: make(map[string]int64),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(c Claims) (string, int64, error) {
	expiresAt := time.Now().Add(j.accessTTL).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     c.UserID,
		"login_id":    c.LoginID,
		"email":       c.Email,
		"employee_id": c.EmployeeID,
		"company_id":  c.CompanyID,
		"role":        string(c.Role),
		"type":        "access",
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateRefreshToken(userID string) (string, int64, error) {
	expiresAt := time.Now().Add(j.refreshTTL).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"exp":     expiresAt,
		"type":    "refresh",
	})
	return tokenString, expiresAt, err
}

// ParseRefreshToken verifies signature, expiry and token type.
func (j *JWTService) ParseRefreshToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", ErrInvalidToken
	}
	claims := token.PrivateClaims()
	if claims["type"] != "refresh" {
		return "", ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (j *JWTService) AccessTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     AccessCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   j.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   j.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// ClaimsFromMap reads the access-token claims decoded by jwtauth.
func ClaimsFromMap(m map[string]interface{}) (Claims, error) {
	if t, _ := m["type"].(string); t != "access" {
		return Claims{}, ErrInvalidToken
	}
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	c := Claims{
		UserID:     str("user_id"),
		LoginID:    str("login_id"),
		Email:      str("email"),
		EmployeeID: str("employee_id"),
		CompanyID:  str("company_id"),
		Role:       user.Role(str("role")),
	}
	if c.UserID == "" || !c.Role.IsValid() {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}

type claimsKey struct{}

func ContextWithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by the auth middleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}

// ErrNoClaims means the request reached a service without passing the auth middleware.
var ErrNoClaims = errors.New("authentication required")

func RequireClaims(ctx context.Context) (Claims, error) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return Claims{}, ErrNoClaims
	}
	return c, nil
}
