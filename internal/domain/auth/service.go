package auth

import "context"

type AuthService interface {
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)
	FirstReset(ctx context.Context, req FirstResetRequest, session SessionTrackingRequest) (TokenResponse, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	RefreshToken(ctx context.Context, refreshToken string, session SessionTrackingRequest) (TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context) (SessionUser, error)
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
	PublicSignup(ctx context.Context, req SignupRequest) (SignupResponse, error)

	GoogleLoginURL() (url string, state string, err error)
	LoginWithGoogle(ctx context.Context, code string, session SessionTrackingRequest) (TokenResponse, error)
}
