package auth

import "errors"

var (
	ErrInvalidCredentials       = errors.New("invalid login id or password")
	ErrFirstLoginRequired       = errors.New("password reset required on first login")
	ErrAlreadyReset             = errors.New("password already reset")
	ErrInvalidTempPassword      = errors.New("invalid temporary password")
	ErrInvalidResetToken        = errors.New("invalid reset token")
	ErrResetTokenUsed           = errors.New("reset token already used")
	ErrResetTokenExpired        = errors.New("reset token expired")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrSamePassword             = errors.New("new password must differ from the current password")
	ErrInvalidRefreshToken      = errors.New("invalid refresh token")
	ErrRefreshTokenRevoked      = errors.New("refresh token revoked or expired")
	ErrGoogleLoginDisabled      = errors.New("google sign-in is not configured")
	ErrGoogleAccountNotLinked   = errors.New("no employee is registered with this google account")
	ErrInvalidOAuthState        = errors.New("invalid oauth state")
)
