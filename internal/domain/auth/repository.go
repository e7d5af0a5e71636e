package auth

import (
	"context"
	"time"
)

// PasswordReset is a single-use reset token; only its hash is stored.
type PasswordReset struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, userID, token string, expiresAt int64, session SessionTrackingRequest) error
	IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error)
	RevokeRefreshToken(ctx context.Context, token string) error

	CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error
	GetPasswordReset(ctx context.Context, token string) (PasswordReset, error)
	MarkPasswordResetUsed(ctx context.Context, id string) error
}
