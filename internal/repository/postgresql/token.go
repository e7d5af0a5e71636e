package postgresql

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/database"
)

type tokenRepositoryImpl struct {
	db *database.DB
}

func NewTokenRepository(db *database.DB) auth.TokenRepository {
	return &tokenRepositoryImpl{db: db}
}

// hashToken keeps only a SHA-256 digest of bearer secrets in the database.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// CreateRefreshToken implements auth.TokenRepository.
func (r *tokenRepositoryImpl) CreateRefreshToken(ctx context.Context, userID, token string, expiresAt int64, session auth.SessionTrackingRequest) error {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.Exec(ctx, query, userID, hashToken(token), time.Unix(expiresAt, 0).UTC(), session.UserAgent, session.IPAddress)
	return err
}

// IsRefreshTokenRevoked implements auth.TokenRepository. Expired tokens count as revoked.
func (r *tokenRepositoryImpl) IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT revoked_at IS NOT NULL OR expires_at <= NOW()
		FROM refresh_tokens
		WHERE token_hash = $1
		ORDER BY expires_at DESC
		LIMIT 1
	`
	var revoked bool
	if err := q.QueryRow(ctx, query, hashToken(token)).Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}

// RevokeRefreshToken implements auth.TokenRepository.
func (r *tokenRepositoryImpl) RevokeRefreshToken(ctx context.Context, token string) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE token_hash = $1 AND revoked_at IS NULL
	`
	_, err := q.Exec(ctx, query, hashToken(token))
	return err
}

// CreatePasswordReset implements auth.TokenRepository.
func (r *tokenRepositoryImpl) CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO password_resets (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := q.Exec(ctx, query, userID, hashToken(token), expiresAt.UTC())
	return err
}

// GetPasswordReset implements auth.TokenRepository.
func (r *tokenRepositoryImpl) GetPasswordReset(ctx context.Context, token string) (auth.PasswordReset, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, user_id, expires_at, used_at
		FROM password_resets
		WHERE token_hash = $1
	`
	var pr auth.PasswordReset
	err := q.QueryRow(ctx, query, hashToken(token)).Scan(&pr.ID, &pr.UserID, &pr.ExpiresAt, &pr.UsedAt)
	if err != nil {
		return auth.PasswordReset{}, err
	}
	return pr, nil
}

// MarkPasswordResetUsed implements auth.TokenRepository.
func (r *tokenRepositoryImpl) MarkPasswordResetUsed(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `UPDATE password_resets SET used_at = NOW() WHERE id = $1 AND used_at IS NULL`, id)
	return err
}
