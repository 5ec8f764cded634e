package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

// TokenRepo persists and validates refresh token hashes.
type TokenRepo struct{ db *sqlx.DB }

func NewTokenRepo(db *sqlx.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return exec(ctx, r.db, "refresh token",
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)", userID, tokenHash, exp)
}

// ValidateRefresh returns the owning user id of a live token.  Unknown,
// revoked and expired tokens are all an authentication failure.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	tok, err := getOne[model.RefreshToken](ctx, r.db, "refresh token",
		"SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1",
		tokenHash)
	if err != nil {
		if isKind(err, ErrNotFound) {
			return 0, Unauthenticated("invalid refresh token")
		}
		return 0, err
	}
	if tok.RevokedAt != nil || time.Now().UTC().After(tok.ExpiresAt) {
		return 0, Unauthenticated("invalid refresh token")
	}
	return tok.UserID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	return exec(ctx, r.db, "refresh token",
		"UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE token_hash = ? AND revoked_at IS NULL", tokenHash)
}

// RevokeAllForUser revokes every active token of a user, used on
// deactivation.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return exec(ctx, r.db, "refresh token",
		"UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE user_id = ? AND revoked_at IS NULL", userID)
}
