package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/roamnest/roamnest-backend/internal/model"
)

// TokenRepo persists refresh tokens (hash only) and implements the
// consume/rotate/revoke state machine. Every token belongs to a family:
// the chain of rotations descended from one login. Consumption is a single
// guarded UPDATE so that of N concurrent exchanges of the same token
// exactly one succeeds; the losers observe the consumed row and treat it
// as reuse.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row. An empty FamilyID starts a new
// family (fresh login); rotation passes the consumed token's family on.
func (r *TokenRepo) Store(ctx context.Context, accountID, familyID, tokenHash string, exp time.Time) (model.RefreshToken, error) {
	t := model.RefreshToken{
		ID:        uuid.NewString(),
		AccountID: accountID,
		FamilyID:  familyID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
	}
	if t.FamilyID == "" {
		t.FamilyID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, account_id, family_id, token_hash, expires_at) VALUES (?,?,?,?,?)",
		t.ID, t.AccountID, t.FamilyID, t.TokenHash, t.ExpiresAt)
	if err != nil {
		return model.RefreshToken{}, err
	}
	return t, nil
}

// Consume atomically marks a live token as consumed and returns it.
// Outcomes:
//   - rows affected == 1: this caller won the exchange.
//   - token row exists but is already consumed: ErrTokenReused. The
//     caller must revoke the family before failing the request.
//   - anything else (absent, revoked, expired): ErrNotFound.
func (r *TokenRepo) Consume(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET consumed_at=NOW() WHERE token_hash=? AND consumed_at IS NULL AND revoked_at IS NULL AND expires_at > NOW()",
		tokenHash)
	if err != nil {
		return model.RefreshToken{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.RefreshToken{}, err
	}

	var (
		t          model.RefreshToken
		consumedAt sql.NullTime
		revokedAt  sql.NullTime
	)
	err = r.DB.QueryRowContext(ctx,
		"SELECT id, account_id, family_id, token_hash, expires_at, consumed_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.AccountID, &t.FamilyID, &t.TokenHash,
		&t.ExpiresAt, &consumedAt, &revokedAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	if consumedAt.Valid {
		t.ConsumedAt = &consumedAt.Time
	}
	if revokedAt.Valid {
		t.RevokedAt = &revokedAt.Time
	}

	if n == 1 {
		return t, nil
	}
	if t.RevokedAt == nil && t.ConsumedAt != nil {
		return t, ErrTokenReused
	}
	return model.RefreshToken{}, ErrNotFound
}

// RevokeFamily revokes every still-revocable token in a family. Called
// when reuse of a consumed token is detected; after this no descendant of
// the compromised login can be exchanged.
func (r *TokenRepo) RevokeFamily(ctx context.Context, familyID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE family_id=? AND revoked_at IS NULL",
		familyID)
	return err
}

// Revoke marks a single live token as revoked (explicit logout of one
// session). Returns ErrNotFound if no live token matches.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND consumed_at IS NULL AND revoked_at IS NULL",
		tokenHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeAllForAccount revokes every active token the account holds,
// logging it out of all sessions across devices.
func (r *TokenRepo) RevokeAllForAccount(ctx context.Context, accountID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE account_id=? AND revoked_at IS NULL",
		accountID)
	return err
}
