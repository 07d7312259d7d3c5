package repository

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roamnest/roamnest-backend/internal/model"
)

// CodeRepo stores verification codes in Redis. Codes are six digits,
// time-bounded by the configured TTL and single-use: Take removes the code
// in the same round trip that reads it, so a code can never verify twice.
type CodeRepo struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewCodeRepo(rdb *redis.Client, ttl time.Duration) *CodeRepo {
	return &CodeRepo{RDB: rdb, TTL: ttl}
}

func codeKey(accountID string, ch model.VerifyChannel) string {
	return fmt.Sprintf("verify:%s:%s", ch, accountID)
}

// Issue generates and stores a fresh code for the account/channel pair,
// replacing any previous code. Returns the code for hand-off to the
// delivery boundary. ErrConflict is returned when Redis is unavailable so
// handlers can report a temporary failure instead of a silent no-op.
func (r *CodeRepo) Issue(ctx context.Context, accountID string, ch model.VerifyChannel) (string, error) {
	if r.RDB == nil {
		return "", ErrConflict
	}
	code, err := sixDigits()
	if err != nil {
		return "", err
	}
	if err := r.RDB.Set(ctx, codeKey(accountID, ch), code, r.TTL).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Take atomically fetches and deletes the stored code. A missing or
// expired code is ErrNotFound.
func (r *CodeRepo) Take(ctx context.Context, accountID string, ch model.VerifyChannel) (string, error) {
	if r.RDB == nil {
		return "", ErrConflict
	}
	code, err := r.RDB.GetDel(ctx, codeKey(accountID, ch)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// sixDigits draws a uniform six-digit code from crypto/rand.
func sixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
