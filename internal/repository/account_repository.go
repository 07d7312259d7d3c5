package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roamnest/roamnest-backend/internal/model"
)

// AccountRepo is the credential store: the durable record of identities,
// password hashes and verification state backing every other component.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountCols = "id,first_name,last_name,email,phone,password_hash,birth_date,avatar_url,email_verified_at,phone_verified_at,last_seen_at,created_at,updated_at"

// Create inserts an account and fills in its generated ID. Email and phone
// uniqueness is enforced by the schema; a duplicate key violation is mapped
// to ErrEmailExists or ErrPhoneExists depending on which index fired, so a
// concurrent double-register can never produce two rows.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	a.ID = uuid.NewString()
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.Phone = strings.TrimSpace(a.Phone)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (id, first_name, last_name, email, phone, password_hash, birth_date, avatar_url) VALUES (?,?,?,?,?,?,?,?)",
		a.ID, a.FirstName, a.LastName, a.Email, a.Phone, a.PasswordHash, a.BirthDate, a.AvatarURL)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "phone") {
				return ErrPhoneExists
			}
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// FindByIdentifier fetches an account whose email or phone matches the
// given identifier. Email comparison is on the normalized (lowercased)
// form.
func (r *AccountRepo) FindByIdentifier(ctx context.Context, identifier string) (model.Account, error) {
	identifier = strings.TrimSpace(identifier)
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE email=? OR phone=? LIMIT 1",
		strings.ToLower(identifier), identifier).
		Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.PasswordHash,
			&a.BirthDate, &a.AvatarURL, &a.EmailVerifiedAt, &a.PhoneVerifiedAt,
			&a.LastSeenAt, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// GetByID fetches an account by its UUID.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (model.Account, error) {
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE id=? LIMIT 1", id).
		Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.PasswordHash,
			&a.BirthDate, &a.AvatarURL, &a.EmailVerifiedAt, &a.PhoneVerifiedAt,
			&a.LastSeenAt, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// MarkVerified records a successful email or phone verification. The
// update is idempotent: a channel that is already verified keeps its
// original timestamp.
func (r *AccountRepo) MarkVerified(ctx context.Context, accountID string, ch model.VerifyChannel) error {
	col := "email_verified_at"
	if ch == model.ChannelPhone {
		col = "phone_verified_at"
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET "+col+"=COALESCE("+col+", ?) WHERE id=?",
		time.Now().UTC(), accountID)
	return err
}

// TouchLastSeen stamps the account's last successful login.
func (r *AccountRepo) TouchLastSeen(ctx context.Context, accountID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET last_seen_at=NOW() WHERE id=?", accountID)
	return err
}
