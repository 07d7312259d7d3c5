package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/roamnest/roamnest-backend/internal/model"
	"github.com/roamnest/roamnest-backend/internal/utils"
)

// ProfileRepo is the profile registry: the polymorphic 1:1 link from an
// account to exactly one guest or host variant. The unique key on
// profiles.account_id carries the one-profile invariant; the repository
// never does a check-then-act. Sensitive host fields pass through the
// FieldBox on every write and on the authorized review read.
type ProfileRepo struct {
	DB  *sql.DB
	Box *utils.FieldBox
}

func NewProfileRepo(db *sql.DB, box *utils.FieldBox) *ProfileRepo {
	return &ProfileRepo{DB: db, Box: box}
}

// CreateGuest inserts a guest variant and its link row in one transaction.
// A duplicate link insert (the account already has a profile of either
// kind) rolls the variant back and returns ErrProfileExists.
func (r *ProfileRepo) CreateGuest(ctx context.Context, accountID string, g model.GuestProfile) (model.Profile, error) {
	if g.Language == "" {
		g.Language = "en"
	}
	g.ID = uuid.NewString()
	pm, err := json.Marshal(g.PaymentMethods)
	if err != nil {
		return model.Profile{}, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Profile{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO guest_profiles (id, language, payment_methods) VALUES (?,?,?)",
		g.ID, g.Language, string(pm)); err != nil {
		return model.Profile{}, err
	}
	link, err := insertLink(ctx, tx, accountID, model.KindGuest, g.ID)
	if err != nil {
		return model.Profile{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Profile{}, err
	}
	link.Guest = &g
	return link, nil
}

// CreateHost inserts a host variant with encrypted tax id and bank account
// plus the link row. New hosts always start in the pending review state.
func (r *ProfileRepo) CreateHost(ctx context.Context, accountID string, h model.HostProfile) (model.Profile, error) {
	h.ID = uuid.NewString()
	h.Status = model.StatusPending
	taxEnc, err := r.Box.Seal(h.TaxID)
	if err != nil {
		return model.Profile{}, err
	}
	bankEnc, err := r.Box.Seal(h.BankAccount)
	if err != nil {
		return model.Profile{}, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Profile{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO host_profiles (id, business_name, tax_id_enc, bank_account_enc, verification_status) VALUES (?,?,?,?,?)",
		h.ID, h.BusinessName, taxEnc, bankEnc, h.Status); err != nil {
		return model.Profile{}, err
	}
	link, err := insertLink(ctx, tx, accountID, model.KindHost, h.ID)
	if err != nil {
		return model.Profile{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Profile{}, err
	}
	h.TaxID, h.BankAccount = "", "" // never hand plaintext back on create
	link.Host = &h
	return link, nil
}

// insertLink writes the polymorphic link row. MySQL error 1062 on the
// account_id unique key becomes ErrProfileExists.
func insertLink(ctx context.Context, tx *sql.Tx, accountID string, kind model.ProfileKind, variantID string) (model.Profile, error) {
	p := model.Profile{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Kind:      kind,
		VariantID: variantID,
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO profiles (id, account_id, profile_kind, profile_id) VALUES (?,?,?,?)",
		p.ID, p.AccountID, p.Kind, p.VariantID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Profile{}, ErrProfileExists
		}
		return model.Profile{}, err
	}
	return p, nil
}

// GetByAccount resolves the link row for an account and loads the matching
// variant by discriminator. Sensitive host fields are left empty; use
// ReviewHost for the admin read.
func (r *ProfileRepo) GetByAccount(ctx context.Context, accountID string) (model.Profile, error) {
	var p model.Profile
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, account_id, profile_kind, profile_id, created_at FROM profiles WHERE account_id=? LIMIT 1",
		accountID).Scan(&p.ID, &p.AccountID, &p.Kind, &p.VariantID, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Profile{}, ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	switch p.Kind {
	case model.KindGuest:
		g := model.GuestProfile{ID: p.VariantID}
		var pm string
		err = r.DB.QueryRowContext(ctx,
			"SELECT language, payment_methods FROM guest_profiles WHERE id=? LIMIT 1",
			p.VariantID).Scan(&g.Language, &pm)
		if err == nil && pm != "" {
			_ = json.Unmarshal([]byte(pm), &g.PaymentMethods)
		}
		p.Guest = &g
	case model.KindHost:
		h := model.HostProfile{ID: p.VariantID}
		err = r.DB.QueryRowContext(ctx,
			"SELECT business_name, verification_status FROM host_profiles WHERE id=? LIMIT 1",
			p.VariantID).Scan(&h.BusinessName, &h.Status)
		p.Host = &h
	}
	if err == sql.ErrNoRows {
		// Link without a variant row means the registry is corrupt; surface
		// it as absence rather than a half-loaded profile.
		return model.Profile{}, ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// GetByID resolves a link row by its own id. The variant is not loaded;
// callers that need it go through GetByAccount or ReviewHost.
func (r *ProfileRepo) GetByID(ctx context.Context, profileID string) (model.Profile, error) {
	var p model.Profile
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, account_id, profile_kind, profile_id, created_at FROM profiles WHERE id=? LIMIT 1",
		profileID).Scan(&p.ID, &p.AccountID, &p.Kind, &p.VariantID, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Profile{}, ErrNotFound
	}
	return p, err
}

// ReviewHost loads a host variant with tax id and bank account decrypted.
// Only the admin verification flow may call this; handlers gate it on the
// settings.update permission.
func (r *ProfileRepo) ReviewHost(ctx context.Context, profileID string) (model.HostProfile, error) {
	var (
		h        model.HostProfile
		taxEnc   string
		bankEnc  string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT hp.id, hp.business_name, hp.tax_id_enc, hp.bank_account_enc, hp.verification_status FROM host_profiles hp JOIN profiles p ON p.profile_id = hp.id WHERE p.id=? AND p.profile_kind='host' LIMIT 1",
		profileID).Scan(&h.ID, &h.BusinessName, &taxEnc, &bankEnc, &h.Status)
	if err == sql.ErrNoRows {
		return model.HostProfile{}, ErrNotFound
	}
	if err != nil {
		return model.HostProfile{}, err
	}
	if h.TaxID, err = r.Box.Open(taxEnc); err != nil {
		return model.HostProfile{}, err
	}
	if h.BankAccount, err = r.Box.Open(bankEnc); err != nil {
		return model.HostProfile{}, err
	}
	return h, nil
}

// UpdateHostVerification moves a host profile to the given review state.
// Any state is reachable from any other; the profile id addresses the link
// row, not the variant row.
func (r *ProfileRepo) UpdateHostVerification(ctx context.Context, profileID string, status model.HostStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE host_profiles hp JOIN profiles p ON p.profile_id = hp.id SET hp.verification_status=? WHERE p.id=? AND p.profile_kind='host'",
		status, profileID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// mysql reports zero affected rows both for a missing profile and
		// for a no-op transition to the current state; tell them apart.
		var one int
		err = r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM profiles WHERE id=? AND profile_kind='host' LIMIT 1",
			profileID).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}
