package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/roamnest/roamnest-backend/internal/model"
)

// StayRepo backs the stays service's listing endpoints. The service trusts
// the identity the gateway middleware resolved; host_account_id always
// comes from verified token claims, never from the request body.
type StayRepo struct{ DB *sql.DB }

func NewStayRepo(db *sql.DB) *StayRepo { return &StayRepo{DB: db} }

// Create inserts a listing owned by the given host account.
func (r *StayRepo) Create(ctx context.Context, s *model.Stay) error {
	s.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO stays (id, host_account_id, title, city, nightly_price_cents) VALUES (?,?,?,?,?)",
		s.ID, s.HostAccountID, s.Title, s.City, s.NightlyPriceCents)
	return err
}

// ListPublic returns the newest listings for unauthenticated browsing.
func (r *StayRepo) ListPublic(ctx context.Context, limit int) ([]model.Stay, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, host_account_id, title, city, nightly_price_cents, created_at FROM stays ORDER BY created_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStays(rows)
}

// ListByHost returns the listings a host owns.
func (r *StayRepo) ListByHost(ctx context.Context, hostAccountID string) ([]model.Stay, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, host_account_id, title, city, nightly_price_cents, created_at FROM stays WHERE host_account_id=? ORDER BY created_at DESC",
		hostAccountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStays(rows)
}

func scanStays(rows *sql.Rows) ([]model.Stay, error) {
	var out []model.Stay
	for rows.Next() {
		var s model.Stay
		if err := rows.Scan(&s.ID, &s.HostAccountID, &s.Title, &s.City, &s.NightlyPriceCents, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
