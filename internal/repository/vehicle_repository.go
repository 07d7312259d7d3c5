package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/roamnest/roamnest-backend/internal/model"
)

// VehicleRepo backs the vehicles service's listing endpoints.
type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

// Create inserts a vehicle listing owned by the given host account.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	v.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO vehicles (id, host_account_id, make, model, daily_price_cents) VALUES (?,?,?,?,?)",
		v.ID, v.HostAccountID, v.Make, v.Model, v.DailyPriceCents)
	return err
}

// ListPublic returns the newest vehicle listings for unauthenticated browsing.
func (r *VehicleRepo) ListPublic(ctx context.Context, limit int) ([]model.Vehicle, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, host_account_id, make, model, daily_price_cents, created_at FROM vehicles ORDER BY created_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.HostAccountID, &v.Make, &v.Model, &v.DailyPriceCents, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
