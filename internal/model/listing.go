package model

import "time"

// Stay is the minimal listing record the stays service manages. The auth
// subsystem only cares that creating one is a host-only operation; the
// full booking domain lives outside this repository.
type Stay struct {
    ID                string    `json:"id"`
    HostAccountID     string    `json:"host_account_id"`
    Title             string    `json:"title"`
    City              string    `json:"city"`
    NightlyPriceCents uint32    `json:"nightly_price_cents"`
    CreatedAt         time.Time `json:"created_at"`
}

// Vehicle is the minimal listing record the vehicles service manages.
type Vehicle struct {
    ID              string    `json:"id"`
    HostAccountID   string    `json:"host_account_id"`
    Make            string    `json:"make"`
    Model           string    `json:"model"`
    DailyPriceCents uint32    `json:"daily_price_cents"`
    CreatedAt       time.Time `json:"created_at"`
}
