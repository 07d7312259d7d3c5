package model

import "time"

// RefreshToken models a row in the `refresh_tokens` table.  The raw token
// is never stored; only its SHA‑256 hex digest.  FamilyID groups every
// rotation descended from one login so that detected reuse can revoke the
// entire chain at once.
//
// Lifecycle: a token is valid until it is consumed (successful rotation),
// revoked (logout or family revocation), or expired.  ConsumedAt and
// RevokedAt are nullable; nil means the transition has not happened.
type RefreshToken struct {
    ID         string
    AccountID  string
    FamilyID   string
    TokenHash  string
    ExpiresAt  time.Time
    ConsumedAt *time.Time
    RevokedAt  *time.Time
    CreatedAt  time.Time
}

// Live reports whether the token can still be exchanged at the given
// instant: not consumed, not revoked, not expired.
func (t RefreshToken) Live(now time.Time) bool {
    return t.ConsumedAt == nil && t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
