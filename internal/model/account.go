package model

import "time"

// VerifyChannel names an independently verifiable contact channel on an
// account.  Email and phone verification never affect each other.
type VerifyChannel string

const (
    ChannelEmail VerifyChannel = "email"
    ChannelPhone VerifyChannel = "phone"
)

// Account is the single identity record behind authentication, independent
// of which profile kind (guest or host) the account later takes on.  Each
// field maps to a column in the `accounts` table.  The password hash is
// tagged json:"-" so it can never leak through a serialized response; age
// is derived from the birth date on demand and is never stored.
//
// Fields:
//  ID              – opaque UUID primary key.
//  FirstName       – given name.
//  LastName        – family name.
//  Email           – unique, lowercased email address.
//  Phone           – unique phone number in E.164 form.
//  PasswordHash    – bcrypt hash; hidden from all serialized output.
//  BirthDate       – date of birth; the source of truth for age.
//  AvatarURL       – optional avatar reference.
//  EmailVerifiedAt – when the email was verified (nil = unverified).
//  PhoneVerifiedAt – when the phone was verified (nil = unverified).
//  LastSeenAt      – updated on every successful login.
type Account struct {
    ID              string     `json:"id"`
    FirstName       string     `json:"first_name"`
    LastName        string     `json:"last_name"`
    Email           string     `json:"email"`
    Phone           string     `json:"phone"`
    PasswordHash    string     `json:"-"`
    BirthDate       *time.Time `json:"birth_date,omitempty"`
    AvatarURL       string     `json:"avatar_url,omitempty"`
    EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
    PhoneVerifiedAt *time.Time `json:"phone_verified_at,omitempty"`
    LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
    CreatedAt       time.Time  `json:"created_at"`
    UpdatedAt       time.Time  `json:"updated_at"`
}

// Age returns the account holder's age in whole years at the given
// instant, or 0 when no birth date is on record. It is a computed view
// over BirthDate, never persisted.
func (a Account) Age(now time.Time) int {
    if a.BirthDate == nil {
        return 0
    }
    years := now.Year() - a.BirthDate.Year()
    anniversary := a.BirthDate.AddDate(years, 0, 0)
    if anniversary.After(now) {
        years--
    }
    return years
}

// Verified reports whether the given channel has been confirmed.
func (a Account) Verified(ch VerifyChannel) bool {
    switch ch {
    case ChannelEmail:
        return a.EmailVerifiedAt != nil
    case ChannelPhone:
        return a.PhoneVerifiedAt != nil
    }
    return false
}
