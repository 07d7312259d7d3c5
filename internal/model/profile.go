package model

import "time"

// ProfileKind discriminates the profile variant an account owns.  Exactly
// one variant exists per profiled account, enforced by a unique key on
// profiles.account_id.
type ProfileKind string

const (
    KindGuest ProfileKind = "guest"
    KindHost  ProfileKind = "host"
)

// HostStatus is the manual review state of a host profile.  Any state is
// reachable from any other; there is no workflow beyond the three values.
// Host-only operations (listing a stay or a vehicle) require StatusVerified.
type HostStatus string

const (
    StatusPending  HostStatus = "pending"
    StatusVerified HostStatus = "verified"
    StatusRejected HostStatus = "rejected"
)

// Profile is the polymorphic link between an account and its variant
// record.  Kind selects which of Guest/Host is populated; the other is nil.
// The variant row id is kept alongside so repositories can address the
// variant table directly.
type Profile struct {
    ID        string      `json:"id"`
    AccountID string      `json:"account_id"`
    Kind      ProfileKind `json:"kind"`
    VariantID string      `json:"-"`
    Guest     *GuestProfile `json:"guest,omitempty"`
    Host      *HostProfile  `json:"host,omitempty"`
    CreatedAt time.Time   `json:"created_at"`
}

// GuestProfile carries traveler-side attributes.  Payment methods are
// opaque references into an external vault, never raw card data.
type GuestProfile struct {
    ID             string   `json:"id"`
    Language       string   `json:"language"`
    PaymentMethods []string `json:"payment_methods,omitempty"`
}

// HostProfile carries the business attributes a host registers with.
// TaxID and BankAccount are encrypted at rest; repositories return them
// empty unless the read is part of the admin verification review, and the
// json:"-" tags keep even a decrypted copy out of serialized responses.
type HostProfile struct {
    ID           string     `json:"id"`
    BusinessName string     `json:"business_name"`
    TaxID        string     `json:"-"`
    BankAccount  string     `json:"-"`
    Status       HostStatus `json:"status"`
}

// ValidHostStatus reports whether s is one of the three review states.
func ValidHostStatus(s HostStatus) bool {
    switch s {
    case StatusPending, StatusVerified, StatusRejected:
        return true
    }
    return false
}
