// Package queue defines message payloads exchanged over the message broker.
package queue

// VerificationRequestedEvent is published when an account requests a
// verification code for its email or phone. The actual delivery (SMS or
// email provider) is an external consumer of this queue; the auth service
// only guarantees the code exists, is single-use and time-bounded.
type VerificationRequestedEvent struct {
    AccountID   string `json:"account_id"`
    Channel     string `json:"channel"` // "email" or "phone"
    Destination string `json:"destination"`
    Code        string `json:"code"`
    ExpiresAt   string `json:"expires_at"`
    RequestedAt string `json:"requested_at"`
}

// AccountRegisteredEvent is published after a successful registration so
// downstream systems can provision without polling the auth database.
type AccountRegisteredEvent struct {
    AccountID    string `json:"account_id"`
    Email        string `json:"email"`
    RegisteredAt string `json:"registered_at"`
}
