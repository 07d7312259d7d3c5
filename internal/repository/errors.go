// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors. For example, ErrProfileExists signals that
// the one-profile-per-account invariant blocked an insert, while
// ErrTokenReused marks an already-consumed refresh token being played
// again, which the handler treats as a compromise of the whole family.
package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.
// Handlers translate this into an HTTP 404 (or a merged 401 on the
// login path, where absence must be indistinguishable from a bad
// password).
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert would duplicate an email.
var ErrEmailExists = errors.New("email already exists")

// ErrPhoneExists is returned when an insert would duplicate a phone number.
var ErrPhoneExists = errors.New("phone already exists")

// ErrProfileExists is returned when an account already owns a profile.
// The unique key on profiles.account_id raises this even under
// concurrent creation attempts.
var ErrProfileExists = errors.New("profile already exists")

// ErrForbidden is returned when the caller lacks the permission an
// operation requires. Handlers translate this into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed due to
// conflicting state. Handlers translate this into an HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrTokenReused is returned when a refresh token that was already
// consumed is presented again. The caller must revoke the token family
// and reject the exchange.
var ErrTokenReused = errors.New("refresh token reused")
