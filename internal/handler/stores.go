package handler

import (
	"context"
	"time"

	"github.com/roamnest/roamnest-backend/internal/model"
	"github.com/roamnest/roamnest-backend/internal/queue"
)

// The handlers accept narrow store interfaces rather than the concrete
// repository types so tests can stand in fakes without a database. The
// production wiring in cmd/ passes the MySQL- and Redis-backed
// repositories, which satisfy these interfaces.

// AccountStore is the credential store contract.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) error
	FindByIdentifier(ctx context.Context, identifier string) (model.Account, error)
	GetByID(ctx context.Context, id string) (model.Account, error)
	MarkVerified(ctx context.Context, accountID string, ch model.VerifyChannel) error
	TouchLastSeen(ctx context.Context, accountID string) error
}

// TokenStore is the refresh token state machine contract.
type TokenStore interface {
	Store(ctx context.Context, accountID, familyID, tokenHash string, exp time.Time) (model.RefreshToken, error)
	Consume(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	RevokeFamily(ctx context.Context, familyID string) error
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForAccount(ctx context.Context, accountID string) error
}

// RoleStore is the role/permission authority contract.
type RoleStore interface {
	AssignRole(ctx context.Context, accountID, roleName string) error
	RolesFor(ctx context.Context, accountID string) ([]string, error)
	PermissionsFor(ctx context.Context, accountID string) (map[string]struct{}, error)
	SyncPermissions(ctx context.Context, roleName string, perms []string) error
}

// ProfileStore is the profile registry contract.
type ProfileStore interface {
	CreateGuest(ctx context.Context, accountID string, g model.GuestProfile) (model.Profile, error)
	CreateHost(ctx context.Context, accountID string, h model.HostProfile) (model.Profile, error)
	GetByAccount(ctx context.Context, accountID string) (model.Profile, error)
	GetByID(ctx context.Context, profileID string) (model.Profile, error)
	ReviewHost(ctx context.Context, profileID string) (model.HostProfile, error)
	UpdateHostVerification(ctx context.Context, profileID string, status model.HostStatus) error
}

// CodeStore holds single-use, time-bounded verification codes.
type CodeStore interface {
	Issue(ctx context.Context, accountID string, ch model.VerifyChannel) (string, error)
	Take(ctx context.Context, accountID string, ch model.VerifyChannel) (string, error)
}

// EventPublisher is the delivery boundary for out-of-band notifications.
type EventPublisher interface {
	PublishVerificationRequested(ctx context.Context, ev queue.VerificationRequestedEvent) error
	PublishAccountRegistered(ctx context.Context, ev queue.AccountRegisteredEvent) error
}
