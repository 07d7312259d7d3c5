package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountAge(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	birth := time.Date(1990, 8, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 36, Account{BirthDate: &birth}.Age(now), "birthday today counts")

	later := time.Date(1990, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 35, Account{BirthDate: &later}.Age(now), "birthday tomorrow does not")

	assert.Equal(t, 0, Account{}.Age(now), "no birth date on record")
}

func TestAccountNeverSerializesPasswordHash(t *testing.T) {
	acc := Account{ID: "acc-1", Email: "a@b.com", PasswordHash: "$2a$10$secret"}
	b, err := json.Marshal(acc)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password")
}

func TestAccountVerifiedPerChannel(t *testing.T) {
	now := time.Now()
	acc := Account{EmailVerifiedAt: &now}
	assert.True(t, acc.Verified(ChannelEmail))
	assert.False(t, acc.Verified(ChannelPhone))
	assert.False(t, acc.Verified(VerifyChannel("fax")))
}

func TestPermissionUnion(t *testing.T) {
	got := PermissionUnion(DefaultRolePermissions, []string{RoleGuest, RoleHost})
	assert.Contains(t, got, PermBookingsCreate)
	assert.Contains(t, got, PermStaysManageOwn)
	assert.NotContains(t, got, PermRolesManage)

	assert.Empty(t, PermissionUnion(DefaultRolePermissions, []string{"unknown"}))
	assert.Empty(t, PermissionUnion(DefaultRolePermissions, nil))
}

func TestRefreshTokenLive(t *testing.T) {
	now := time.Now()
	fresh := RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, fresh.Live(now))

	expired := RefreshToken{ExpiresAt: now.Add(-time.Second)}
	assert.False(t, expired.Live(now))

	consumed := fresh
	consumed.ConsumedAt = &now
	assert.False(t, consumed.Live(now))

	revoked := fresh
	revoked.RevokedAt = &now
	assert.False(t, revoked.Live(now))
}

func TestProfileKindAndHostStatus(t *testing.T) {
	assert.True(t, ValidHostStatus(StatusPending))
	assert.True(t, ValidHostStatus(StatusVerified))
	assert.True(t, ValidHostStatus(StatusRejected))
	assert.False(t, ValidHostStatus(HostStatus("approved")))
}
