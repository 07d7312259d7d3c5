package handler

// In-memory fakes for the store interfaces. They mirror the invariants the
// real schema enforces (unique email/phone, unique profile per account,
// atomic refresh token consumption) so handler tests exercise the same
// failure paths the MySQL-backed repositories produce.

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roamnest/roamnest-backend/internal/model"
	"github.com/roamnest/roamnest-backend/internal/queue"
	"github.com/roamnest/roamnest-backend/internal/repository"
)

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[string]model.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[string]model.Account{}}
}

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	for _, ex := range f.byID {
		if ex.Email == a.Email {
			return repository.ErrEmailExists
		}
		if ex.Phone == a.Phone {
			return repository.ErrPhoneExists
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAccounts) FindByIdentifier(_ context.Context, identifier string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identifier = strings.TrimSpace(identifier)
	for _, a := range f.byID {
		if a.Email == strings.ToLower(identifier) || a.Phone == identifier {
			return a, nil
		}
	}
	return model.Account{}, repository.ErrNotFound
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) MarkVerified(_ context.Context, accountID string, ch model.VerifyChannel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	switch ch {
	case model.ChannelEmail:
		if a.EmailVerifiedAt == nil {
			a.EmailVerifiedAt = &now
		}
	case model.ChannelPhone:
		if a.PhoneVerifiedAt == nil {
			a.PhoneVerifiedAt = &now
		}
	}
	f.byID[accountID] = a
	return nil
}

func (f *fakeAccounts) TouchLastSeen(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byID[accountID]; ok {
		now := time.Now().UTC()
		a.LastSeenAt = &now
		f.byID[accountID] = a
	}
	return nil
}

type fakeTokens struct {
	mu     sync.Mutex
	byHash map[string]*model.RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byHash: map[string]*model.RefreshToken{}}
}

func (f *fakeTokens) Store(_ context.Context, accountID, familyID, tokenHash string, exp time.Time) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if familyID == "" {
		familyID = uuid.NewString()
	}
	t := &model.RefreshToken{
		ID:        uuid.NewString(),
		AccountID: accountID,
		FamilyID:  familyID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	f.byHash[tokenHash] = t
	return *t, nil
}

func (f *fakeTokens) Consume(_ context.Context, tokenHash string) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byHash[tokenHash]
	if !ok {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	now := time.Now().UTC()
	if t.RevokedAt != nil || now.After(t.ExpiresAt) {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	if t.ConsumedAt != nil {
		return *t, repository.ErrTokenReused
	}
	t.ConsumedAt = &now
	return *t, nil
}

func (f *fakeTokens) RevokeFamily(_ context.Context, familyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for _, t := range f.byHash {
		if t.FamilyID == familyID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokens) Revoke(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byHash[tokenHash]
	if !ok || t.ConsumedAt != nil || t.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	t.RevokedAt = &now
	return nil
}

func (f *fakeTokens) RevokeAllForAccount(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for _, t := range f.byHash {
		if t.AccountID == accountID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

// live reports how many tokens in the family are still exchangeable.
func (f *fakeTokens) live(familyID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	now := time.Now().UTC()
	for _, t := range f.byHash {
		if t.FamilyID == familyID && t.Live(now) {
			n++
		}
	}
	return n
}

type fakeRoles struct {
	mu         sync.Mutex
	assigned   map[string][]string
	rolePerms  map[string][]string
	failAssign error // returned by AssignRole when set
}

func newFakeRoles() *fakeRoles {
	perms := make(map[string][]string, len(model.DefaultRolePermissions))
	for k, v := range model.DefaultRolePermissions {
		perms[k] = append([]string(nil), v...)
	}
	return &fakeRoles{assigned: map[string][]string{}, rolePerms: perms}
}

func (f *fakeRoles) AssignRole(_ context.Context, accountID, roleName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAssign != nil {
		return f.failAssign
	}
	if _, ok := f.rolePerms[roleName]; !ok {
		return repository.ErrNotFound
	}
	for _, r := range f.assigned[accountID] {
		if r == roleName {
			return nil
		}
	}
	f.assigned[accountID] = append(f.assigned[accountID], roleName)
	return nil
}

func (f *fakeRoles) RolesFor(_ context.Context, accountID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.assigned[accountID]...), nil
}

func (f *fakeRoles) PermissionsFor(_ context.Context, accountID string) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.PermissionUnion(f.rolePerms, f.assigned[accountID]), nil
}

func (f *fakeRoles) SyncPermissions(_ context.Context, roleName string, perms []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rolePerms[roleName]; !ok {
		return repository.ErrNotFound
	}
	f.rolePerms[roleName] = append([]string(nil), perms...)
	return nil
}

type fakeProfiles struct {
	mu        sync.Mutex
	byAccount map[string]model.Profile
	byID      map[string]model.Profile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byAccount: map[string]model.Profile{}, byID: map[string]model.Profile{}}
}

func (f *fakeProfiles) create(accountID string, kind model.ProfileKind) (model.Profile, error) {
	if _, ok := f.byAccount[accountID]; ok {
		return model.Profile{}, repository.ErrProfileExists
	}
	p := model.Profile{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Kind:      kind,
		VariantID: uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	f.byAccount[accountID] = p
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeProfiles) CreateGuest(_ context.Context, accountID string, g model.GuestProfile) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.create(accountID, model.KindGuest)
	if err != nil {
		return model.Profile{}, err
	}
	if g.Language == "" {
		g.Language = "en"
	}
	g.ID = p.VariantID
	p.Guest = &g
	f.byAccount[accountID] = p
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeProfiles) CreateHost(_ context.Context, accountID string, h model.HostProfile) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.create(accountID, model.KindHost)
	if err != nil {
		return model.Profile{}, err
	}
	h.ID = p.VariantID
	h.Status = model.StatusPending
	p.Host = &h
	f.byAccount[accountID] = p
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeProfiles) GetByAccount(_ context.Context, accountID string) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byAccount[accountID]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) GetByID(_ context.Context, profileID string) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[profileID]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) ReviewHost(_ context.Context, profileID string) (model.HostProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[profileID]
	if !ok || p.Kind != model.KindHost {
		return model.HostProfile{}, repository.ErrNotFound
	}
	return *p.Host, nil
}

func (f *fakeProfiles) UpdateHostVerification(_ context.Context, profileID string, status model.HostStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[profileID]
	if !ok || p.Kind != model.KindHost {
		return repository.ErrNotFound
	}
	p.Host.Status = status
	return nil
}

type fakeCodes struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeCodes() *fakeCodes { return &fakeCodes{m: map[string]string{}} }

func (f *fakeCodes) key(accountID string, ch model.VerifyChannel) string {
	return string(ch) + ":" + accountID
}

func (f *fakeCodes) Issue(_ context.Context, accountID string, ch model.VerifyChannel) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code := "481516"
	f.m[f.key(accountID, ch)] = code
	return code, nil
}

func (f *fakeCodes) Take(_ context.Context, accountID string, ch model.VerifyChannel) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.m[f.key(accountID, ch)]
	if !ok {
		return "", repository.ErrNotFound
	}
	delete(f.m, f.key(accountID, ch))
	return code, nil
}

type fakeEvents struct {
	mu            sync.Mutex
	verifications []queue.VerificationRequestedEvent
	registered    []queue.AccountRegisteredEvent
}

func (f *fakeEvents) PublishVerificationRequested(_ context.Context, ev queue.VerificationRequestedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifications = append(f.verifications, ev)
	return nil
}

func (f *fakeEvents) PublishAccountRegistered(_ context.Context, ev queue.AccountRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, ev)
	return nil
}
