package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamnest/roamnest-backend/internal/model"
)

type verifyEnv struct {
	h        *VerifyHandler
	accounts *fakeAccounts
	codes    *fakeCodes
	events   *fakeEvents
}

func newVerifyEnv(t *testing.T) (verifyEnv, string) {
	t.Helper()
	accounts := newFakeAccounts()
	acc := model.Account{Email: "a@x.com", Phone: "+1000", PasswordHash: "x"}
	require.NoError(t, accounts.Create(context.Background(), &acc))
	env := verifyEnv{
		accounts: accounts,
		codes:    newFakeCodes(),
		events:   &fakeEvents{},
	}
	env.h = NewVerifyHandler(testConfig(), accounts, env.codes, env.events)
	return env, acc.ID
}

func TestSendCodePublishesToDeliveryBoundary(t *testing.T) {
	env, accountID := newVerifyEnv(t)

	rec := call(t, env.h.SendCode, `{"channel":"phone"}`, asAccount(accountID))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	require.Len(t, env.events.verifications, 1)
	ev := env.events.verifications[0]
	assert.Equal(t, accountID, ev.AccountID)
	assert.Equal(t, "phone", ev.Channel)
	assert.Equal(t, "+1000", ev.Destination)
	assert.NotEmpty(t, ev.Code)
}

func TestSendCodeRejectsUnknownChannel(t *testing.T) {
	env, accountID := newVerifyEnv(t)
	rec := call(t, env.h.SendCode, `{"channel":"pigeon"}`, asAccount(accountID))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestVerifyPhoneMarksChannelAndBurnsCode(t *testing.T) {
	env, accountID := newVerifyEnv(t)
	code, err := env.codes.Issue(context.Background(), accountID, model.ChannelPhone)
	require.NoError(t, err)

	rec := call(t, env.h.VerifyPhone, fmt.Sprintf(`{"code":%q}`, code), asAccount(accountID))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	acc, err := env.accounts.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	assert.True(t, acc.Verified(model.ChannelPhone))
	assert.False(t, acc.Verified(model.ChannelEmail), "channels verify independently")

	// The code was single-use: replaying it fails.
	rec = call(t, env.h.VerifyPhone, fmt.Sprintf(`{"code":%q}`, code), asAccount(accountID))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestVerifyWrongCodeBurnsIt(t *testing.T) {
	env, accountID := newVerifyEnv(t)
	code, err := env.codes.Issue(context.Background(), accountID, model.ChannelEmail)
	require.NoError(t, err)

	rec := call(t, env.h.VerifyEmail, `{"code":"000000"}`, asAccount(accountID))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// One guess per issued code: even the right code is dead now.
	rec = call(t, env.h.VerifyEmail, fmt.Sprintf(`{"code":%q}`, code), asAccount(accountID))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSendCodeIdempotentWhenAlreadyVerified(t *testing.T) {
	env, accountID := newVerifyEnv(t)
	require.NoError(t, env.accounts.MarkVerified(context.Background(), accountID, model.ChannelEmail))

	rec := call(t, env.h.SendCode, `{"channel":"email"}`, asAccount(accountID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, env.events.verifications)
}
