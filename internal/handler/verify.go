package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-backend/internal/config"
	"github.com/roamnest/roamnest-backend/internal/middleware"
	"github.com/roamnest/roamnest-backend/internal/model"
	"github.com/roamnest/roamnest-backend/internal/queue"
	"github.com/roamnest/roamnest-backend/internal/repository"
)

// VerifyHandler drives the email/phone verification flow: issue a
// single-use time-bounded code, hand it to the delivery boundary, and mark
// the channel verified when the code comes back. Both endpoints require a
// valid access token; the code is bound to the calling account, never to
// the destination alone.
type VerifyHandler struct {
	Cfg      config.Config
	Accounts AccountStore
	Codes    CodeStore
	Events   EventPublisher
}

func NewVerifyHandler(cfg config.Config, a AccountStore, c CodeStore, ev EventPublisher) *VerifyHandler {
	return &VerifyHandler{Cfg: cfg, Accounts: a, Codes: c, Events: ev}
}

type sendCodeReq struct {
	Channel string `json:"channel"` // email | phone
}

type verifyCodeReq struct {
	Code string `json:"code"`
}

// SendCode issues a fresh verification code for the requested channel and
// publishes it to the notification queue. Re-requesting replaces the
// previous code.
func (h *VerifyHandler) SendCode(c echo.Context) error {
	var req sendCodeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ch := model.VerifyChannel(strings.ToLower(strings.TrimSpace(req.Channel)))
	if ch != model.ChannelEmail && ch != model.ChannelPhone {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": map[string]string{"channel": "must be email or phone"}})
	}
	accountID := middleware.AccountID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := h.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load account failed"})
	}
	if acc.Verified(ch) {
		// Idempotent from the caller's view: nothing left to verify.
		return c.NoContent(http.StatusNoContent)
	}

	code, err := h.Codes.Issue(ctx, accountID, ch)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "verification temporarily unavailable"})
	}
	dest := acc.Email
	if ch == model.ChannelPhone {
		dest = acc.Phone
	}
	now := time.Now().UTC()
	if err := h.Events.PublishVerificationRequested(ctx, queue.VerificationRequestedEvent{
		AccountID:   accountID,
		Channel:     string(ch),
		Destination: dest,
		Code:        code,
		ExpiresAt:   now.Add(time.Duration(h.Cfg.VerifyTTLMin) * time.Minute).Format(time.RFC3339),
		RequestedAt: now.Format(time.RFC3339),
	}); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "verification temporarily unavailable"})
	}
	return c.NoContent(http.StatusAccepted)
}

// VerifyEmail checks a code issued for the email channel.
func (h *VerifyHandler) VerifyEmail(c echo.Context) error {
	return h.verify(c, model.ChannelEmail)
}

// VerifyPhone checks a code issued for the phone channel.
func (h *VerifyHandler) VerifyPhone(c echo.Context) error {
	return h.verify(c, model.ChannelPhone)
}

func (h *VerifyHandler) verify(c echo.Context, ch model.VerifyChannel) error {
	var req verifyCodeReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}
	accountID := middleware.AccountID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stored, err := h.Codes.Take(ctx, accountID, ch)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "code expired or not requested"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "verification temporarily unavailable"})
	}
	// Take already deleted the code, so a wrong guess burns it and the
	// client must request a new one. One guess per issued code.
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(req.Code))) != 1 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid code"})
	}
	if err := h.Accounts.MarkVerified(ctx, accountID, ch); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark verified failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
