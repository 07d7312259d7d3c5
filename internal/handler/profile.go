package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-backend/internal/middleware"
	"github.com/roamnest/roamnest-backend/internal/model"
	"github.com/roamnest/roamnest-backend/internal/repository"
)

// ProfileHandler exposes the profile registry: creating the single guest
// or host profile an account may own, reading it back, and the admin
// verification review of host profiles.
type ProfileHandler struct {
	Profiles ProfileStore
	Roles    RoleStore
}

func NewProfileHandler(p ProfileStore, r RoleStore) *ProfileHandler {
	return &ProfileHandler{Profiles: p, Roles: r}
}

type createProfileReq struct {
	Kind           string   `json:"kind"` // guest | host
	Language       string   `json:"language"`
	PaymentMethods []string `json:"payment_methods"`
	BusinessName   string   `json:"business_name"`
	TaxID          string   `json:"tax_id"`
	BankAccount    string   `json:"bank_account"`
}

type hostStatusReq struct {
	Status string `json:"status"` // pending | verified | rejected
}

// Create attaches a profile variant to the calling account. At most one
// profile may ever exist per account; a second attempt, concurrent or not,
// is answered with 409.
func (h *ProfileHandler) Create(c echo.Context) error {
	var req createProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	accountID := middleware.AccountID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		p   model.Profile
		err error
	)
	switch model.ProfileKind(strings.ToLower(strings.TrimSpace(req.Kind))) {
	case model.KindGuest:
		p, err = h.Profiles.CreateGuest(ctx, accountID, model.GuestProfile{
			Language:       strings.ToLower(strings.TrimSpace(req.Language)),
			PaymentMethods: req.PaymentMethods,
		})
	case model.KindHost:
		if strings.TrimSpace(req.BusinessName) == "" {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": map[string]string{"business_name": "required"}})
		}
		p, err = h.Profiles.CreateHost(ctx, accountID, model.HostProfile{
			BusinessName: strings.TrimSpace(req.BusinessName),
			TaxID:        strings.TrimSpace(req.TaxID),
			BankAccount:  strings.TrimSpace(req.BankAccount),
		})
	default:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": map[string]string{"kind": "must be guest or host"}})
	}
	if err != nil {
		if err == repository.ErrProfileExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "profile already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Get returns the calling account's profile with its variant resolved.
func (h *ProfileHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.GetByAccount(ctx, middleware.AccountID(c))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no profile"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// ReviewHost is the one read that returns the sensitive host fields in
// plaintext. The route is gated on the settings.update permission; the
// response is built by hand so the json:"-" tags on the model cannot be
// bypassed elsewhere.
func (h *ProfileHandler) ReviewHost(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	host, err := h.Profiles.ReviewHost(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":            host.ID,
		"business_name": host.BusinessName,
		"tax_id":        host.TaxID,
		"bank_account":  host.BankAccount,
		"status":        host.Status,
	})
}

// UpdateHostStatus moves a host profile between the three review states.
// Verifying a host also grants the host role, which is what unlocks the
// host-only permissions on the next issued token.
func (h *ProfileHandler) UpdateHostStatus(c echo.Context) error {
	var req hostStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.HostStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !model.ValidHostStatus(status) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": map[string]string{"status": "must be pending, verified or rejected"}})
	}
	profileID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Profiles.UpdateHostVerification(ctx, profileID, status); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	if status == model.StatusVerified {
		// The role grant is part of verifying a host: a verified host
		// without the host role cannot manage listings. Both writes are
		// idempotent, so on failure the admin re-issues the PATCH.
		p, err := h.Profiles.GetByID(ctx, profileID)
		if err == nil {
			err = h.Roles.AssignRole(ctx, p.AccountID, model.RoleHost)
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant host role failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": profileID, "status": status})
}
