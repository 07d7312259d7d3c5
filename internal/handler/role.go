package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-backend/internal/repository"
)

// RoleHandler exposes the administrative side of the role/permission
// authority. These endpoints never sit on the request hot path; the hot
// path only ever reads the permission union.
type RoleHandler struct {
	Roles RoleStore
}

func NewRoleHandler(r RoleStore) *RoleHandler { return &RoleHandler{Roles: r} }

type assignRoleReq struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
}

type syncPermissionsReq struct {
	Permissions []string `json:"permissions"`
}

// Assign attaches a named role to an account. Idempotent.
func (h *RoleHandler) Assign(c echo.Context) error {
	var req assignRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.AccountID = strings.TrimSpace(req.AccountID)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if req.AccountID == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account_id/role required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Roles.AssignRole(ctx, req.AccountID, req.Role); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown role"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign role failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SyncPermissions replaces a role's permission set. The next permission
// lookup anywhere in the service observes the new set.
func (h *RoleHandler) SyncPermissions(c echo.Context) error {
	var req syncPermissionsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	roleName := strings.ToLower(strings.TrimSpace(c.Param("name")))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Roles.SyncPermissions(ctx, roleName, req.Permissions); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown role"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sync permissions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"role": roleName, "permissions": req.Permissions})
}
