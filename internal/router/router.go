package router // package router defines how HTTP routes are registered for each service

import (
	"context"
	"time"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/roamnest/roamnest-backend/internal/handler"    // import the handlers that implement business logic
	"github.com/roamnest/roamnest-backend/internal/middleware" // import middleware for token verification and permissions
	"github.com/roamnest/roamnest-backend/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check,
// which every service of the platform serves at the same path.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the central auth service: the token issuer and
// refresh cycle under /v1/auth, the profile registry and role authority
// under /v1, and the admin surface under /v1/admin.  The limiter guards
// the endpoints an attacker can hammer anonymously or cheaply.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler,
	r *handler.RoleHandler, v *handler.VerifyHandler, limiter echo.MiddlewareFunc) {

	secret := a.Cfg.JWTSecret

	// Unauthenticated session operations.  Register and login create
	// sessions; refresh and logout trade on possession of a refresh token
	// rather than on a verified bearer.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login, limiter)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	// Everything below runs behind the same token verification the
	// downstream services use.  Handlers read the caller's identity from
	// the request context and from nowhere else.
	auth := e.Group("/v1")
	auth.Use(middleware.Authenticate(secret))

	auth.GET("/me", a.Me)

	auth.POST("/auth/send-code", v.SendCode, limiter)
	auth.POST("/auth/verify-email", v.VerifyEmail)
	auth.POST("/auth/verify-phone", v.VerifyPhone)

	auth.POST("/profile", p.Create)
	auth.GET("/profile", p.Get)

	// Admin surface.  Permissions are checked against the live role
	// store, so a permission revoked mid-session takes effect on the
	// next request even while the token's role claims are stale.
	perms := authorityPermissions(a.Roles)
	admin := auth.Group("/admin")
	hostReview := middleware.RequirePermission(model.PermSettingsUpdate, perms)
	admin.GET("/host-profiles/:id", p.ReviewHost, hostReview)
	admin.PATCH("/host-profiles/:id/status", p.UpdateHostStatus, hostReview)

	roleManage := middleware.RequirePermission(model.PermRolesManage, perms)
	admin.POST("/roles/assign", r.Assign, roleManage)
	admin.PUT("/roles/:name/permissions", r.SyncPermissions, roleManage)
}

// RegisterStays wires the downstream stays service.  Browse stays public;
// managing listings requires a verified token whose roles expand to the
// properties.manage_own permission.  The service holds only the shared
// verification secret and never checks credentials itself.
func RegisterStays(e *echo.Echo, h *handler.StayHandler, secret string) {
	e.GET("/v1/stays", h.ListPublic)

	host := e.Group("/v1")
	host.Use(middleware.Authenticate(secret))
	host.Use(middleware.RequirePermission(model.PermStaysManageOwn,
		middleware.ClaimsPermissions(model.DefaultRolePermissions)))
	host.POST("/stays", h.Create)
	host.GET("/host/stays", h.ListMine)
}

// RegisterVehicles wires the downstream vehicles service on the same
// gateway contract as stays.
func RegisterVehicles(e *echo.Echo, h *handler.VehicleHandler, secret string) {
	e.GET("/v1/vehicles", h.ListPublic)

	host := e.Group("/v1")
	host.Use(middleware.Authenticate(secret))
	host.Use(middleware.RequirePermission(model.PermVehiclesManage,
		middleware.ClaimsPermissions(model.DefaultRolePermissions)))
	host.POST("/vehicles", h.Create)
}

// authorityPermissions adapts the role store into a PermissionSource with
// a bounded lookup per request.
func authorityPermissions(roles handler.RoleStore) middleware.PermissionSource {
	return func(c echo.Context) (map[string]struct{}, error) {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		return roles.PermissionsFor(ctx, middleware.AccountID(c))
	}
}
