package handler

import (
    "context"      // provides context with cancellation for DB calls
    "net/http"     // HTTP status codes and primitives
    "net/mail"     // RFC 5322 address parsing for email validation
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls and birth date parsing

    "github.com/labstack/echo/v4"                             // Echo framework for HTTP routing
    passwordvalidator "github.com/wagslane/go-password-validator" // entropy-based password strength check

    "github.com/roamnest/roamnest-backend/internal/config"     // app configuration
    "github.com/roamnest/roamnest-backend/internal/middleware" // verified-identity context keys
    "github.com/roamnest/roamnest-backend/internal/model"
    "github.com/roamnest/roamnest-backend/internal/queue"
    "github.com/roamnest/roamnest-backend/internal/repository" // sentinel errors
    "github.com/roamnest/roamnest-backend/internal/utils"      // hashing, token issuing
)

// AuthHandler bundles dependencies for the token issuer and refresh cycle
// endpoints: register, login, refresh, logout, me.
type AuthHandler struct {
    Cfg      config.Config
    Accounts AccountStore
    Tokens   TokenStore
    Roles    RoleStore
    Codes    CodeStore
    Events   EventPublisher
}

func NewAuthHandler(cfg config.Config, a AccountStore, t TokenStore, r RoleStore, c CodeStore, ev EventPublisher) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Accounts: a, Tokens: t, Roles: r, Codes: c, Events: ev}
}

// ----- DTOs -----

type registerReq struct {
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
    Email     string `json:"email"`
    Phone     string `json:"phone"`
    Password  string `json:"password"`
    BirthDate string `json:"birth_date"` // YYYY-MM-DD
    AvatarURL string `json:"avatar_url"`
}
type loginReq struct {
    Identifier string `json:"identifier"`
    Password   string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPairResp struct {
    AccountID      string    `json:"account_id"`
    AccessToken    string    `json:"access_token"`
    AccessExpires  time.Time `json:"access_expires"`
    RefreshToken   string    `json:"refresh_token"`
    RefreshExpires time.Time `json:"refresh_expires"`
}

// invalid credential responses are byte-identical for unknown identifier
// and wrong password so callers cannot enumerate accounts.
var errInvalidCredentials = echo.Map{"error": "invalid credentials"}

// Register: create the account, assign the default guest role and kick off
// email verification. Tokens are not issued here; the client logs in next.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    fields, birth := validateRegister(&req, h.Cfg.PasswordMinEntropy)
    if len(fields) > 0 {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fields})
    }

    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
    }
    acc := model.Account{
        FirstName:    req.FirstName,
        LastName:     req.LastName,
        Email:        req.Email,
        Phone:        req.Phone,
        PasswordHash: hash,
        BirthDate:    birth,
        AvatarURL:    req.AvatarURL,
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Accounts.Create(ctx, &acc); err != nil {
        switch err {
        case repository.ErrEmailExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        case repository.ErrPhoneExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "phone already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
    }
    if err := h.Roles.AssignRole(ctx, acc.ID, model.RoleGuest); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign role failed"})
    }

    // Email verification is a side channel: generate a single-use,
    // time-bounded code and hand it to the delivery boundary. Failures
    // here never fail the registration; the client can re-request a code.
    now := time.Now().UTC()
    if code, err := h.Codes.Issue(ctx, acc.ID, model.ChannelEmail); err == nil {
        _ = h.Events.PublishVerificationRequested(ctx, queue.VerificationRequestedEvent{
            AccountID:   acc.ID,
            Channel:     string(model.ChannelEmail),
            Destination: acc.Email,
            Code:        code,
            ExpiresAt:   now.Add(time.Duration(h.Cfg.VerifyTTLMin) * time.Minute).Format(time.RFC3339),
            RequestedAt: now.Format(time.RFC3339),
        })
    }
    _ = h.Events.PublishAccountRegistered(ctx, queue.AccountRegisteredEvent{
        AccountID:    acc.ID,
        Email:        acc.Email,
        RegisteredAt: now.Format(time.RFC3339),
    })

    return c.JSON(http.StatusCreated, acc)
}

// Login: verify credentials and return a fresh access+refresh pair.
// Unknown identifier and wrong password take the same time and produce the
// same response.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Identifier = strings.TrimSpace(req.Identifier)
    if req.Identifier == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "identifier/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    acc, err := h.Accounts.FindByIdentifier(ctx, req.Identifier)
    if err != nil {
        if err == repository.ErrNotFound {
            utils.BurnPasswordCheck(req.Password)
            return c.JSON(http.StatusUnauthorized, errInvalidCredentials)
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !utils.VerifyPassword(acc.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, errInvalidCredentials)
    }

    resp, err := h.issuePair(ctx, acc, "") // fresh token family
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    _ = h.Accounts.TouchLastSeen(ctx, acc.ID)
    return c.JSON(http.StatusOK, resp)
}

// Refresh: exchange a live refresh token for a rotated pair. Exactly one
// concurrent exchange of the same token can win; presenting an already
// consumed token revokes its whole family.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    raw := strings.TrimSpace(req.RefreshToken)
    // Access tokens are JWTs and can never stand in for a refresh token;
    // refuse anything that is not raw refresh material before hashing.
    if strings.Contains(raw, ".") {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tok, err := h.Tokens.Consume(ctx, utils.HashRefreshRaw(raw))
    if err != nil {
        if err == repository.ErrTokenReused {
            // Reuse of a consumed token means the chain may be stolen;
            // kill every descendant before failing the request.
            _ = h.Tokens.RevokeFamily(ctx, tok.FamilyID)
        }
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }

    acc, err := h.Accounts.GetByID(ctx, tok.AccountID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load account failed"})
    }
    resp, err := h.issuePair(ctx, acc, tok.FamilyID) // rotation stays in the family
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusOK, resp)
}

// Logout: revoke a single session (refresh_token in the body) or, given a
// valid bearer and no body token, every session of the calling account.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    refreshToken := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if refreshToken != "" {
        if err := h.Tokens.Revoke(ctx, utils.HashRefreshRaw(refreshToken)); err != nil {
            if err == repository.ErrNotFound {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
        }
        return c.NoContent(http.StatusNoContent)
    }

    // No refresh token in the body: fall back to the bearer, if present,
    // and log the account out everywhere.
    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
        if err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        if err := h.Tokens.RevokeAllForAccount(ctx, claims.AccountID); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
        }
        return c.NoContent(http.StatusNoContent)
    }
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me: echo back the verified identity plus the live permission union,
// computed fresh so role changes show up immediately.
func (h *AuthHandler) Me(c echo.Context) error {
    accountID := middleware.AccountID(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    acc, err := h.Accounts.GetByID(ctx, accountID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load account failed"})
    }
    perms, err := h.Roles.PermissionsFor(ctx, accountID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission lookup failed"})
    }
    names := make([]string, 0, len(perms))
    for p := range perms {
        names = append(names, p)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "account":     acc,
        "age":         acc.Age(time.Now().UTC()),
        "roles":       middleware.Roles(c),
        "permissions": names,
    })
}

// issuePair signs an access token carrying the account's current roles and
// stores a new refresh token. An empty familyID starts a new family.
func (h *AuthHandler) issuePair(ctx context.Context, acc model.Account, familyID string) (tokenPairResp, error) {
    roles, err := h.Roles.RolesFor(ctx, acc.ID)
    if err != nil {
        return tokenPairResp{}, err
    }
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, acc.ID, roles, nil, h.Cfg.AccessTTLMin)
    if err != nil {
        return tokenPairResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return tokenPairResp{}, err
    }
    if _, err := h.Tokens.Store(ctx, acc.ID, familyID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return tokenPairResp{}, err
    }
    return tokenPairResp{
        AccountID:      acc.ID,
        AccessToken:    access.Token,
        AccessExpires:  access.Exp,
        RefreshToken:   refresh.Raw, // raw back to the client, hash in the store
        RefreshExpires: refresh.Exp,
    }, nil
}

// validateRegister normalizes the request in place and returns field-level
// validation errors plus the parsed birth date (nil when not supplied).
// Email, phone and password are required; names and birth date may be
// filled in later through profile edits.  Password strength is measured in
// entropy bits against the configured minimum.
func validateRegister(req *registerReq, minEntropy float64) (map[string]string, *time.Time) {
    fields := map[string]string{}
    req.FirstName = strings.TrimSpace(req.FirstName)
    req.LastName = strings.TrimSpace(req.LastName)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.Phone = strings.TrimSpace(req.Phone)

    if req.Email == "" {
        fields["email"] = "required"
    } else if _, err := mail.ParseAddress(req.Email); err != nil {
        fields["email"] = "invalid email address"
    }
    if req.Phone == "" {
        fields["phone"] = "required"
    } else if !strings.HasPrefix(req.Phone, "+") {
        fields["phone"] = "must be in international format"
    }
    if req.Password == "" {
        fields["password"] = "required"
    } else if err := passwordvalidator.Validate(req.Password, minEntropy); err != nil {
        fields["password"] = "not strong enough"
    }
    var birth *time.Time
    if req.BirthDate != "" {
        b, err := time.Parse("2006-01-02", req.BirthDate)
        if err != nil {
            fields["birth_date"] = "must be YYYY-MM-DD"
        } else if b.After(time.Now().UTC()) {
            fields["birth_date"] = "must be in the past"
        } else {
            birth = &b
        }
    }
    return fields, birth
}
