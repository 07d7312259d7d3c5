package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA‑256 hashing for refresh tokens
    "encoding/hex"  // hex encoding and decoding functions
    "errors"        // sentinel errors for verification failures
    "time"          // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned when an access token fails signature or
// expiry verification.  Callers never learn which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the serialized JWT string.  Access tokens are
// short‑lived, stateless and carried in the Authorization header on every
// call to a protected endpoint of any service.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long‑lived token used to obtain new access
// tokens without re-authentication.  The Raw field is the opaque string
// handed to the client; only its SHA‑256 hash is ever persisted.
type RefreshToken struct {
    Raw string    // raw token string returned to the client
    Exp time.Time // UTC expiration time
}

// Claims is the verified content of an access token as exposed to
// request handlers: the subject account id, the role names embedded at
// issue time and the expiry instant.
type Claims struct {
    AccountID string
    Roles     []string
    ExpiresAt time.Time
}

// NewAccessToken builds and signs an HS256 JWT for an account.  The base
// claims are sub (account id), iat and exp; custom holds caller-supplied
// extra claims and is empty by default.  Everything in the token is
// derivable from the account record alone, so verification never needs a
// round trip back to the issuer.
func NewAccessToken(secret, accountID string, roles []string, custom map[string]any, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub": accountID,
        "exp": exp.Unix(),
        "iat": now.Unix(),
    }
    if len(roles) > 0 {
        claims["roles"] = roles
    }
    for k, v := range custom {
        claims[k] = v
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry of a serialized access
// token and returns its claims.  Verification is a pure computation over
// the shared secret: no store lookup, no network.  Tokens signed with any
// algorithm other than HMAC are rejected outright.
func ParseAccessToken(secret, raw string, opts ...jwt.ParserOption) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    }, opts...)
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }
    sub, _ := mc["sub"].(string)
    if sub == "" {
        return Claims{}, ErrInvalidToken
    }
    out := Claims{AccountID: sub}
    if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
        out.ExpiresAt = exp.Time
    }
    if rs, ok := mc["roles"].([]interface{}); ok {
        for _, r := range rs {
            if s, ok := r.(string); ok {
                out.Roles = append(out.Roles, s)
            }
        }
    }
    return out, nil
}

// NewRefreshToken returns a cryptographically secure random token (raw)
// and its expiration time.  The ttlDays parameter controls how many days
// the refresh token stays exchangeable.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    raw, err := randomHex(48) // 48 bytes -> 96 hex chars
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw returns the SHA‑256 hash of the raw refresh token as a
// hex string.  Storing only the hash means a stolen database dump cannot
// be replayed against the refresh endpoint.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
