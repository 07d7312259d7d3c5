package middleware

import (
    "math"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/roamnest/roamnest-backend/internal/config"
)

// NewTokenBucket returns a distributed rate limiter backed by Redis,
// applied to the credential endpoints (login, send-code). The bucket state
// lives in a Redis hash updated by a Lua script so refill and take are one
// atomic step across all instances of the service. When Redis is absent or
// errors, the limiter fails open: credential checks still apply, only the
// throttle is lost.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    bucketScript := redis.NewScript(`
        local key = KEYS[1]
        local now_ms = tonumber(ARGV[1])
        local capacity = tonumber(ARGV[2])
        local refill = tonumber(ARGV[3])
        local interval_ms = tonumber(ARGV[4])
        local ttl_s = tonumber(ARGV[5])

        local state = redis.call('HMGET', key, 'tokens', 'refilled_ms')
        local tokens = tonumber(state[1])
        local refilled = tonumber(state[2])
        if tokens == nil or refilled == nil then
            tokens = capacity
            refilled = now_ms
        end

        local elapsed = math.max(0, now_ms - refilled)
        local steps = math.floor(elapsed / interval_ms)
        if steps > 0 then
            tokens = math.min(capacity, tokens + steps * refill)
            refilled = refilled + steps * interval_ms
        end

        local allowed = 0
        local wait_ms = 0
        if tokens > 0 then
            allowed = 1
            tokens = tokens - 1
        else
            wait_ms = math.max(0, interval_ms - (now_ms - refilled))
        end

        redis.call('HMSET', key, 'tokens', tokens, 'refilled_ms', refilled)
        redis.call('EXPIRE', key, ttl_s)
        return { allowed, wait_ms }
    `)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := bucketKey(cfg.Prefix, c)
            args := []interface{}{
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL / time.Second),
            }
            vals, err := bucketScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
            if err != nil {
                return next(c) // fail open on Redis trouble
            }
            arr, ok := vals.([]interface{})
            if !ok || len(arr) != 2 {
                return next(c)
            }
            allowed, _ := arr[0].(int64)
            waitMs, _ := arr[1].(int64)
            if allowed != 1 {
                secs := int(math.Ceil(float64(waitMs) / 1000.0))
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

// bucketKey scopes the bucket to route + caller. Authenticated callers are
// keyed by account id so one account cannot exhaust another's budget;
// anonymous callers (login itself) fall back to the client IP.
func bucketKey(prefix string, c echo.Context) string {
    who := AccountID(c)
    if who == "" {
        who = c.RealIP()
    }
    return prefix + ":" + c.Path() + ":" + who
}
