package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/tripadvisor-api/internal/config"
)

// bucketScript refills and takes one token atomically.  It returns
// {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

local steps = math.floor(math.max(0, now - ts) / interval)
if steps > 0 then
  tokens = math.min(capacity, tokens + steps * refill)
  ts = ts + steps * interval
end

local allowed = 0
local wait = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.max(0, interval - (now - ts))
end

redis.call('HSET', key, 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, wait}
`)

// NewTokenBucket limits requests per key with a Redis token bucket.  With
// no client, or when disabled, it is a pass-through.  Redis errors let the
// request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	limit := strconv.Itoa(cfg.Capacity)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			res, err := bucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				if cfg.Debug {
					slog.Warn("rate limit check skipped", slog.String("key", key), slog.Any("error", err))
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
			if res[0] != 1 {
				secs := int(math.Ceil(float64(res[2]) / 1000))
				h.Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"message":     "rate limit exceeded",
					"error":       "too_many_requests",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

// rateKey composes the bucket key from the configured strategy.  The route
// part uses the registered path so /hotels/1 and /hotels/2 share a bucket.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	who := principalID(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, ip)
	case "principal":
		parts = append(parts, who)
	case "ip_route":
		parts = append(parts, ip, route)
	case "principal_route":
		parts = append(parts, who, route)
	default:
		parts = append(parts, ip, who, route)
	}
	return strings.Join(parts, ":")
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
