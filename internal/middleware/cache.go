package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/tripadvisor-api/internal/config"
)

// cachedResponse is what the cache stores per key.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h"`
	Body   []byte      `json:"b"`
}

// recorder tees the response body up to limit bytes.  Past the limit the
// response is still written but marked as too large to cache.
type recorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.overflow {
		if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
			r.overflow = true
			r.buf.Reset()
		} else {
			r.buf.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

// cacheStore is the subset of *redis.Client the response cache uses.
type cacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ResponseCache serves repeated public reads from Redis.  Entries are kept
// per resource group so a successful write to a group drops every cached
// read of it.  A nil *ResponseCache hands out pass-through middleware.
type ResponseCache struct {
	cfg   config.CacheConfig
	store cacheStore
	ttl   time.Duration
}

// NewResponseCache returns nil when caching is disabled or rdb is nil.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	return newResponseCache(cfg, rdb)
}

func newResponseCache(cfg config.CacheConfig, store cacheStore) *ResponseCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ResponseCache{cfg: cfg, store: store, ttl: ttl}
}

// Reads caches 200 responses to the configured methods under group.  The
// rest pass through untouched.
func (rc *ResponseCache) Reads(group string) echo.MiddlewareFunc {
	if rc == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(rc.cfg, group, c)

			if raw, err := rc.store.Get(ctx, key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(raw, &hit) == nil {
					return replay(c, hit)
				}
			}

			rec := &recorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow {
				return nil
			}
			entry := cachedResponse{Status: rec.status, Header: c.Response().Header().Clone(), Body: rec.buf.Bytes()}
			entry.Header.Del("X-Cache")
			entry.Header.Del(echo.HeaderXRequestID)
			payload, err := json.Marshal(entry)
			if err != nil {
				return nil
			}
			if err := rc.store.Set(context.WithoutCancel(ctx), key, payload, rc.ttl).Err(); err != nil {
				slog.Debug("cache store failed", slog.String("key", key), slog.Any("error", err))
			}
			return nil
		}
	}
}

// Invalidates drops every cached read of group once the wrapped write has
// answered 2xx.  Failed writes leave the cache alone.
func (rc *ResponseCache) Invalidates(group string) echo.MiddlewareFunc {
	if rc == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if st := c.Response().Status; err != nil || st < 200 || st >= 300 {
				return err
			}
			if perr := rc.purge(context.WithoutCancel(c.Request().Context()), group); perr != nil {
				slog.Warn("cache purge failed", slog.String("group", group), slog.Any("error", perr))
			}
			return nil
		}
	}
}

func (rc *ResponseCache) purge(ctx context.Context, group string) error {
	match := groupPrefix(rc.cfg, group) + "*"
	var cursor uint64
	for {
		keys, next, err := rc.store.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rc.store.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func replay(c echo.Context, hit cachedResponse) error {
	h := c.Response().Header()
	for k, vals := range hit.Header {
		if strings.EqualFold(k, echo.HeaderContentLength) {
			continue
		}
		for _, v := range vals {
			h.Add(k, v)
		}
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(hit.Status)
	_, err := c.Response().Write(hit.Body)
	return err
}

func groupPrefix(cfg config.CacheConfig, group string) string {
	return cfg.Prefix + ":" + group + ":"
}

// cacheKey hashes the parts selected by the key strategy under the group's
// prefix.
func cacheKey(cfg config.CacheConfig, group string, c echo.Context) string {
	r := c.Request()
	// the concrete path: /hotels/1 and /hotels/2 must not collide
	path := r.URL.Path
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{path}
	case "method_route":
		parts = []string{r.Method, path}
	case "method_route_query":
		parts = []string{r.Method, path, r.URL.RawQuery}
	default:
		parts = []string{path, r.URL.RawQuery}
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return groupPrefix(cfg, group) + hex.EncodeToString(sum[:16])
}
