package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-users-contract/pkg/response"
)

// KeyFunc names the bucket a request is counted in.
type KeyFunc func(c *gin.Context) string

// AllowFunc reports whether a request skips limiting.
type AllowFunc func(*gin.Context) bool

// KeyByIP buckets by client IP.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath buckets by client IP and matched route, so /users/1 and
// /users/2 share a bucket.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + routeOf(c) + ":ip:" + ipFromCtx(c)
	}
}

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// Limit is a fixed-window quota: Max requests per Window for each Key.
type Limit struct {
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
}

func (l Limit) enabled() bool {
	return l.Max > 0 && l.Window > 0 && l.Key != nil
}

// returns {count, pttl}; the expiry is set on the first hit of a window
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

var errUnexpectedReply = errors.New("rate limit: unexpected script reply")

func hit(c *gin.Context, rdb *redis.Client, key string, window time.Duration) (int, time.Duration, error) {
	res, err := hitScript.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, errUnexpectedReply
	}
	return int(res[0]), time.Duration(res[1]) * time.Millisecond, nil
}

// RateLimit enforces l with counters in Redis and answers 429 once a bucket
// is exhausted. A nil client or a zero Limit disables it; Redis errors let
// the request through.
func RateLimit(rdb *redis.Client, l Limit) gin.HandlerFunc {
	if rdb == nil || !l.enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (l.Allow != nil && l.Allow(c)) {
			c.Next()
			return
		}

		count, ttl, err := hit(c, rdb, l.Key(c), l.Window)
		if err != nil {
			c.Next()
			return
		}

		reset := 0
		if ttl > 0 {
			reset = int((ttl + time.Second - 1) / time.Second)
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(l.Max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if count > l.Max {
			if reset > 0 {
				c.Header("Retry-After", strconv.Itoa(reset))
			}
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
