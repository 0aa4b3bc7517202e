package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-users-contract/internal/interface/middleware"
)

var requestCount = expvar.NewMap("users_requests")

// CountRequests tallies requests per route in the users_requests expvar map.
func CountRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestCount.Add(c.Request.Method+" "+path, 1)
	}
}

type DebugModule struct {
	Redis *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{Redis: rdb} }

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Public metrics endpoint (expvar), rate-limited per IP
	rl := middleware.RateLimit(m.Redis, middleware.Limit{Max: 120, Window: time.Minute, Key: middleware.KeyByIP()})
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
