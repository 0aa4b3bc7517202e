package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-users-contract/internal/interface/http"
	"github.com/oksasatya/go-users-contract/internal/interface/middleware"
	"github.com/oksasatya/go-users-contract/pkg/contract"
)

// UserModule serves the users contract. Every contract route is bound to
// the handler of the same name; creation is rate limited per client IP.
//
//	GET  /users            list
//	GET  /users/list       list (alias)
//	GET  /users/findNames  findNames
//	GET  /users/search     search
//	GET  /users/:id        byId
//	POST /users            add
//	POST /users/create     add (alias)
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client

	CreatePerMin       int
	CreateAllowPrivate bool
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, createPerMin int, allowPrivate bool) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, CreatePerMin: createPerMin, CreateAllowPrivate: allowPrivate}
}

func (m *UserModule) Name() string { return "users" }

func (m *UserModule) Register(rg *gin.RouterGroup) {
	limit := middleware.Limit{Max: m.CreatePerMin, Window: time.Minute, Key: middleware.KeyByIPAndPath()}
	if m.CreateAllowPrivate {
		limit.Allow = middleware.AllowPrivateIP()
	}
	createLimiter := middleware.RateLimit(m.Redis, limit)

	byName := m.Handler.Routes()
	contract.Walk(contract.Users, func(path []string, r contract.Route) {
		h, ok := byName[path[len(path)-1]]
		if !ok {
			panic("users: no handler for route " + path[len(path)-1])
		}
		if r.IsQuery() {
			rg.Handle(r.Method, r.Path, h)
			return
		}
		rg.Handle(r.Method, r.Path, createLimiter, h)
	})

	rg.GET("/users/list", m.Handler.List)
	rg.POST("/users/create", createLimiter, m.Handler.Add)
}
