package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appuser "github.com/oksasatya/go-users-contract/internal/application"
	"github.com/oksasatya/go-users-contract/internal/container"
	repouser "github.com/oksasatya/go-users-contract/internal/domain/repository"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-users-contract/internal/interface/http"
	"github.com/oksasatya/go-users-contract/internal/interface/middleware"
	"github.com/oksasatya/go-users-contract/internal/router/modules"
	"github.com/oksasatya/go-users-contract/pkg/querycache"
)

// Version is reported in the OpenAPI document.
var Version = "1.0.0"

type UserModuleDeps struct {
	Repo    repouser.UserRepository
	Service *appuser.Service
	Handler *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := container.GetUserRepository()

	var cache querycache.Cache
	if cfg.CacheEnabled {
		if rdb := container.GetRedis(); rdb != nil {
			cache = querycache.NewRedis(rdb, cfg.AppName)
		}
	}
	var events appuser.EventPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		events = pub
	}
	var searcher appuser.UserSearcher
	if es := container.GetES(); es != nil {
		searcher = search.NewUserIndex(es, cfg.ESUsersIndex)
	}

	service := appuser.NewService(repo, cache, cfg.CacheTTL, events, searcher, logger)
	handler := handlers.NewUserHandler(service, logger)

	return UserModuleDeps{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	userDeps := buildUserDeps()

	r.Add(modules.NewUserModule(userDeps.Handler, container.GetRedis(), cfg.RateLimitCreatePerMin, cfg.RateLimitAllowPrivate))
	r.Add(modules.NewDocsModule(
		handlers.NewDocsHandler(cfg.AppName, Version, APIPrefix),
		handlers.NewHealthHandler(container.GetHealthChecks()),
	))
	if cfg.DebugMetricsEnabled {
		r.Use(modules.CountRequests())
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
}

// NewEngine builds the Gin engine with global middleware and every module
// wired from the container.
func NewEngine() *gin.Engine {
	cfg := container.GetConfig()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(container.GetLogger()))
	}

	reg := NewRegistry(r, container.GetLogger())
	InitModules(reg)
	reg.RegisterAll()
	return r
}
