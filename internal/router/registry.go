package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// APIPrefix is the group every module registers under.
const APIPrefix = "/api"

// Registry collects modules and group middleware, then mounts them in one
// pass so middleware always precedes the routes it guards.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
	Logger *logrus.Logger

	middlewares []gin.HandlerFunc
	modules     []Module
	names       map[string]struct{}
}

func NewRegistry(engine *gin.Engine, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		Engine: engine,
		API:    engine.Group(APIPrefix),
		Logger: logger,
		names:  map[string]struct{}{},
	}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

// Add queues mod for registration. A second module with the same name panics.
func (r *Registry) Add(mod Module) {
	if _, dup := r.names[mod.Name()]; dup {
		panic(fmt.Sprintf("router: module %q registered twice", mod.Name()))
	}
	r.names[mod.Name()] = struct{}{}
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		before := len(r.Engine.Routes())
		m.Register(r.API)
		r.Logger.WithFields(logrus.Fields{
			"module": m.Name(),
			"routes": len(r.Engine.Routes()) - before,
		}).Debug("module registered")
	}
}
