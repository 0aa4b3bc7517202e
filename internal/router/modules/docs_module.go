package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-users-contract/internal/interface/http"
)

// DocsModule serves the OpenAPI document and the health endpoint.
type DocsModule struct {
	Docs   *handlers.DocsHandler
	Health *handlers.HealthHandler
}

func NewDocsModule(docs *handlers.DocsHandler, health *handlers.HealthHandler) *DocsModule {
	return &DocsModule{Docs: docs, Health: health}
}

func (m *DocsModule) Name() string { return "docs" }

func (m *DocsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/openapi.json", m.Docs.OpenAPI)
	rg.GET("/healthz", m.Health.Check)
}
