package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-openapi/spec"

	"github.com/oksasatya/go-users-contract/pkg/contract"
	"github.com/oksasatya/go-users-contract/pkg/response"
)

type DocsHandler struct {
	doc *spec.Swagger
}

// NewDocsHandler renders the users contract once at startup.
func NewDocsHandler(title, version, basePath string) *DocsHandler {
	return &DocsHandler{doc: contract.OpenAPI(contract.Users, title, version, basePath)}
}

func (h *DocsHandler) OpenAPI(c *gin.Context) {
	c.JSON(http.StatusOK, h.doc)
}

// HealthHandler reports the state of each named dependency.
type HealthHandler struct {
	checks  map[string]func(ctx context.Context) error
	timeout time.Duration
}

func NewHealthHandler(checks map[string]func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := map[string]string{}
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", status)
		return
	}
	response.Success(c, http.StatusOK, status, "healthy", nil)
}
