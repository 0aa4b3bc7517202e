package router

import "github.com/gin-gonic/gin"

// Module is a feature that mounts its routes under the API group. Names are
// unique within a Registry.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}
