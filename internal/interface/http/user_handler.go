package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-users-contract/internal/application"
	"github.com/oksasatya/go-users-contract/pkg/contract"
	"github.com/oksasatya/go-users-contract/pkg/dto"
	"github.com/oksasatya/go-users-contract/pkg/response"
	"github.com/oksasatya/go-users-contract/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	validation.Init()
	return &UserHandler{Svc: svc, Logger: logger}
}

// Routes maps users contract route names to handlers.
func (h *UserHandler) Routes() map[string]gin.HandlerFunc {
	return map[string]gin.HandlerFunc{
		"list":      h.List,
		"byId":      h.ByID,
		"findNames": h.FindNames,
		"search":    h.Search,
		"add":       h.Add,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.Logger, err)
		return
	}
	response.List(c, users, "users")
}

func (h *UserHandler) ByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid id", map[string]string{"id": "must be an integer"})
		return
	}
	u, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

func (h *UserHandler) FindNames(c *gin.Context) {
	q, err := dto.Map[contract.FindNamesQuery](validation.Engine(), queryPlain(c, contract.FindNamesQuerySchema))
	if err != nil {
		HandleServiceError(c, h.Logger, err)
		return
	}
	users, err := h.Svc.FindNames(c.Request.Context(), q)
	if err != nil {
		HandleServiceError(c, h.Logger, err)
		return
	}
	response.List(c, users, "users")
}

func (h *UserHandler) Search(c *gin.Context) {
	q, err := dto.Map[contract.SearchQuery](validation.Engine(), queryPlain(c, contract.SearchQuerySchema))
	if err != nil {
		HandleServiceError(c, h.Logger, err)
		return
	}
	users, err := h.Svc.SearchUsers(c.Request.Context(), q)
	if err != nil {
		HandleServiceError(c, h.Logger, err)
		return
	}
	response.List(c, users, "users")
}

func (h *UserHandler) Add(c *gin.Context) {
	var req contract.CreateUser
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		HandleServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "user created", nil)
}

// queryPlain collects the query values the schema declares.
func queryPlain(c *gin.Context, s dto.Schema) map[string]interface{} {
	plain := map[string]interface{}{}
	for _, name := range s.Names() {
		if v, ok := c.GetQuery(name); ok {
			plain[name] = v
		}
	}
	return plain
}
