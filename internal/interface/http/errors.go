package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-users-contract/internal/application"
	"github.com/oksasatya/go-users-contract/pkg/dto"
	"github.com/oksasatya/go-users-contract/pkg/response"
)

// HandleServiceError maps service errors onto error envelopes.
func HandleServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		notFound *userapp.UserNotFoundError
		invalid  *dto.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		response.Error[any](c, http.StatusNotFound, notFound.Error(), nil)
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.As(err, &invalid):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", invalid.Details)
	default:
		logger.WithError(err).WithField("path", c.FullPath()).Error("unhandled internal server error")
		response.Error[any](c, http.StatusInternalServerError, "an unexpected error occurred", nil)
	}
}
