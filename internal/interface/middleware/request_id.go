package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oksasatya/go-users-contract/pkg/response"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware stores the request id in the Gin context and echoes it in
// the response. A well-formed UUID sent by the client is kept.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set(response.CtxKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
