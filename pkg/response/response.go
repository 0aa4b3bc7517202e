package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CtxKeyRequestID is the gin context key the request id middleware sets.
const CtxKeyRequestID = "request_id"

// APIResponse is the envelope of every JSON response. Data is always
// present on success, including empty lists.
type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// ListMeta describes a list payload.
type ListMeta struct {
	Count int `json:"count"`
}

func write[T any](ctx *gin.Context, res APIResponse[T]) APIResponse[T] {
	res.Timestamp = time.Now().UTC()
	res.RequestID = ctx.GetString(CtxKeyRequestID)
	ctx.JSON(res.Status, res)
	return res
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	return write(ctx, APIResponse[T]{Status: status, Success: true, Message: message, Data: data, Meta: meta})
}

// List writes 200 with items and their count. A nil slice is sent as [].
func List[T any](ctx *gin.Context, items []T, message string) APIResponse[[]T] {
	if items == nil {
		items = []T{}
	}
	return Success(ctx, http.StatusOK, items, message, ListMeta{Count: len(items)})
}

// Error writes an error envelope and returns it. err carries details such
// as field messages.
func Error[T any](ctx *gin.Context, status int, message string, err interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return write(ctx, APIResponse[T]{Status: status, Message: message, Error: err})
}
