package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxKeyRealIP holds the resolved client address in the gin context.
const CtxKeyRealIP = "real_ip"

// proxy headers, most trusted first
var realIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// RealIP resolves the client address from proxy headers and stores it under
// CtxKeyRealIP. X-Forwarded-For contributes its left-most entry; when no
// header parses, gin's ClientIP is used.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxKeyRealIP, resolveIP(c))
		c.Next()
	}
}

func resolveIP(c *gin.Context) string {
	for _, h := range realIPHeaders {
		v := c.GetHeader(h)
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		if ip := net.ParseIP(strings.TrimSpace(v)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}

// ipFromCtx returns the address RealIP stored, or "unknown".
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxKeyRealIP); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
