package httpapi

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sweetpotato0/dealsense/pkg/logging"
)

// allowedHeaders is the header set browser clients send with generation
// requests. Kept identical on every response, success or error.
const allowedHeaders = "authorization, x-client-info, apikey, content-type"

// CORS stamps the cross-origin headers on every response and short-circuits
// preflight requests with a bare 200 acknowledgement before any body
// parsing happens.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", allowedHeaders)

		if c.Request.Method == http.MethodOptions {
			c.String(http.StatusOK, "ok")
			c.Abort()
			return
		}

		c.Next()
	}
}

// Recovery converts panics into the uniform error envelope so the caller
// always receives well-formed JSON.
func Recovery() gin.HandlerFunc {
	logger := logging.WithComponent("httpapi")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					"panic", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()

		c.Next()
	}
}

// RequestLogger logs one line per request with method, path, status, and
// duration.
func RequestLogger() gin.HandlerFunc {
	logger := logging.WithComponent("httpapi")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
