package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// quietPaths are probe endpoints that are not access-logged on success.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// RequestID injects an X-Request-ID header into the request and response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger writes one access line per request with the authenticated user.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if quietPaths[c.Request.URL.Path] && status < http.StatusBadRequest {
			return
		}

		requestID, _ := c.Get("request_id")
		user := GetUsername(c)
		if user == "" {
			user = "-"
		}
		log.Printf("[%s] %s %s %d %s ip=%s user=%s",
			requestID,
			c.Request.Method,
			c.Request.URL.Path,
			status,
			time.Since(start),
			c.ClientIP(),
			user,
		)
	}
}

// Recovery turns a handler panic into a 500 in the standard error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] panic serving %s %s: %v", requestID, c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
