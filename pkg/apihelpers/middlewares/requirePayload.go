package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequirePayload rejects write requests without a JSON body. Rubrics,
// settings and reviews are only accepted as application/json.
func RequirePayload() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			slog.Debug("payload missing", slog.String("path", c.Request.URL.Path), slog.String("requestID", GetRequestID(c)))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "payload missing"})
			return
		}
		if ct := c.ContentType(); ct != gin.MIMEJSON {
			slog.Debug("unsupported payload type", slog.String("contentType", ct), slog.String("path", c.Request.URL.Path), slog.String("requestID", GetRequestID(c)))
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "payload must be " + gin.MIMEJSON})
			return
		}
		c.Next()
	}
}
