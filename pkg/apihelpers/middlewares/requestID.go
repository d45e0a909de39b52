package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID    = "X-Request-ID"
	CTX_KEY_REQUEST_ID = "requestID"
	MAX_REQUEST_ID_LEN = 128
)

// RequestID reuses the X-Request-ID sent by the caller or generates a new one,
// and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > MAX_REQUEST_ID_LEN {
			requestID = uuid.NewString()
		}
		c.Set(CTX_KEY_REQUEST_ID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(CTX_KEY_REQUEST_ID)
}
