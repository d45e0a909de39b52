package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	tokenSignKey  string
	allowedOrgIDs []string
}

func NewHTTPHandler(
	tokenSignKey string,
	allowedOrgIDs []string,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:  tokenSignKey,
		allowedOrgIDs: allowedOrgIDs,
	}
}
