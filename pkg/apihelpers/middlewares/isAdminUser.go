package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func IsAdminUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		parsedToken := GetValidatedToken(c)
		if parsedToken == nil {
			slog.Warn("IsAdminUser: validatedToken not found in context")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validatedToken not found in context"})
			return
		}

		if !parsedToken.IsAdmin {
			slog.Warn("IsAdminUser Middleware: non admin user tried to access admin endpoint", slog.String("orgID", parsedToken.OrgID), slog.String("userID", parsedToken.Subject))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized access to admin endpoint"})
			return
		}
	}
}
