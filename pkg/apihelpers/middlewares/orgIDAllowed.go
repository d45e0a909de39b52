package middlewares

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

const PATH_PARAM_ORG_ID = "orgID"

// IsOrgIDInPathAllowed rejects requests whose :orgID path parameter is not configured.
func IsOrgIDInPathAllowed(allowedOrgIDs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param(PATH_PARAM_ORG_ID)
		if !slices.Contains(allowedOrgIDs, orgID) {
			slog.Warn("orgID not allowed", slog.String("orgID", orgID), slog.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "orgID not allowed"})
			return
		}
	}
}

// IsOrgIDInJWTAllowed checks that the token was issued for the org in the path.
// Must run after GetAndValidateConductorUserJWT.
func IsOrgIDInJWTAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		parsedToken := GetValidatedToken(c)
		if parsedToken == nil {
			slog.Warn("validatedToken not found in context")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validatedToken not found in context"})
			return
		}

		orgID := c.Param(PATH_PARAM_ORG_ID)
		if parsedToken.OrgID != orgID {
			slog.Warn("token not issued for org", slog.String("orgID", orgID), slog.String("tokenOrgID", parsedToken.OrgID), slog.String("userID", parsedToken.Subject))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "orgID not allowed"})
			return
		}
	}
}
