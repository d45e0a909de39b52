package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	jwthandling "github.com/conductor-oer/conductor-backend/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
)

const (
	HeaderAuthorization = "Authorization"

	CTX_KEY_TOKEN           = "token"
	CTX_KEY_VALIDATED_TOKEN = "validatedToken"
)

func extractToken(c *gin.Context) (string, error) {
	req := c.Request

	var token string
	tokens, ok := req.Header[HeaderAuthorization]
	if ok && len(tokens) > 0 {
		token = tokens[0]
		token = strings.TrimPrefix(token, "Bearer ")
		if len(token) == 0 {
			return token, errors.New("No token found in Authorization header")
		}
	} else {
		return token, errors.New("No Authorization header found")
	}
	return token, nil
}

func validateConductorUserJWT(c *gin.Context, token string, tokenSignKey string) bool {
	parsedToken, ok, err := jwthandling.ValidateConductorUserToken(token, tokenSignKey)
	if err != nil || !ok {
		errMsg := "invalid claims"
		if err != nil {
			errMsg = err.Error()
		}
		slog.Warn("token validation failed", slog.String("error", errMsg), slog.String("requestID", GetRequestID(c)))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "error during token validation"})
		return false
	}
	c.Set(CTX_KEY_TOKEN, token)
	c.Set(CTX_KEY_VALIDATED_TOKEN, parsedToken)
	return true
}

// GetAndValidateConductorUserJWT rejects requests without a valid bearer token.
func GetAndValidateConductorUserJWT(tokenSignKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err != nil {
			slog.Warn("no Authorization token found", slog.String("requestID", GetRequestID(c)))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		validateConductorUserJWT(c, token, tokenSignKey)
	}
}

// OptionalConductorUserJWT lets requests without Authorization header pass as
// anonymous, but a token that is sent must be valid and, on routes with an
// :orgID parameter, issued for that org.
func OptionalConductorUserJWT(tokenSignKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(HeaderAuthorization) == "" {
			c.Next()
			return
		}
		token, err := extractToken(c)
		if err != nil {
			slog.Warn("malformed Authorization header", slog.String("requestID", GetRequestID(c)))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !validateConductorUserJWT(c, token, tokenSignKey) {
			return
		}
		orgID := c.Param(PATH_PARAM_ORG_ID)
		if parsedToken := GetValidatedToken(c); orgID != "" && parsedToken.OrgID != orgID {
			slog.Warn("token not issued for org", slog.String("orgID", orgID), slog.String("tokenOrgID", parsedToken.OrgID), slog.String("requestID", GetRequestID(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "orgID not allowed"})
			return
		}
	}
}

// GetValidatedToken returns the claims set by one of the JWT middlewares, or nil.
func GetValidatedToken(c *gin.Context) *jwthandling.ConductorUserClaims {
	v, ok := c.Get(CTX_KEY_VALIDATED_TOKEN)
	if !ok {
		return nil
	}
	claims, ok := v.(*jwthandling.ConductorUserClaims)
	if !ok {
		return nil
	}
	return claims
}
