package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/conductor-oer/conductor-backend/pkg/apihelpers/middlewares"
	peerreview "github.com/conductor-oer/conductor-backend/pkg/peer-review"
	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
	"github.com/conductor-oer/conductor-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// submitterFromCtx returns the reviewer identity of the optional token, or an
// anonymous submitter when the request carried none.
func submitterFromCtx(c *gin.Context) prTypes.Submitter {
	token := mw.GetValidatedToken(c)
	if token == nil {
		return prTypes.Submitter{}
	}
	return prTypes.Submitter{
		UserID:    token.Subject,
		FirstName: token.FirstName,
		LastName:  token.LastName,
		Email:     token.Email,
	}
}

func userIDFromCtx(c *gin.Context) string {
	if token := mw.GetValidatedToken(c); token != nil {
		return token.Subject
	}
	return ""
}

// requireProjectID aborts with 400 if the :projectID path parameter is unusable.
func requireProjectID(c *gin.Context) (string, bool) {
	projectID := c.Param("projectID")
	if !utils.IsURLSafe(projectID) {
		slog.Warn("invalid projectID", slog.String("projectID", projectID), slog.String("requestID", mw.GetRequestID(c)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectID"})
		return "", false
	}
	return projectID, true
}

// requireObjectID aborts with 400 if the path parameter is not a valid object id.
func requireObjectID(c *gin.Context, param string) (string, bool) {
	id := c.Param(param)
	if !primitive.IsValidObjectID(id) {
		slog.Warn("invalid id", slog.String(param, id), slog.String("requestID", mw.GetRequestID(c)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return "", false
	}
	return id, true
}

// respondWithError maps service errors to status codes.
func respondWithError(c *gin.Context, err error, msg string) {
	logAttrs := []any{
		slog.String("orgID", c.Param(mw.PATH_PARAM_ORG_ID)),
		slog.String("requestID", mw.GetRequestID(c)),
		slog.String("error", err.Error()),
	}

	var validationErr *peerreview.ValidationError
	switch {
	case errors.As(err, &validationErr):
		slog.Info(msg, logAttrs...)
		c.JSON(http.StatusBadRequest, gin.H{"error": "peer review is not valid", "issues": validationErr.Issues})
	case errors.Is(err, peerreview.ErrAnonymousNotAllowed):
		slog.Warn(msg, logAttrs...)
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, peerreview.ErrRubricNotFound), errors.Is(err, peerreview.ErrPeerReviewNotFound):
		slog.Warn(msg, logAttrs...)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, peerreview.ErrInvalidRubric), errors.Is(err, peerreview.ErrInvalidSubmission), errors.Is(err, peerreview.ErrInvalidSettings):
		slog.Warn(msg, logAttrs...)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error(msg, logAttrs...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
