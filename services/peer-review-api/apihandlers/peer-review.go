package apihandlers

import (
	"log/slog"
	"net/http"

	mw "github.com/conductor-oer/conductor-backend/pkg/apihelpers/middlewares"
	peerreview "github.com/conductor-oer/conductor-backend/pkg/peer-review"
	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) AddPeerReviewAPI(rg *gin.RouterGroup) {
	projectGroup := rg.Group("/peer-review/:orgID/projects/:projectID")
	projectGroup.Use(mw.IsOrgIDInPathAllowed(h.allowedOrgIDs))
	{
		projectGroup.GET("/form", h.getPeerReviewForm)
		projectGroup.POST("/reviews", mw.RequirePayload(), mw.OptionalConductorUserJWT(h.tokenSignKey), h.submitPeerReview)
	}
}

func (h *HttpEndpoints) getPeerReviewForm(c *gin.Context) {
	orgID := c.Param("orgID")
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	form, err := peerreview.GetPeerReviewForm(c.Request.Context(), orgID, projectID)
	if err != nil {
		respondWithError(c, err, "failed to load peer review form")
		return
	}

	c.JSON(http.StatusOK, form)
}

func (h *HttpEndpoints) submitPeerReview(c *gin.Context) {
	orgID := c.Param("orgID")
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	var req prTypes.Submission
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()), slog.String("requestID", mw.GetRequestID(c)))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ProjectID != "" && req.ProjectID != projectID {
		slog.Warn("projectID in payload does not match path", slog.String("orgID", orgID), slog.String("projectID", projectID), slog.String("payloadProjectID", req.ProjectID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectID mismatch"})
		return
	}
	req.ProjectID = projectID

	submitter := submitterFromCtx(c)
	slog.Debug("submitting peer review", slog.String("orgID", orgID), slog.String("projectID", projectID), slog.Bool("authenticated", submitter.IsAuthenticated()))

	id, err := peerreview.SubmitPeerReview(c.Request.Context(), orgID, req, submitter)
	if err != nil {
		respondWithError(c, err, "failed to submit peer review")
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "peer review submitted", "peerReviewID": id})
}
