package apihandlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/conductor-oer/conductor-backend/pkg/apihelpers"
	mw "github.com/conductor-oer/conductor-backend/pkg/apihelpers/middlewares"
	peerreview "github.com/conductor-oer/conductor-backend/pkg/peer-review"
	"github.com/conductor-oer/conductor-backend/pkg/peer-review/exporter"
	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *HttpEndpoints) AddManagementAPI(rg *gin.RouterGroup) {
	orgGroup := rg.Group("/management/:orgID")
	orgGroup.Use(
		mw.IsOrgIDInPathAllowed(h.allowedOrgIDs),
		mw.GetAndValidateConductorUserJWT(h.tokenSignKey),
		mw.IsOrgIDInJWTAllowed(),
	)

	rubricsGroup := orgGroup.Group("/rubrics")
	{
		rubricsGroup.GET("", h.getRubrics)
		rubricsGroup.POST("", mw.IsAdminUser(), mw.RequirePayload(), h.createRubric)
		rubricsGroup.GET("/:rubricID", h.getRubric)
		rubricsGroup.PUT("/:rubricID", mw.IsAdminUser(), mw.RequirePayload(), h.updateRubric)
		rubricsGroup.DELETE("/:rubricID", mw.IsAdminUser(), h.deleteRubric)
	}

	projectGroup := orgGroup.Group("/projects/:projectID")
	{
		projectGroup.PUT("/settings", mw.IsAdminUser(), mw.RequirePayload(), h.saveProjectSettings)
		projectGroup.GET("/reviews", h.getPeerReviews)
		projectGroup.GET("/reviews/summary", h.getPeerReviewSummary)
		projectGroup.GET("/reviews/export", h.exportPeerReviews) // ?format=csv|json
	}

	orgGroup.DELETE("/reviews/:reviewID", mw.IsAdminUser(), h.deletePeerReview)
}

func (h *HttpEndpoints) getRubrics(c *gin.Context) {
	orgID := c.Param("orgID")

	rubrics, err := peerreview.ListRubrics(c.Request.Context(), orgID)
	if err != nil {
		respondWithError(c, err, "failed to get rubrics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rubrics": rubrics})
}

func (h *HttpEndpoints) getRubric(c *gin.Context) {
	orgID := c.Param("orgID")
	rubricID, ok := requireObjectID(c, "rubricID")
	if !ok {
		return
	}

	rubric, err := peerreview.GetRubric(c.Request.Context(), orgID, rubricID)
	if err != nil {
		respondWithError(c, err, "failed to get rubric")
		return
	}
	c.JSON(http.StatusOK, rubric)
}

func (h *HttpEndpoints) createRubric(c *gin.Context) {
	orgID := c.Param("orgID")

	var req prTypes.Rubric
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()), slog.String("requestID", mw.GetRequestID(c)))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().Unix()
	req.ID = primitive.NilObjectID
	req.CreatedAt = now
	req.UpdatedAt = now

	rubric, err := peerreview.SaveRubric(c.Request.Context(), orgID, req)
	if err != nil {
		respondWithError(c, err, "failed to create rubric")
		return
	}

	slog.Info("rubric created", slog.String("orgID", orgID), slog.String("rubricID", rubric.ID.Hex()), slog.String("userID", userIDFromCtx(c)))
	c.JSON(http.StatusOK, rubric)
}

func (h *HttpEndpoints) updateRubric(c *gin.Context) {
	orgID := c.Param("orgID")
	rubricID, ok := requireObjectID(c, "rubricID")
	if !ok {
		return
	}

	var req prTypes.Rubric
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()), slog.String("requestID", mw.GetRequestID(c)))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := peerreview.GetRubric(c.Request.Context(), orgID, rubricID)
	if err != nil {
		respondWithError(c, err, "failed to update rubric")
		return
	}

	req.ID = existing.ID
	req.CreatedAt = existing.CreatedAt
	req.UpdatedAt = time.Now().Unix()

	rubric, err := peerreview.SaveRubric(c.Request.Context(), orgID, req)
	if err != nil {
		respondWithError(c, err, "failed to update rubric")
		return
	}

	slog.Info("rubric updated", slog.String("orgID", orgID), slog.String("rubricID", rubricID), slog.String("userID", userIDFromCtx(c)))
	c.JSON(http.StatusOK, rubric)
}

func (h *HttpEndpoints) deleteRubric(c *gin.Context) {
	orgID := c.Param("orgID")
	rubricID, ok := requireObjectID(c, "rubricID")
	if !ok {
		return
	}

	if err := peerreview.DeleteRubric(c.Request.Context(), orgID, rubricID); err != nil {
		respondWithError(c, err, "failed to delete rubric")
		return
	}

	slog.Info("rubric deleted", slog.String("orgID", orgID), slog.String("rubricID", rubricID), slog.String("userID", userIDFromCtx(c)))
	c.JSON(http.StatusOK, gin.H{"msg": "rubric deleted"})
}

func (h *HttpEndpoints) saveProjectSettings(c *gin.Context) {
	orgID := c.Param("orgID")
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	var req prTypes.ProjectSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()), slog.String("requestID", mw.GetRequestID(c)))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ProjectID = projectID
	req.UpdatedAt = time.Now().Unix()

	if err := peerreview.SaveProjectSettings(c.Request.Context(), orgID, req); err != nil {
		respondWithError(c, err, "failed to save project settings")
		return
	}

	slog.Info("project settings saved", slog.String("orgID", orgID), slog.String("projectID", projectID), slog.String("userID", userIDFromCtx(c)))
	c.JSON(http.StatusOK, req)
}

func (h *HttpEndpoints) getPeerReviews(c *gin.Context) {
	orgID := c.Param("orgID")
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	query, err := apihelpers.ParsePaginatedQueryFromCtx(c)
	if err != nil {
		slog.Warn("invalid pagination query", slog.String("error", err.Error()), slog.String("requestID", mw.GetRequestID(c)))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviews, paginationInfo, err := peerreview.GetPeerReviews(c.Request.Context(), orgID, projectID, query.Page, query.Limit)
	if err != nil {
		respondWithError(c, err, "failed to get peer reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{"peerReviews": reviews, "pagination": paginationInfo})
}

func (h *HttpEndpoints) getPeerReviewSummary(c *gin.Context) {
	orgID := c.Param("orgID")
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	summary, err := peerreview.GetPeerReviewSummary(c.Request.Context(), orgID, projectID)
	if err != nil {
		respondWithError(c, err, "failed to get peer review summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *HttpEndpoints) exportPeerReviews(c *gin.Context) {
	orgID := c.Param("orgID")
	projectID, ok := requireProjectID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", exporter.FORMAT_CSV)
	contentType := "text/csv"
	switch format {
	case exporter.FORMAT_CSV:
	case exporter.FORMAT_JSON:
		contentType = "application/json"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format: " + format})
		return
	}

	ctx := c.Request.Context()
	settings, err := peerreview.GetProjectSettings(ctx, orgID, projectID)
	if err != nil {
		respondWithError(c, err, "failed to export peer reviews")
		return
	}
	rubric, err := peerreview.GetProjectRubric(ctx, orgID, settings)
	if err != nil {
		respondWithError(c, err, "failed to export peer reviews")
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=peer-reviews_%s.%s", projectID, format))
	c.Status(http.StatusOK)

	re, err := exporter.NewReviewExporter(rubric, c.Writer, format)
	if err != nil {
		slog.Error("failed to init exporter", slog.String("error", err.Error()))
		return
	}
	if err := peerreview.ForEachPeerReview(ctx, orgID, projectID, 0, re.WriteReview); err != nil {
		slog.Error("export interrupted", slog.String("orgID", orgID), slog.String("projectID", projectID), slog.String("error", err.Error()))
		return
	}
	if err := re.Finish(); err != nil {
		slog.Error("failed to finish export", slog.String("orgID", orgID), slog.String("projectID", projectID), slog.String("error", err.Error()))
		return
	}

	slog.Info("peer reviews exported", slog.String("orgID", orgID), slog.String("projectID", projectID), slog.Int("count", re.Count()), slog.String("userID", userIDFromCtx(c)))
}

func (h *HttpEndpoints) deletePeerReview(c *gin.Context) {
	orgID := c.Param("orgID")
	reviewID, ok := requireObjectID(c, "reviewID")
	if !ok {
		return
	}

	if err := peerreview.DeletePeerReview(c.Request.Context(), orgID, reviewID); err != nil {
		respondWithError(c, err, "failed to delete peer review")
		return
	}

	slog.Info("peer review deleted", slog.String("orgID", orgID), slog.String("peerReviewID", reviewID), slog.String("userID", userIDFromCtx(c)))
	c.JSON(http.StatusOK, gin.H{"msg": "peer review deleted"})
}
