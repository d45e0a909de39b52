package peerreview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	prDB "github.com/conductor-oer/conductor-backend/pkg/db/peer-review"
	"github.com/conductor-oer/conductor-backend/pkg/peer-review/rubricengine"
	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
	"go.mongodb.org/mongo-driver/mongo"
)

// SubmitPeerReview re-validates a posted submission against the project's
// rubric and stores it. For authenticated reviewers the name and email come
// from the account, not from the payload.
func SubmitPeerReview(ctx context.Context, orgID string, sub prTypes.Submission, submitter prTypes.Submitter) (string, error) {
	if strings.TrimSpace(sub.ProjectID) == "" {
		return "", fmt.Errorf("%w: projectID is required", ErrInvalidSubmission)
	}

	settings, err := GetProjectSettings(ctx, orgID, sub.ProjectID)
	if err != nil {
		return "", err
	}
	if !submitter.IsAuthenticated() && !settings.AllowAnonymous {
		return "", ErrAnonymousNotAllowed
	}

	rubric, err := GetProjectRubric(ctx, orgID, settings)
	if err != nil {
		return "", err
	}

	elements, err := rubricengine.ApplyResponses(rubricengine.Normalize(rubric), sub.PromptResponses)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidSubmission, err.Error())
	}

	meta := sub.FormMeta()
	if submitter.IsAuthenticated() {
		meta.Authenticated = true
		meta.FirstName = submitter.FirstName
		meta.LastName = submitter.LastName
		meta.Email = submitter.Email
	}

	res := rubricengine.Validate(elements, meta)
	if !res.Valid {
		return "", &ValidationError{Issues: res.Issues}
	}

	review := prTypes.PeerReview{
		ProjectID:       sub.ProjectID,
		RubricID:        rubric.ID.Hex(),
		RubricTitle:     rubric.RubricTitle,
		Author:          submitter.UserID,
		Anonymous:       !submitter.IsAuthenticated(),
		AuthorType:      meta.AuthorType,
		AuthorFirst:     meta.FirstName,
		AuthorLast:      meta.LastName,
		AuthorEmail:     meta.Email,
		Rating:          meta.Rating,
		PromptResponses: rubricengine.Serialize(res.Elements),
		CreatedAt:       time.Now().Unix(),
	}

	id, err := store.AddPeerReview(ctx, orgID, review)
	if err != nil {
		return "", err
	}

	slog.Info("peer review submitted", slog.String("orgID", orgID), slog.String("projectID", sub.ProjectID), slog.String("peerReviewID", id), slog.Bool("anonymous", review.Anonymous))

	if n := notifier; n != nil && len(settings.NotifyEmails) > 0 {
		go n.notifyReviewReceived(orgID, settings, id, review)
	}
	return id, nil
}

func GetPeerReviews(ctx context.Context, orgID string, projectID string, page int64, limit int64) ([]prTypes.PeerReview, *prDB.PaginationInfos, error) {
	return store.GetPeerReviews(ctx, orgID, projectID, page, limit)
}

// ForEachPeerReview streams the reviews of a project created at or after createdAfter.
func ForEachPeerReview(ctx context.Context, orgID string, projectID string, createdAfter int64, fn func(review prTypes.PeerReview) error) error {
	return store.FindAndExecuteOnPeerReviews(ctx, orgID, projectID, createdAfter, true, fn)
}

func DeletePeerReview(ctx context.Context, orgID string, reviewID string) error {
	if err := store.DeletePeerReview(ctx, orgID, reviewID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPeerReviewNotFound
		}
		return err
	}
	return nil
}
