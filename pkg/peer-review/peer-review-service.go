package peerreview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	prDB "github.com/conductor-oer/conductor-backend/pkg/db/peer-review"
	"github.com/conductor-oer/conductor-backend/pkg/peer-review/rubricengine"
	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

var (
	ErrRubricNotFound      = errors.New("no rubric configured for project")
	ErrAnonymousNotAllowed = errors.New("project does not accept anonymous peer reviews")
	ErrInvalidRubric       = errors.New("invalid rubric definition")
	ErrInvalidSubmission   = errors.New("invalid submission")
	ErrInvalidSettings     = errors.New("invalid project settings")
	ErrPeerReviewNotFound  = errors.New("peer review not found")
)

// ValidationError is returned when a submission fails rubric validation.
type ValidationError struct {
	Issues []rubricengine.Issue
}

func (e *ValidationError) Error() string {
	kinds := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		kinds = append(kinds, fmt.Sprintf("%s(%s)", issue.Kind, issue.Field))
	}
	return "peer review validation failed: " + strings.Join(kinds, ", ")
}

type RubricStore interface {
	GetRubric(ctx context.Context, orgID string, rubricID string) (prTypes.Rubric, error)
	GetOrgDefaultRubric(ctx context.Context, orgID string) (prTypes.Rubric, error)
	GetRubrics(ctx context.Context, orgID string) ([]prTypes.Rubric, error)
	SaveRubric(ctx context.Context, orgID string, rubric prTypes.Rubric) (prTypes.Rubric, error)
	ClearOrgDefaultRubric(ctx context.Context, orgID string, exceptRubricID string) error
	DeleteRubric(ctx context.Context, orgID string, rubricID string) error
}

type ProjectSettingsStore interface {
	GetProjectSettings(ctx context.Context, orgID string, projectID string) (prTypes.ProjectSettings, error)
	SaveProjectSettings(ctx context.Context, orgID string, settings prTypes.ProjectSettings) error
}

type PeerReviewStore interface {
	AddPeerReview(ctx context.Context, orgID string, review prTypes.PeerReview) (string, error)
	GetPeerReviews(ctx context.Context, orgID string, projectID string, page int64, limit int64) ([]prTypes.PeerReview, *prDB.PaginationInfos, error)
	FindAndExecuteOnPeerReviews(ctx context.Context, orgID string, projectID string, createdAfter int64, returnOnError bool, fn func(review prTypes.PeerReview) error) error
	DeletePeerReview(ctx context.Context, orgID string, reviewID string) error
}

// Store is everything the service persists. *prDB.PeerReviewDBService implements it.
type Store interface {
	RubricStore
	ProjectSettingsStore
	PeerReviewStore
}

var _ Store = (*prDB.PeerReviewDBService)(nil)

var (
	store       Store
	rubricCache RubricCache
)

// RubricCache is the subset of the rubric cache the service uses; nil disables caching.
type RubricCache interface {
	Set(ctx context.Context, orgID string, rubric prTypes.Rubric) error
	Get(ctx context.Context, orgID string, rubricID string) (prTypes.Rubric, error)
	Delete(ctx context.Context, orgID string, rubricID string) error
}

func Init(
	prStore Store,
	cache RubricCache,
) {
	store = prStore
	rubricCache = cache
}
