package peerreview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/conductor-oer/conductor-backend/pkg/peer-review/rubricengine"
	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
	"go.mongodb.org/mongo-driver/mongo"
)

type PeerReviewForm struct {
	Settings prTypes.ProjectSettings `json:"settings"`
	Rubric   prTypes.Rubric          `json:"rubric"`
	Elements []rubricengine.Element  `json:"elements"`
}

func GetRubric(ctx context.Context, orgID string, rubricID string) (prTypes.Rubric, error) {
	if rubricCache != nil {
		rubric, err := rubricCache.Get(ctx, orgID, rubricID)
		if err == nil {
			return rubric, nil
		}
		slog.Debug("rubric not served from cache", slog.String("orgID", orgID), slog.String("rubricID", rubricID), slog.String("reason", err.Error()))
	}

	rubric, err := store.GetRubric(ctx, orgID, rubricID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return rubric, ErrRubricNotFound
		}
		return rubric, err
	}

	cacheRubric(ctx, orgID, rubric)
	return rubric, nil
}

func cacheRubric(ctx context.Context, orgID string, rubric prTypes.Rubric) {
	if rubricCache == nil {
		return
	}
	if err := rubricCache.Set(ctx, orgID, rubric); err != nil {
		slog.Warn("failed to cache rubric", slog.String("orgID", orgID), slog.String("rubricID", rubric.ID.Hex()), slog.String("error", err.Error()))
	}
}

func uncacheRubric(ctx context.Context, orgID string, rubricID string) {
	if rubricCache == nil {
		return
	}
	if err := rubricCache.Delete(ctx, orgID, rubricID); err != nil {
		slog.Warn("failed to remove rubric from cache", slog.String("orgID", orgID), slog.String("rubricID", rubricID), slog.String("error", err.Error()))
	}
}

// GetProjectSettings returns the stored settings, or defaults (org rubric, no
// anonymous reviews) when the project was never configured.
func GetProjectSettings(ctx context.Context, orgID string, projectID string) (prTypes.ProjectSettings, error) {
	settings, err := store.GetProjectSettings(ctx, orgID, projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return prTypes.ProjectSettings{ProjectID: projectID}, nil
		}
		return settings, err
	}
	return settings, nil
}

func SaveProjectSettings(ctx context.Context, orgID string, settings prTypes.ProjectSettings) error {
	if settings.ProjectID == "" {
		return fmt.Errorf("%w: projectID is required", ErrInvalidSettings)
	}
	for _, addr := range settings.NotifyEmails {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("%w: invalid notification email %q", ErrInvalidSettings, addr)
		}
	}
	if settings.RubricID != "" {
		if _, err := GetRubric(ctx, orgID, settings.RubricID); err != nil {
			return err
		}
	}
	return store.SaveProjectSettings(ctx, orgID, settings)
}

// GetProjectRubric resolves the rubric a project is reviewed with: the rubric
// chosen in the project settings, else the org default.
func GetProjectRubric(ctx context.Context, orgID string, settings prTypes.ProjectSettings) (prTypes.Rubric, error) {
	if settings.RubricID != "" {
		rubric, err := GetRubric(ctx, orgID, settings.RubricID)
		if err == nil {
			return rubric, nil
		}
		if !errors.Is(err, ErrRubricNotFound) {
			return rubric, err
		}
		slog.Warn("project rubric missing, using org default", slog.String("orgID", orgID), slog.String("projectID", settings.ProjectID), slog.String("rubricID", settings.RubricID))
	}

	rubric, err := store.GetOrgDefaultRubric(ctx, orgID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return rubric, ErrRubricNotFound
		}
		return rubric, err
	}
	return rubric, nil
}

func GetPeerReviewForm(ctx context.Context, orgID string, projectID string) (PeerReviewForm, error) {
	settings, err := GetProjectSettings(ctx, orgID, projectID)
	if err != nil {
		return PeerReviewForm{}, err
	}

	rubric, err := GetProjectRubric(ctx, orgID, settings)
	if err != nil {
		return PeerReviewForm{}, err
	}

	// reviewers never see who gets notified
	settings.NotifyEmails = nil

	return PeerReviewForm{
		Settings: settings,
		Rubric:   rubric,
		Elements: rubricengine.Normalize(rubric),
	}, nil
}

func ListRubrics(ctx context.Context, orgID string) ([]prTypes.Rubric, error) {
	return store.GetRubrics(ctx, orgID)
}

// SaveRubric checks and stores a rubric. Marking it as org default removes the
// flag from the other rubrics of the org.
func SaveRubric(ctx context.Context, orgID string, rubric prTypes.Rubric) (prTypes.Rubric, error) {
	if err := rubric.CheckDefinition(); err != nil {
		return rubric, fmt.Errorf("%w: %s", ErrInvalidRubric, err.Error())
	}
	rubric.AssignPromptIDs()

	saved, err := store.SaveRubric(ctx, orgID, rubric)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return saved, ErrRubricNotFound
		}
		return saved, err
	}

	if saved.IsOrgDefault {
		if err := store.ClearOrgDefaultRubric(ctx, orgID, saved.ID.Hex()); err != nil {
			slog.Error("failed to clear previous org default rubric", slog.String("orgID", orgID), slog.String("error", err.Error()))
		}
	}

	uncacheRubric(ctx, orgID, saved.ID.Hex())
	return saved, nil
}

func DeleteRubric(ctx context.Context, orgID string, rubricID string) error {
	if err := store.DeleteRubric(ctx, orgID, rubricID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrRubricNotFound
		}
		return err
	}
	uncacheRubric(ctx, orgID, rubricID)
	return nil
}
