package peerreview

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

func (dbService *PeerReviewDBService) CreateIndexForProjectSettingsCollection(orgID string) error {
	ctx, cancel := dbService.getContext(context.Background())
	defer cancel()

	collection := dbService.collectionProjectSettings(orgID)
	dbService.logExistingIndexes(ctx, collection)

	_, err := collection.Indexes().CreateMany(ctx, indexesForProjectSettingsCollection)
	return err
}

func (dbService *PeerReviewDBService) GetProjectSettings(ctx context.Context, orgID string, projectID string) (settings prTypes.ProjectSettings, err error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{"projectID": projectID}
	err = dbService.collectionProjectSettings(orgID).FindOne(ctx, filter).Decode(&settings)
	return settings, err
}

func (dbService *PeerReviewDBService) SaveProjectSettings(ctx context.Context, orgID string, settings prTypes.ProjectSettings) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	settings.UpdatedAt = time.Now().Unix()

	filter := bson.M{"projectID": settings.ProjectID}
	opts := options.Replace().SetUpsert(true)
	_, err := dbService.collectionProjectSettings(orgID).ReplaceOne(ctx, filter, settings, opts)
	return err
}
