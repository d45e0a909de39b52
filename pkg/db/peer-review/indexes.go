package peerreview

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/conductor-oer/conductor-backend/pkg/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var indexesForRubricsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "orgID", Value: 1},
			{Key: "isOrgDefault", Value: 1},
		},
		Options: options.Index().SetName("orgID_1_isOrgDefault_1"),
	},
	{
		Keys: bson.D{
			{Key: "rubricTitle", Value: 1},
		},
		Options: options.Index().SetName("rubricTitle_1"),
	},
}

var indexesForPeerReviewsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "projectID", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("projectID_1_createdAt_-1"),
	},
	{
		Keys: bson.D{
			{Key: "rubricID", Value: 1},
		},
		Options: options.Index().SetName("rubricID_1"),
	},
	{
		Keys: bson.D{
			{Key: "author", Value: 1},
		},
		Options: options.Index().SetName("author_1"),
	},
}

var indexesForProjectSettingsCollection = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "projectID", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("projectID_1"),
	},
}

func (dbService *PeerReviewDBService) CreateDefaultIndexes() {
	if err := dbService.ensureIndexes(); err != nil {
		slog.Error("Error creating default indexes for peer review DB", slog.String("error", err.Error()))
	}
}

func (dbService *PeerReviewDBService) DropIndexes(dropAll bool) {
	for _, orgID := range dbService.OrgIDs {
		dbService.dropIndexesForCollection(dbService.collectionRubrics(orgID), indexesForRubricsCollection, dropAll)
		dbService.dropIndexesForCollection(dbService.collectionPeerReviews(orgID), indexesForPeerReviewsCollection, dropAll)
		dbService.dropIndexesForCollection(dbService.collectionProjectSettings(orgID), indexesForProjectSettingsCollection, dropAll)
	}
}

func (dbService *PeerReviewDBService) dropIndexesForCollection(collection *mongo.Collection, defaults []mongo.IndexModel, dropAll bool) {
	ctx, cancel := dbService.getContext(context.Background())
	defer cancel()

	if dropAll {
		_, err := collection.Indexes().DropAll(ctx)
		if err != nil {
			slog.Error("Error dropping all indexes", slog.String("collection", collection.Name()), slog.String("error", err.Error()))
		}
		return
	}

	for _, index := range defaults {
		if index.Options == nil || index.Options.Name == nil {
			slog.Error("Index name is nil", slog.String("collection", collection.Name()), slog.String("index", fmt.Sprintf("%+v", index)))
			continue
		}
		indexName := *index.Options.Name
		_, err := collection.Indexes().DropOne(ctx, indexName)
		if err != nil {
			slog.Error("Error dropping index", slog.String("collection", collection.Name()), slog.String("indexName", indexName), slog.String("error", err.Error()))
		}
	}
}

// GetIndexes lists the indexes per collection for one org.
func (dbService *PeerReviewDBService) GetIndexes(ctx context.Context, orgID string) (map[string][]bson.M, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	result := map[string][]bson.M{}
	for _, collection := range []*mongo.Collection{
		dbService.collectionRubrics(orgID),
		dbService.collectionPeerReviews(orgID),
		dbService.collectionProjectSettings(orgID),
	} {
		indexes, err := db.ListCollectionIndexes(ctx, collection)
		if err != nil {
			return nil, err
		}
		result[collection.Name()] = indexes
	}
	return result, nil
}
