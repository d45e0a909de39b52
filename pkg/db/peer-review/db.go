package peerreview

import (
	"context"
	"log/slog"
	"time"

	"github.com/conductor-oer/conductor-backend/pkg/db"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection names
const (
	COLLECTION_NAME_RUBRICS          = "rubrics"
	COLLECTION_NAME_PEER_REVIEWS     = "peerReviews"
	COLLECTION_NAME_PROJECT_SETTINGS = "projectSettings"
)

type PeerReviewDBService struct {
	DBClient        *mongo.Client
	timeout         int
	noCursorTimeout bool
	DBNamePrefix    string
	OrgIDs          []string
}

func NewPeerReviewDBService(configs db.DBConfig) (*PeerReviewDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), configs.ConnectTimeout())
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(configs.MaxConnIdleTime()),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)

	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), configs.ConnectTimeout())
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	prDBSc := &PeerReviewDBService{
		DBClient:        dbClient,
		timeout:         configs.Timeout,
		noCursorTimeout: configs.NoCursorTimeout,
		DBNamePrefix:    configs.DBNamePrefix,
		OrgIDs:          configs.OrgIDs,
	}

	if configs.RunIndexCreation {
		if err := prDBSc.ensureIndexes(); err != nil {
			slog.Error("Error ensuring indexes for peer review DB", slog.String("error", err.Error()))
		}
	}

	return prDBSc, nil
}

func (dbService *PeerReviewDBService) getDBName(orgID string) string {
	return db.OrgDBName(dbService.DBNamePrefix, orgID)
}

func (dbService *PeerReviewDBService) collectionRubrics(orgID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(orgID)).Collection(COLLECTION_NAME_RUBRICS)
}

func (dbService *PeerReviewDBService) collectionPeerReviews(orgID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(orgID)).Collection(COLLECTION_NAME_PEER_REVIEWS)
}

func (dbService *PeerReviewDBService) collectionProjectSettings(orgID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(orgID)).Collection(COLLECTION_NAME_PROJECT_SETTINGS)
}

func (dbService *PeerReviewDBService) getContext(parent context.Context) (ctx context.Context, cancel context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, time.Duration(dbService.timeout)*time.Second)
}

func (dbService *PeerReviewDBService) ensureIndexes() error {
	slog.Debug("Ensuring indexes for peer review DB")
	for _, orgID := range dbService.OrgIDs {
		if err := dbService.CreateIndexForRubricsCollection(orgID); err != nil {
			slog.Error("Error creating index for rubrics", slog.String("orgID", orgID), slog.String("error", err.Error()))
		}

		if err := dbService.CreateIndexForPeerReviewsCollection(orgID); err != nil {
			slog.Error("Error creating index for peer reviews", slog.String("orgID", orgID), slog.String("error", err.Error()))
		}

		if err := dbService.CreateIndexForProjectSettingsCollection(orgID); err != nil {
			slog.Error("Error creating index for project settings", slog.String("orgID", orgID), slog.String("error", err.Error()))
		}
	}
	return nil
}

// logExistingIndexes is used in debug mode to report what an org DB already holds.
func (dbService *PeerReviewDBService) logExistingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes, err := db.ListCollectionIndexes(ctx, collection)
	if err != nil {
		slog.Debug("Error listing indexes", slog.String("collection", collection.Name()), slog.String("error", err.Error()))
		return
	}
	slog.Debug("Existing indexes", slog.String("collection", collection.Name()), slog.Int("count", len(indexes)))
}
