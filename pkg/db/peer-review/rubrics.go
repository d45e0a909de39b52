package peerreview

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

func (dbService *PeerReviewDBService) CreateIndexForRubricsCollection(orgID string) error {
	ctx, cancel := dbService.getContext(context.Background())
	defer cancel()

	collection := dbService.collectionRubrics(orgID)
	dbService.logExistingIndexes(ctx, collection)

	_, err := collection.Indexes().CreateMany(ctx, indexesForRubricsCollection)
	return err
}

func (dbService *PeerReviewDBService) GetRubric(ctx context.Context, orgID string, rubricID string) (rubric prTypes.Rubric, err error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(rubricID)
	if err != nil {
		return rubric, err
	}

	filter := bson.M{
		"_id": _id,
	}

	err = dbService.collectionRubrics(orgID).FindOne(ctx, filter).Decode(&rubric)
	return rubric, err
}

func (dbService *PeerReviewDBService) GetOrgDefaultRubric(ctx context.Context, orgID string) (rubric prTypes.Rubric, err error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{
		"isOrgDefault": true,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	err = dbService.collectionRubrics(orgID).FindOne(ctx, filter, opts).Decode(&rubric)
	return rubric, err
}

// GetRubrics returns all rubrics of the org without their element lists.
func (dbService *PeerReviewDBService) GetRubrics(ctx context.Context, orgID string) (rubrics []prTypes.Rubric, err error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "rubricTitle", Value: 1}}).
		SetProjection(bson.M{"headings": 0, "textBlocks": 0, "prompts": 0})

	cursor, err := dbService.collectionRubrics(orgID).Find(ctx, bson.M{}, opts)
	if err != nil {
		return rubrics, err
	}
	defer cursor.Close(ctx)

	rubrics = []prTypes.Rubric{}
	err = cursor.All(ctx, &rubrics)
	return rubrics, err
}

// SaveRubric inserts the rubric if it has no ID yet, otherwise replaces it.
func (dbService *PeerReviewDBService) SaveRubric(ctx context.Context, orgID string, rubric prTypes.Rubric) (prTypes.Rubric, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	now := time.Now().Unix()
	rubric.OrgID = orgID
	rubric.UpdatedAt = now

	if rubric.ID.IsZero() {
		rubric.CreatedAt = now
		res, err := dbService.collectionRubrics(orgID).InsertOne(ctx, rubric)
		if err != nil {
			return rubric, err
		}
		rubric.ID = res.InsertedID.(primitive.ObjectID)
		return rubric, nil
	}

	filter := bson.M{"_id": rubric.ID}
	res, err := dbService.collectionRubrics(orgID).ReplaceOne(ctx, filter, rubric)
	if err != nil {
		return rubric, err
	}
	if res.MatchedCount == 0 {
		return rubric, mongo.ErrNoDocuments
	}
	return rubric, nil
}

// ClearOrgDefaultRubric removes the org default flag from every rubric except exceptRubricID.
func (dbService *PeerReviewDBService) ClearOrgDefaultRubric(ctx context.Context, orgID string, exceptRubricID string) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{"isOrgDefault": true}
	if exceptRubricID != "" {
		_id, err := primitive.ObjectIDFromHex(exceptRubricID)
		if err != nil {
			return err
		}
		filter["_id"] = bson.M{"$ne": _id}
	}

	_, err := dbService.collectionRubrics(orgID).UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"isOrgDefault": false, "updatedAt": time.Now().Unix()},
	})
	return err
}

func (dbService *PeerReviewDBService) DeleteRubric(ctx context.Context, orgID string, rubricID string) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(rubricID)
	if err != nil {
		return err
	}

	res, err := dbService.collectionRubrics(orgID).DeleteOne(ctx, bson.M{"_id": _id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (dbService *PeerReviewDBService) FindAndExecuteOnRubrics(
	ctx context.Context,
	orgID string,
	fn func(rubric prTypes.Rubric) error,
) error {
	cursor, err := dbService.collectionRubrics(orgID).Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var rubric prTypes.Rubric
		if err = cursor.Decode(&rubric); err != nil {
			slog.Error("Error while decoding rubric", slog.String("error", err.Error()))
			continue
		}

		if err = fn(rubric); err != nil {
			slog.Error("Error while executing function on rubric", slog.String("rubricID", rubric.ID.Hex()), slog.String("error", err.Error()))
			continue
		}
	}
	return cursor.Err()
}
