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

func (dbService *PeerReviewDBService) CreateIndexForPeerReviewsCollection(orgID string) error {
	ctx, cancel := dbService.getContext(context.Background())
	defer cancel()

	collection := dbService.collectionPeerReviews(orgID)
	dbService.logExistingIndexes(ctx, collection)

	_, err := collection.Indexes().CreateMany(ctx, indexesForPeerReviewsCollection)
	return err
}

func (dbService *PeerReviewDBService) AddPeerReview(ctx context.Context, orgID string, review prTypes.PeerReview) (string, error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	if review.CreatedAt == 0 {
		review.CreatedAt = time.Now().Unix()
	}

	res, err := dbService.collectionPeerReviews(orgID).InsertOne(ctx, review)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (dbService *PeerReviewDBService) GetPeerReviewByID(ctx context.Context, orgID string, reviewID string) (review prTypes.PeerReview, err error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return review, err
	}

	err = dbService.collectionPeerReviews(orgID).FindOne(ctx, bson.M{"_id": _id}).Decode(&review)
	return review, err
}

// GetPeerReviews returns one page of a project's reviews, newest first.
func (dbService *PeerReviewDBService) GetPeerReviews(ctx context.Context, orgID string, projectID string, page int64, limit int64) (reviews []prTypes.PeerReview, paginationInfo *PaginationInfos, err error) {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	filter := bson.M{"projectID": projectID}

	totalCount, err := dbService.collectionPeerReviews(orgID).CountDocuments(ctx, filter)
	if err != nil {
		return reviews, nil, err
	}

	paginationInfo = prepPaginationInfos(
		totalCount,
		page,
		limit,
	)

	skip := (paginationInfo.CurrentPage - 1) * paginationInfo.PageSize

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(skip).SetLimit(paginationInfo.PageSize)
	cursor, err := dbService.collectionPeerReviews(orgID).Find(ctx, filter, opts)
	if err != nil {
		return reviews, nil, err
	}
	defer cursor.Close(ctx)

	reviews = []prTypes.PeerReview{}
	if err = cursor.All(ctx, &reviews); err != nil {
		return reviews, nil, err
	}

	return reviews, paginationInfo, nil
}

// FindAndExecuteOnPeerReviews calls fn for every review of the project created
// at or after createdAfter, oldest first. Decoding errors are logged and skipped.
func (dbService *PeerReviewDBService) FindAndExecuteOnPeerReviews(
	ctx context.Context,
	orgID string,
	projectID string,
	createdAfter int64,
	returnOnError bool,
	fn func(review prTypes.PeerReview) error,
) error {
	filter := bson.M{"projectID": projectID}
	if createdAfter > 0 {
		filter["createdAt"] = bson.M{"$gte": createdAfter}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if dbService.noCursorTimeout {
		opts.SetNoCursorTimeout(true)
	}

	cursor, err := dbService.collectionPeerReviews(orgID).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var review prTypes.PeerReview
		if err = cursor.Decode(&review); err != nil {
			slog.Error("Error while decoding peer review", slog.String("error", err.Error()))
			continue
		}

		if err = fn(review); err != nil {
			slog.Error("Error while executing function on peer review", slog.String("peerReviewID", review.ID.Hex()), slog.String("error", err.Error()))
			if returnOnError {
				return err
			}
			continue
		}
	}
	return cursor.Err()
}

func (dbService *PeerReviewDBService) DeletePeerReview(ctx context.Context, orgID string, reviewID string) error {
	ctx, cancel := dbService.getContext(ctx)
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return err
	}

	res, err := dbService.collectionPeerReviews(orgID).DeleteOne(ctx, bson.M{"_id": _id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
