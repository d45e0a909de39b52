package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/conductor-oer/conductor-backend/pkg/db"
	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

func main() {
	initJob()

	dropIndexes()

	createIndexes()

	getIndexes()

	migrationTasks()

	if err := peerReviewDBService.DBClient.Disconnect(context.Background()); err != nil {
		slog.Error("Error disconnecting from DB", slog.String("error", err.Error()))
	}
}

func dropIndexes() {
	switch conf.TaskConfigs.DropIndexes {
	case DropIndexesModeAll:
		slog.Info("Dropping all indexes")
		peerReviewDBService.DropIndexes(true)
	case DropIndexesModeDefaults:
		slog.Info("Dropping default indexes")
		peerReviewDBService.DropIndexes(false)
	}
}

func createIndexes() {
	if conf.TaskConfigs.CreateIndexes {
		slog.Info("Creating default indexes")
		peerReviewDBService.CreateDefaultIndexes()
	}
}

func getIndexes() {
	if !conf.TaskConfigs.GetIndexes {
		return
	}
	for _, orgID := range peerReviewDBService.OrgIDs {
		indexes, err := peerReviewDBService.GetIndexes(context.Background(), orgID)
		if err != nil {
			slog.Error("Error getting indexes", slog.String("orgID", orgID), slog.String("error", err.Error()))
			continue
		}
		for collection, collectionIndexes := range indexes {
			for _, index := range db.DescribeIndexes(collectionIndexes) {
				slog.Info("Index", slog.String("orgID", orgID), slog.String("collection", collection), slog.String("name", index.Name), slog.String("keys", index.Keys), slog.Bool("unique", index.Unique))
			}
		}
	}
}

func migrationTasks() {
	if conf.TaskConfigs.MigrationTasks.ResolveRubricOrders {
		for _, orgID := range peerReviewDBService.OrgIDs {
			start := time.Now()
			slog.Info("Resolving rubric element orders", slog.String("orgID", orgID))
			updated, err := resolveRubricOrders(context.Background(), orgID)
			if err != nil {
				slog.Error("Error resolving rubric element orders", slog.String("orgID", orgID), slog.String("error", err.Error()))
			}
			slog.Info("Rubric element orders resolved", slog.String("orgID", orgID), slog.Int("updated", updated), slog.String("duration", time.Since(start).String()))
		}
	}
}

func resolveRubricOrders(ctx context.Context, orgID string) (int, error) {
	updated := 0
	err := peerReviewDBService.FindAndExecuteOnRubrics(ctx, orgID, func(rubric prTypes.Rubric) error {
		if !rubric.ResolveOrders() {
			return nil
		}
		if _, err := peerReviewDBService.SaveRubric(ctx, orgID, rubric); err != nil {
			return err
		}
		updated++
		return nil
	})
	return updated, err
}
