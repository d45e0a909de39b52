package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	peerreview "github.com/conductor-oer/conductor-backend/pkg/peer-review"
	"github.com/conductor-oer/conductor-backend/pkg/peer-review/exporter"
)

func main() {
	initJob()

	slog.Info("Starting peer review export job")
	start := time.Now()
	ctx := context.Background()

	createdAfter := startOfDay(start.Add(-lookback)).Unix()
	for _, task := range conf.PeerReviewExports.ExportTasks {
		if err := runExportTask(ctx, task, start, createdAfter); err != nil {
			slog.Error("Error exporting peer reviews", slog.String("orgID", task.OrgID), slog.String("projectID", task.ProjectID), slog.String("error", err.Error()))
		}
	}

	removed, err := cleanupOldExports(conf.ExportPath, start, retention)
	if err != nil {
		slog.Error("Error cleaning up old exports", slog.String("error", err.Error()))
	} else if len(removed) > 0 {
		slog.Info("Removed old export files", slog.Int("count", len(removed)))
	}

	if err := peerReviewDBService.DBClient.Disconnect(ctx); err != nil {
		slog.Error("Error closing DB connection", slog.String("error", err.Error()))
	}
	slog.Info("Peer review export job completed", slog.String("duration", time.Since(start).String()))
}

func runExportTask(ctx context.Context, task PeerReviewExportTask, now time.Time, createdAfter int64) error {
	filename := filepath.Join(conf.ExportPath, exportFileName(now, task.ProjectID, task.ExportFormat))
	if fileExists(filename) && !conf.PeerReviewExports.OverrideOld {
		slog.Debug("Export file already exists, skipping", slog.String("file", filename))
		return nil
	}

	settings, err := peerreview.GetProjectSettings(ctx, task.OrgID, task.ProjectID)
	if err != nil {
		return err
	}
	rubric, err := peerreview.GetProjectRubric(ctx, task.OrgID, settings)
	if err != nil {
		return err
	}

	// write to a temporary file first so a failed run never leaves a partial export
	tmpFilename := filename + ".tmp"
	file, err := os.Create(tmpFilename)
	if err != nil {
		return err
	}

	re, err := exporter.NewReviewExporter(rubric, file, task.ExportFormat)
	if err == nil {
		err = peerreview.ForEachPeerReview(ctx, task.OrgID, task.ProjectID, createdAfter, re.WriteReview)
	}
	if err == nil {
		err = re.Finish()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpFilename)
		return err
	}

	if err := os.Rename(tmpFilename, filename); err != nil {
		return err
	}
	slog.Info("Peer reviews exported", slog.String("orgID", task.OrgID), slog.String("projectID", task.ProjectID), slog.String("file", filename), slog.Int("count", re.Count()))
	return nil
}
