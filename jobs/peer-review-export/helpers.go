package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	exportFileMarker = "##peer-reviews##"
	exportDateLayout = "2006-01-02"
)

// StartOfDay returns the start time of the given date (00:00:00)
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func exportFileName(date time.Time, projectID string, format string) string {
	return fmt.Sprintf("%s%s%s.%s", date.Format(exportDateLayout), exportFileMarker, projectID, format)
}

// exportFileDate reads the date prefix of an export file name. ok is false
// for files not written by this job.
func exportFileDate(filename string) (time.Time, bool) {
	dateStr, _, found := strings.Cut(filename, exportFileMarker)
	if !found {
		return time.Time{}, false
	}
	date, err := time.ParseInLocation(exportDateLayout, dateStr, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false
		}
		return false
	}
	return !info.IsDir()
}

// cleanupOldExports removes export files dated before now minus retention and
// returns the removed file names.
func cleanupOldExports(dir string, now time.Time, retention time.Duration) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	cutoff := startOfDay(now.Add(-retention))
	removed := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		date, ok := exportFileDate(entry.Name())
		if !ok || !date.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			slog.Error("Error removing old export file", slog.String("file", entry.Name()), slog.String("error", err.Error()))
			continue
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}
