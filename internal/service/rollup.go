package service

import (
	"time"

	"studytrack/internal/models"
)

// Window selects the horizon a rollup covers
type Window string

const (
	WindowAll       Window = "all"
	WindowLast7Days Window = "last7days"
)

// ValidWindow reports whether w names a supported rollup horizon
func ValidWindow(w Window) bool {
	return w == WindowAll || w == WindowLast7Days
}

// OverallStats summarizes a rollup across all subjects
type OverallStats struct {
	Correct  int     `json:"correct"`
	Wrong    int     `json:"wrong"`
	Empty    int     `json:"empty"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// RollupResult is a read-only per-subject and overall aggregate view
type RollupResult struct {
	Window   Window                         `json:"window"`
	Subjects map[string]models.SubjectCount `json:"subjects"`
	Overall  OverallStats                   `json:"overall"`
}

// Rollup folds the live snapshot plus a sequence of historical daily
// records into per-subject and overall totals. The snapshot's own date
// always counts exactly once: callers pass history that excludes the
// active date (the store adapter's ListRecentExcluding guarantees this).
// History entries for subjects not in the current catalog are skipped,
// never fabricated into new subjects. The fold mutates neither input.
func Rollup(snapshot *models.Snapshot, history []models.DailyRecord, window Window, today time.Time) *RollupResult {
	result := &RollupResult{
		Window:   window,
		Subjects: make(map[string]models.SubjectCount, len(snapshot.Subjects)),
	}

	// Seed from the live snapshot: the currently selected date's counts
	for i := range snapshot.Subjects {
		sub := &snapshot.Subjects[i]
		result.Subjects[sub.Name] = models.SubjectCount{
			Correct: sub.Correct,
			Wrong:   sub.Wrong,
			Empty:   sub.Empty,
			Total:   sub.Answered(),
		}
	}

	cutoff := today.AddDate(0, 0, -7)
	for _, record := range history {
		if window == WindowLast7Days && !withinLastWeek(record.Date, cutoff) {
			continue
		}
		for name, counts := range record.Subjects {
			existing, ok := result.Subjects[name]
			if !ok {
				// Subject no longer in the catalog
				continue
			}
			existing.Correct += counts.Correct
			existing.Wrong += counts.Wrong
			existing.Empty += counts.Empty
			existing.Total += counts.Correct + counts.Wrong + counts.Empty
			result.Subjects[name] = existing
		}
	}

	for _, counts := range result.Subjects {
		result.Overall.Correct += counts.Correct
		result.Overall.Wrong += counts.Wrong
		result.Overall.Empty += counts.Empty
		result.Overall.Total += counts.Total
	}
	if result.Overall.Total > 0 {
		result.Overall.Accuracy = float64(result.Overall.Correct) / float64(result.Overall.Total)
	}

	return result
}

// withinLastWeek reports whether date falls on or after the cutoff day.
// Malformed dates are excluded rather than guessed at.
func withinLastWeek(date string, cutoff time.Time) bool {
	parsed, err := time.Parse(models.DateFormat, date)
	if err != nil {
		return false
	}
	cutoffDay := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)
	return !parsed.Before(cutoffDay)
}
