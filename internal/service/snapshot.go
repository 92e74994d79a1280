package service

import (
	"studytrack/internal/models"
)

// BuildSnapshot merges a catalog's targets with the counters of a daily
// record by exact subject name. Subjects in the catalog but absent from the
// record start at zero. The catalog's live targets are authoritative: a
// stored total_target never overrides them for the current session. Record
// entries for subjects no longer in the catalog are dropped.
func BuildSnapshot(catalog *models.Catalog, record *models.DailyRecord, date string) *models.Snapshot {
	snapshot := &models.Snapshot{
		UserID:   catalog.UserID,
		Date:     date,
		Subjects: make([]models.SnapshotSubject, 0, len(catalog.Subjects)),
	}

	for _, subject := range catalog.Subjects {
		entry := models.SnapshotSubject{Subject: subject}
		if record != nil {
			if counts, ok := record.Subjects[subject.Name]; ok {
				entry.Correct = counts.Correct
				entry.Wrong = counts.Wrong
				entry.Empty = counts.Empty
			}
		}
		snapshot.Subjects = append(snapshot.Subjects, entry)
	}

	return snapshot
}
