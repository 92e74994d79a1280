package repository

import (
	"os"
	"testing"

	"studytrack/internal/database"
	"studytrack/internal/models"
)

func openRecordRepo(t *testing.T, dbPath string) (*database.DB, *RecordRepository) {
	t.Helper()

	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db, NewRecordRepository(db)
}

func createRecordTestUser(t *testing.T, db *database.DB, email string) int64 {
	t.Helper()

	userID, err := db.ExecReturningID(
		"INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		email, "hash", "Record Tester")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return userID
}

func upsertDay(t *testing.T, repo *RecordRepository, userID int64, date string, correct int) {
	t.Helper()

	err := repo.Upsert(&models.DailyRecord{
		UserID: userID,
		Date:   date,
		Subjects: map[string]models.SubjectCount{
			"Matematik": {Correct: correct, Total: correct},
		},
		Total:       correct,
		TotalTarget: 60,
	})
	if err != nil {
		t.Fatalf("Failed to upsert record for %s: %v", date, err)
	}
}

// TestRecordGetAbsent tests that a missing record is not an error
func TestRecordGetAbsent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, repo := openRecordRepo(t, "test_record_get.db")
	userID := createRecordTestUser(t, db, "absent@example.com")

	record, err := repo.Get(userID, "2026-03-10")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record != nil {
		t.Errorf("Get() = %+v, want nil for an absent record", record)
	}
}

// TestRecordUpsertRoundTrip tests that repeated repository writes for one
// (user, date) key converge to the latest payload
func TestRecordUpsertRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, repo := openRecordRepo(t, "test_record_roundtrip.db")
	userID := createRecordTestUser(t, db, "roundtrip@example.com")

	upsertDay(t, repo, userID, "2026-03-10", 1)
	upsertDay(t, repo, userID, "2026-03-10", 7)

	record, err := repo.Get(userID, "2026-03-10")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record == nil {
		t.Fatal("Get() returned nil after upsert")
	}
	if got := record.Subjects["Matematik"].Correct; got != 7 {
		t.Errorf("Correct = %d, want latest value 7", got)
	}
	if record.Total != 7 {
		t.Errorf("Total = %d, want 7", record.Total)
	}
}

// TestRecordListRecentOrderAndLimit tests that listing returns the newest
// dates first, truncated to the limit, scoped to the requested user
func TestRecordListRecentOrderAndLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, repo := openRecordRepo(t, "test_record_list.db")
	userID := createRecordTestUser(t, db, "list@example.com")
	otherID := createRecordTestUser(t, db, "other@example.com")

	// Inserted out of date order on purpose
	upsertDay(t, repo, userID, "2026-03-08", 1)
	upsertDay(t, repo, userID, "2026-03-10", 3)
	upsertDay(t, repo, userID, "2026-03-09", 2)
	upsertDay(t, repo, userID, "2026-03-11", 4)
	upsertDay(t, repo, otherID, "2026-03-12", 9)

	records, err := repo.ListRecent(userID, 3)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}

	wantDates := []string{"2026-03-11", "2026-03-10", "2026-03-09"}
	if len(records) != len(wantDates) {
		t.Fatalf("ListRecent() returned %d records, want %d", len(records), len(wantDates))
	}
	for i, want := range wantDates {
		if records[i].Date != want {
			t.Errorf("records[%d].Date = %s, want %s", i, records[i].Date, want)
		}
		if records[i].UserID != userID {
			t.Errorf("records[%d].UserID = %d, want %d", i, records[i].UserID, userID)
		}
	}
}

// TestRecordListRecentExcluding tests that exactly the excluded date is
// filtered out and the remaining rows come back newest first with their
// subject counts intact
func TestRecordListRecentExcluding(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, repo := openRecordRepo(t, "test_record_excluding.db")
	userID := createRecordTestUser(t, db, "excluding@example.com")

	upsertDay(t, repo, userID, "2026-03-09", 2)
	upsertDay(t, repo, userID, "2026-03-10", 3)
	upsertDay(t, repo, userID, "2026-03-11", 4)

	records, err := repo.ListRecentExcluding(userID, "2026-03-11", 10)
	if err != nil {
		t.Fatalf("ListRecentExcluding() error = %v", err)
	}

	wantDates := []string{"2026-03-10", "2026-03-09"}
	if len(records) != len(wantDates) {
		t.Fatalf("ListRecentExcluding() returned %d records, want %d", len(records), len(wantDates))
	}
	for i, want := range wantDates {
		if records[i].Date != want {
			t.Errorf("records[%d].Date = %s, want %s", i, records[i].Date, want)
		}
	}
	if got := records[0].Subjects["Matematik"].Correct; got != 3 {
		t.Errorf("records[0] Correct = %d, want 3", got)
	}
}
