package database

import (
	"context"
	"os"
	"testing"
)

func openTestDB(t *testing.T, dbPath string) *DB {
	t.Helper()

	db, err := Initialize(dbPath)
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
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	// Skip if not in integration test mode
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t, "test_integration.db")

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	// Test that tables were created by migrations
	tables := []string{"users", "sessions", "catalog_subjects", "daily_records"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		err := db.QueryRowContext(ctx, query, table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestDailyRecordUpsert tests that repeated writes for one (user, date)
// key converge into a single row holding the latest values
func TestDailyRecordUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t, "test_upsert.db")

	userID, err := db.ExecReturningID(
		"INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		"upsert@example.com", "hash", "Upsert Tester")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	upsert := db.Dialect.UpsertDailyRecord()

	if _, err := db.Exec(upsert, userID, "2026-03-10", `{"Matematik":{"correct":1,"wrong":0,"empty":0,"total":1}}`, 1, 60); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if _, err := db.Exec(upsert, userID, "2026-03-10", `{"Matematik":{"correct":5,"wrong":2,"empty":0,"total":7}}`, 7, 60); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM daily_records WHERE user_id = ?", userID).Scan(&count); err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row after repeated upserts, got %d", count)
	}

	var total int
	if err := db.QueryRow("SELECT total FROM daily_records WHERE user_id = ? AND record_date = ?", userID, "2026-03-10").Scan(&total); err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}
	if total != 7 {
		t.Errorf("Expected latest total 7, got %d", total)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t, "test_transactions.db")

	ctx := context.Background()

	// Test successful transaction
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		"test@example.com", "hashedpass", "Test User")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", "test@example.com").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}

	// Test rollback
	tx2, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}

	_, err = tx2.ExecContext(ctx, "INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		"test2@example.com", "hashedpass", "Second User")
	if err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}

	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", "test2@example.com").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 users after rollback, got %d", count)
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t, "test_concurrent.db")

	ctx := context.Background()

	_, err := db.ExecContext(ctx, "INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		"concurrent@example.com", "hashedpass", "Concurrent User")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	// Run concurrent reads
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			var name string
			err := db.QueryRowContext(ctx, "SELECT name FROM users WHERE email = ?", "concurrent@example.com").Scan(&name)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
			if name != "Concurrent User" {
				t.Errorf("Expected name 'Concurrent User', got '%s'", name)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
