package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"studytrack/internal/database"
	"studytrack/internal/models"
)

// RecordRepository is the store adapter for daily progress records.
// Records are addressed by the deterministic (user, date) key; the adapter
// performs no retries, transient failures surface to the caller.
type RecordRepository struct {
	db *database.DB
}

// NewRecordRepository creates a new daily record repository
func NewRecordRepository(db *database.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Upsert merge-writes a daily record. Repeated writes for the same
// (user, date) key converge to a single row; the latest payload wins.
func (r *RecordRepository) Upsert(record *models.DailyRecord) error {
	subjects, err := json.Marshal(record.Subjects)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", models.RecordKey(record.UserID, record.Date), err)
	}

	query := r.db.Dialect.UpsertDailyRecord()
	_, err = r.db.Exec(query, record.UserID, record.Date, string(subjects), record.Total, record.TotalTarget)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", models.RecordKey(record.UserID, record.Date), err)
	}
	return nil
}

// Get retrieves the daily record for a (user, date) pair.
// Returns nil when no record exists; absence is not an error.
func (r *RecordRepository) Get(userID int64, date string) (*models.DailyRecord, error) {
	query := `
		SELECT user_id, record_date, subjects, total, total_target
		FROM daily_records
		WHERE user_id = ? AND record_date = ?
	`

	record, err := r.scanRecord(r.db.QueryRow(query, userID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", models.RecordKey(userID, date), err)
	}
	return record, nil
}

// ListRecent retrieves a user's daily records, newest date first,
// bounded by limit
func (r *RecordRepository) ListRecent(userID int64, limit int) ([]models.DailyRecord, error) {
	query := `
		SELECT user_id, record_date, subjects, total, total_target
		FROM daily_records
		WHERE user_id = ?
		ORDER BY record_date DESC
		LIMIT ?
	`
	return r.queryRecords(query, userID, limit)
}

// ListRecentExcluding is ListRecent minus the record for one date.
// The aggregation engine reads history through this so the live snapshot's
// date is excluded by construction and never counted twice.
func (r *RecordRepository) ListRecentExcluding(userID int64, excludeDate string, limit int) ([]models.DailyRecord, error) {
	query := `
		SELECT user_id, record_date, subjects, total, total_target
		FROM daily_records
		WHERE user_id = ? AND record_date <> ?
		ORDER BY record_date DESC
		LIMIT ?
	`
	return r.queryRecords(query, userID, excludeDate, limit)
}

func (r *RecordRepository) queryRecords(query string, args ...interface{}) ([]models.DailyRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []models.DailyRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read record rows: %w", err)
	}
	return records, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *RecordRepository) scanRecord(row rowScanner) (*models.DailyRecord, error) {
	record := &models.DailyRecord{}
	var subjects string

	err := row.Scan(
		&record.UserID,
		&record.Date,
		&subjects,
		&record.Total,
		&record.TotalTarget,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(subjects), &record.Subjects); err != nil {
		return nil, fmt.Errorf("failed to decode subjects for %s: %w", models.RecordKey(record.UserID, record.Date), err)
	}
	if record.Subjects == nil {
		record.Subjects = make(map[string]models.SubjectCount)
	}
	return record, nil
}
