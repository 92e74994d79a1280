package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"studytrack/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Users      []UserBackup    `json:"users"`
	Catalogs   []SubjectBackup `json:"catalogs"`
	Records    []RecordBackup  `json:"records"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SubjectBackup represents one catalog subject row for backup
type SubjectBackup struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	Target   int    `json:"target"`
	Position int    `json:"position"`
}

// RecordBackup represents one daily record for backup.
// Subjects carries the raw JSON document straight through.
type RecordBackup struct {
	UserID      int64           `json:"user_id"`
	Date        string          `json:"date"`
	Subjects    json.RawMessage `json:"subjects"`
	Total       int             `json:"total"`
	TotalTarget int             `json:"total_target"`
}

// BackupService exports and imports the full database as JSON
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete backup to a file
func (s *BackupService) Export(outputPath string) error {
	log.Printf("Starting database export to %s...", outputPath)

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a complete backup to the given writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportCatalogs(backup); err != nil {
		return fmt.Errorf("failed to export catalogs: %w", err)
	}
	if err := s.exportRecords(backup); err != nil {
		return fmt.Errorf("failed to export records: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d users, %d catalog subjects, %d daily records",
		len(backup.Users), len(backup.Catalogs), len(backup.Records))
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup stream
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importCatalogs(backup.Catalogs); err != nil {
		return fmt.Errorf("failed to import catalogs: %w", err)
	}
	if err := s.importRecords(backup.Records); err != nil {
		return fmt.Errorf("failed to import records: %w", err)
	}

	log.Printf("Imported: %d users, %d catalog subjects, %d daily records",
		len(backup.Users), len(backup.Catalogs), len(backup.Records))
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, email, password_hash, name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), is_admin, created_at, updated_at
		FROM users ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider,
			&u.OAuthSubject, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportCatalogs(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT user_id, name, icon, color, target, position
		FROM catalog_subjects ORDER BY user_id, position
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c SubjectBackup
		if err := rows.Scan(&c.UserID, &c.Name, &c.Icon, &c.Color, &c.Target, &c.Position); err != nil {
			return err
		}
		backup.Catalogs = append(backup.Catalogs, c)
	}
	return rows.Err()
}

func (s *BackupService) exportRecords(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT user_id, record_date, subjects, total, total_target
		FROM daily_records ORDER BY user_id, record_date
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r RecordBackup
		var subjects string
		if err := rows.Scan(&r.UserID, &r.Date, &subjects, &r.Total, &r.TotalTarget); err != nil {
			return err
		}
		r.Subjects = json.RawMessage(subjects)
		backup.Records = append(backup.Records, r)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	for _, u := range users {
		_, err := s.db.Exec(`
			INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, is_admin, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, u.ID, u.Email, u.PasswordHash, u.Name, nullIfEmpty(u.OAuthProvider),
			nullIfEmpty(u.OAuthSubject), u.IsAdmin, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importCatalogs(catalogs []SubjectBackup) error {
	for _, c := range catalogs {
		_, err := s.db.Exec(`
			INSERT INTO catalog_subjects (user_id, name, icon, color, target, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.UserID, c.Name, c.Icon, c.Color, c.Target, c.Position)
		if err != nil {
			return fmt.Errorf("catalog subject %s for user %d: %w", c.Name, c.UserID, err)
		}
	}
	return nil
}

func (s *BackupService) importRecords(records []RecordBackup) error {
	query := s.db.Dialect.UpsertDailyRecord()
	for _, r := range records {
		subjects := string(r.Subjects)
		if subjects == "" {
			subjects = "{}"
		}
		if _, err := s.db.Exec(query, r.UserID, r.Date, subjects, r.Total, r.TotalTarget); err != nil {
			return fmt.Errorf("record %d_%s: %w", r.UserID, r.Date, err)
		}
	}
	return nil
}

// ClearAll removes all data ahead of a destructive import
func (s *BackupService) ClearAll() error {
	for _, table := range []string{"daily_records", "catalog_subjects", "sessions", "users"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
