package repository

import (
	"fmt"

	"studytrack/internal/database"
	"studytrack/internal/models"
)

// CatalogRepository handles database operations for subject catalogs
type CatalogRepository struct {
	db *database.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetCatalog retrieves a user's subject catalog in display order.
// Returns nil if the user has no catalog yet.
func (r *CatalogRepository) GetCatalog(userID int64) (*models.Catalog, error) {
	query := `
		SELECT name, icon, color, target
		FROM catalog_subjects
		WHERE user_id = ?
		ORDER BY position
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	defer rows.Close()

	catalog := &models.Catalog{UserID: userID}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.Name, &s.Icon, &s.Color, &s.Target); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		catalog.Subjects = append(catalog.Subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}

	if len(catalog.Subjects) == 0 {
		return nil, nil
	}
	return catalog, nil
}

// CreateCatalog inserts a catalog's subjects in display order within a
// single transaction. Fails if any subject already exists for the user.
func (r *CatalogRepository) CreateCatalog(userID int64, subjects []models.Subject) (*models.Catalog, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO catalog_subjects (user_id, name, icon, color, target, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for i, s := range subjects {
		if _, err := tx.Exec(query, userID, s.Name, s.Icon, s.Color, s.Target, i); err != nil {
			return nil, fmt.Errorf("failed to insert subject %s: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit catalog: %w", err)
	}

	catalog := &models.Catalog{UserID: userID, Subjects: make([]models.Subject, len(subjects))}
	copy(catalog.Subjects, subjects)
	return catalog, nil
}

// UpdateTarget sets the target for a single subject.
// Returns false if the subject does not exist in the user's catalog.
func (r *CatalogRepository) UpdateTarget(userID int64, name string, target int) (bool, error) {
	query := `
		UPDATE catalog_subjects
		SET target = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND name = ?
	`

	result, err := r.db.Exec(query, target, userID, name)
	if err != nil {
		return false, fmt.Errorf("failed to update target: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check update result: %w", err)
	}
	return affected > 0, nil
}
