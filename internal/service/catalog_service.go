package service

import (
	"errors"
	"fmt"

	"studytrack/internal/models"
)

var ErrSubjectNotFound = errors.New("subject not found in catalog")

// CatalogStore is the catalog persistence needed by services
type CatalogStore interface {
	GetCatalog(userID int64) (*models.Catalog, error)
	CreateCatalog(userID int64, subjects []models.Subject) (*models.Catalog, error)
	UpdateTarget(userID int64, name string, target int) (bool, error)
}

// CatalogService manages per-user subject catalogs
type CatalogService struct {
	catalogs CatalogStore
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogs CatalogStore) *CatalogService {
	return &CatalogService{catalogs: catalogs}
}

// GetOrInit returns the user's catalog, creating the six-subject default
// set on first use. Calling it again for the same user is a no-op that
// returns the existing catalog unchanged.
func (s *CatalogService) GetOrInit(userID int64) (*models.Catalog, error) {
	catalog, err := s.catalogs.GetCatalog(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if catalog != nil {
		return catalog, nil
	}

	catalog, err = s.catalogs.CreateCatalog(userID, models.DefaultSubjects())
	if err != nil {
		// Two concurrent first loads can race on the insert; the loser
		// reads back the winner's catalog.
		if existing, getErr := s.catalogs.GetCatalog(userID); getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}
	return catalog, nil
}

// UpdateTarget sets a subject's daily target, clamping values below 1 up
// to 1, and returns the refreshed catalog. Counters are never touched.
func (s *CatalogService) UpdateTarget(userID int64, name string, target int) (*models.Catalog, error) {
	if target < 1 {
		target = 1
	}

	found, err := s.catalogs.UpdateTarget(userID, name, target)
	if err != nil {
		return nil, fmt.Errorf("failed to update target: %w", err)
	}
	if !found {
		return nil, ErrSubjectNotFound
	}

	catalog, err := s.catalogs.GetCatalog(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload catalog: %w", err)
	}
	if catalog == nil {
		return nil, ErrSubjectNotFound
	}
	return catalog, nil
}
