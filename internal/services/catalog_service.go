package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// CatalogService maintains the perfume catalog
type CatalogService struct {
	perfumes PerfumeStore
	logger   *logrus.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(perfumes PerfumeStore, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		perfumes: perfumes,
		logger:   logger,
	}
}

// List returns the catalog in the requested order
func (s *CatalogService) List(ctx context.Context, order models.PerfumeOrder) ([]models.Perfume, error) {
	return s.perfumes.List(order)
}

// Get returns one perfume
func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Perfume, error) {
	return s.perfumes.GetByID(id)
}

// Add creates a perfume from a submitted form
func (s *CatalogService) Add(ctx context.Context, form models.PerfumeForm) (*models.Perfume, error) {
	input, err := form.ToInput()
	if err != nil {
		return nil, err
	}

	perfume, err := s.perfumes.Create(input)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithField("perfume_id", perfume.ID).Info("Perfume added")
	return perfume, nil
}

// Update replaces a perfume's fields from a submitted form
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, form models.PerfumeForm) (*models.Perfume, error) {
	// an unknown id wins over an invalid form
	if _, err := s.perfumes.GetByID(id); err != nil {
		return nil, err
	}

	input, err := form.ToInput()
	if err != nil {
		return nil, err
	}

	perfume, err := s.perfumes.Update(id, input)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithField("perfume_id", perfume.ID).Info("Perfume updated")
	return perfume, nil
}

// Delete removes a perfume together with its usage logs and returns what was deleted
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) (*models.Perfume, error) {
	perfume, err := s.perfumes.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.perfumes.Delete(id); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithField("perfume_id", id).Info("Perfume deleted")
	return perfume, nil
}
