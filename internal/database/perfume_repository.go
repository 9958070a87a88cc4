package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
)

const perfumeColumns = `id, brand, name, capacity_ml, description, image_url, created_at, updated_at`

// PerfumeRepository handles perfume catalog database operations
type PerfumeRepository struct {
	db DB
}

// NewPerfumeRepository creates a new perfume repository
func NewPerfumeRepository(db DB) *PerfumeRepository {
	return &PerfumeRepository{
		db: db,
	}
}

// List returns every perfume in the requested order
func (r *PerfumeRepository) List(order models.PerfumeOrder) ([]models.Perfume, error) {
	orderBy := "brand ASC, name ASC"
	if order == models.PerfumeOrderByNewest {
		orderBy = "created_at DESC"
	}

	query := `SELECT ` + perfumeColumns + ` FROM perfumes ORDER BY ` + orderBy

	perfumes := []models.Perfume{}
	if err := r.db.Select(&perfumes, query); err != nil {
		return nil, fmt.Errorf("failed to list perfumes: %w", err)
	}
	return perfumes, nil
}

// GetByID returns a single perfume
func (r *PerfumeRepository) GetByID(id uuid.UUID) (*models.Perfume, error) {
	query := `SELECT ` + perfumeColumns + ` FROM perfumes WHERE id = $1`

	var perfume models.Perfume
	if err := r.db.Get(&perfume, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Perfume not found.")
		}
		return nil, fmt.Errorf("failed to get perfume: %w", err)
	}
	return &perfume, nil
}

// Create inserts a perfume. Blank description and image URL are stored as NULL.
func (r *PerfumeRepository) Create(input models.PerfumeInput) (*models.Perfume, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO perfumes (id, brand, name, capacity_ml, description, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + perfumeColumns

	var perfume models.Perfume
	err := r.db.Get(&perfume, query,
		uuid.New(),
		input.Brand,
		input.Name,
		input.CapacityML,
		models.NewNullString(input.Description),
		models.NewNullString(input.ImageURL),
	)
	if err != nil {
		if isCheckViolation(err) {
			return nil, apperrors.Validation("capacity_ml", "Capacity must be a positive number of millilitres.")
		}
		return nil, fmt.Errorf("failed to create perfume: %w", err)
	}
	return &perfume, nil
}

// Update replaces the editable fields of a perfume. created_at is untouched.
func (r *PerfumeRepository) Update(id uuid.UUID, input models.PerfumeInput) (*models.Perfume, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE perfumes
		SET brand = $2,
		    name = $3,
		    capacity_ml = $4,
		    description = $5,
		    image_url = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + perfumeColumns

	var perfume models.Perfume
	err := r.db.Get(&perfume, query,
		id,
		input.Brand,
		input.Name,
		input.CapacityML,
		models.NewNullString(input.Description),
		models.NewNullString(input.ImageURL),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Perfume not found.")
		}
		if isCheckViolation(err) {
			return nil, apperrors.Validation("capacity_ml", "Capacity must be a positive number of millilitres.")
		}
		return nil, fmt.Errorf("failed to update perfume: %w", err)
	}
	return &perfume, nil
}

// Delete removes a perfume and all of its usage logs in one transaction
func (r *PerfumeRepository) Delete(id uuid.UUID) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM usage_logs WHERE perfume_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete usage logs: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM perfumes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete perfume: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("Perfume not found.")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
