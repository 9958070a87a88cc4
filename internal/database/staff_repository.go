package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
)

const staffColumns = `id, name, user_id, created_at`

// StaffRepository handles staff profile database operations
type StaffRepository struct {
	db DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{
		db: db,
	}
}

// Create inserts a staff profile, optionally linked to a principal
func (r *StaffRepository) Create(name string, userID *uuid.UUID) (*models.Staff, error) {
	var link uuid.NullUUID
	if userID != nil {
		link = uuid.NullUUID{UUID: *userID, Valid: true}
	}

	query := `
		INSERT INTO staff (id, name, user_id)
		VALUES ($1, $2, $3)
		RETURNING ` + staffColumns

	var staff models.Staff
	if err := r.db.Get(&staff, query, uuid.New(), name, link); err != nil {
		return nil, translateStaffError(err)
	}
	return &staff, nil
}

// createInTx inserts a staff profile for userID inside an open transaction
func (r *StaffRepository) createInTx(tx *sqlx.Tx, name string, userID uuid.UUID) (*models.Staff, error) {
	query := `
		INSERT INTO staff (id, name, user_id)
		VALUES ($1, $2, $3)
		RETURNING ` + staffColumns

	var staff models.Staff
	if err := tx.Get(&staff, query, uuid.New(), name, userID); err != nil {
		return nil, translateStaffError(err)
	}
	return &staff, nil
}

// GetByUserID returns the staff profile linked to a principal
func (r *StaffRepository) GetByUserID(userID uuid.UUID) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE user_id = $1`

	var staff models.Staff
	if err := r.db.Get(&staff, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Staff profile not found.")
		}
		return nil, fmt.Errorf("failed to get staff by user id: %w", err)
	}
	return &staff, nil
}

// GetOrCreateForUser returns the principal's staff profile, creating it with
// name when none exists. Concurrent callers race on the unique user_id and
// all end up with the same row; created is true only for the inserting call.
func (r *StaffRepository) GetOrCreateForUser(userID uuid.UUID, name string) (*models.Staff, bool, error) {
	query := `
		INSERT INTO staff (id, name, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`

	result, err := r.db.Exec(query, uuid.New(), name, userID)
	if err != nil {
		return nil, false, translateStaffError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	staff, err := r.GetByUserID(userID)
	if err != nil {
		return nil, false, err
	}
	return staff, rowsAffected == 1, nil
}

func translateStaffError(err error) error {
	switch {
	case isUniqueViolation(err):
		return apperrors.Constraint("user_id", "This user already has a staff profile.", err)
	case isForeignKeyViolation(err):
		return apperrors.NotFound("User not found.")
	case isStringTooLong(err):
		return apperrors.Validation("name", "Staff name is too long.")
	}
	return fmt.Errorf("failed to create staff: %w", err)
}
