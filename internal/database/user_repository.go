package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
)

const userColumns = `id, username, email, password_hash, is_active, last_login_at, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const insertUserQuery = `
	INSERT INTO users (id, username, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + userColumns

// CreateWithStaff inserts a principal and its staff profile in one transaction
func (r *UserRepository) CreateWithStaff(username, email, passwordHash, staffName string) (*models.User, *models.Staff, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var user models.User
	if err := tx.Get(&user, insertUserQuery, uuid.New(), username, email, passwordHash); err != nil {
		return nil, nil, translateUserError(err)
	}

	staffRepo := &StaffRepository{db: r.db}
	staff, err := staffRepo.createInTx(tx, staffName, user.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &user, staff, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var user models.User
	if err := r.db.Get(&user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("User not found.")
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user models.User
	if err := r.db.Get(&user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("User not found.")
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// ExistsByUsername reports whether the username is taken
func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	if err := r.db.Get(&exists, query, username); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// ExistsByEmail reports whether the email address is registered
func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	if err := r.db.Get(&exists, query, email); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stamps the principal's last successful login
func (r *UserRepository) UpdateLastLogin(id uuid.UUID) error {
	query := `
		UPDATE users
		SET last_login_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func translateUserError(err error) error {
	switch {
	case isUniqueViolation(err):
		if strings.Contains(violatedConstraint(err), "email") {
			return apperrors.Constraint("email", "A user with that email already exists.", err)
		}
		return apperrors.Constraint("username", "A user with that username already exists.", err)
	case isStringTooLong(err):
		return apperrors.Validation("username", "Username or email is too long.")
	}
	return fmt.Errorf("failed to create user: %w", err)
}
