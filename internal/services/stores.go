package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/models"
)

// UserStore is the persistence the authentication gateway needs for principals
type UserStore interface {
	GetByUsername(username string) (*models.User, error)
	GetByID(id uuid.UUID) (*models.User, error)
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	UpdateLastLogin(id uuid.UUID) error
	CreateWithStaff(username, email, passwordHash, staffName string) (*models.User, *models.Staff, error)
}

// SessionStore persists the server-side half of a login
type SessionStore interface {
	Create(session *models.Session) error
	GetActiveByID(id uuid.UUID) (*models.Session, error)
	Touch(id uuid.UUID) error
	Revoke(id uuid.UUID) error
	DeleteExpired(cutoff time.Time) (int64, error)
}

// StaffStore resolves staff profiles for principals
type StaffStore interface {
	GetOrCreateForUser(userID uuid.UUID, name string) (*models.Staff, bool, error)
}

// PerfumeStore is the perfume catalog persistence
type PerfumeStore interface {
	List(order models.PerfumeOrder) ([]models.Perfume, error)
	GetByID(id uuid.UUID) (*models.Perfume, error)
	Create(input models.PerfumeInput) (*models.Perfume, error)
	Update(id uuid.UUID, input models.PerfumeInput) (*models.Perfume, error)
	Delete(id uuid.UUID) error
}

// UsageLogStore is the usage log persistence
type UsageLogStore interface {
	Create(gender models.Gender, perfumeID, staffID uuid.UUID) (*models.UsageLog, error)
	Query(filter models.UsageLogFilter) ([]models.UsageLog, error)
}
