package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
)

// HashToken creates a SHA-256 hash of the token for storage
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// SessionRepository handles login session database operations
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

// Create stores a new session. ID, UserID, TokenHash and ExpiresAt must be set;
// CreatedAt and LastSeenAt are filled from the database.
func (r *SessionRepository) Create(session *models.Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, token_hash, ip_address, user_agent, device_type, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, last_seen_at`

	err := r.db.QueryRow(
		query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.IPAddress,
		session.UserAgent,
		session.DeviceType,
		session.ExpiresAt,
	).Scan(&session.CreatedAt, &session.LastSeenAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetActiveByID returns a session that is neither revoked nor expired
func (r *SessionRepository) GetActiveByID(id uuid.UUID) (*models.Session, error) {
	query := `
		SELECT id, user_id, token_hash, ip_address, user_agent, device_type,
		       created_at, expires_at, last_seen_at, revoked_at
		FROM sessions
		WHERE id = $1 AND revoked_at IS NULL AND expires_at > NOW()`

	var session models.Session
	if err := r.db.Get(&session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Session not found.")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// Touch records activity on a session
func (r *SessionRepository) Touch(id uuid.UUID) error {
	if _, err := r.db.Exec(`UPDATE sessions SET last_seen_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// Revoke ends a session. Revoking an already revoked or unknown session is a no-op.
func (r *SessionRepository) Revoke(id uuid.UUID) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL`

	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired or were revoked before cutoff
func (r *SessionRepository) DeleteExpired(cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expires_at < $1
		   OR (revoked_at IS NOT NULL AND revoked_at < $1)`

	result, err := r.db.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}
