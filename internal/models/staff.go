package models

import (
	"time"

	"github.com/google/uuid"
)

// Staff is the profile that owns usage-logging actions. It is distinct from
// the principal and linked to at most one of them through UserID.
type Staff struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	UserID    uuid.NullUUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}
