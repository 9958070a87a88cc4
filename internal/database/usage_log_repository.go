package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
)

// UsageLogRepository handles usage log database operations
type UsageLogRepository struct {
	db DB
}

// NewUsageLogRepository creates a new usage log repository
func NewUsageLogRepository(db DB) *UsageLogRepository {
	return &UsageLogRepository{
		db: db,
	}
}

// Create records one sampling event. used_at is assigned by the database.
func (r *UsageLogRepository) Create(gender models.Gender, perfumeID, staffID uuid.UUID) (*models.UsageLog, error) {
	if !gender.Valid() {
		return nil, apperrors.Validation("gender", "Please select a valid gender.")
	}

	query := `
		INSERT INTO usage_logs (id, gender, staff_id, perfume_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, gender, staff_id, perfume_id, used_at`

	var log models.UsageLog
	if err := r.db.Get(&log, query, uuid.New(), string(gender), staffID, perfumeID); err != nil {
		switch {
		case isForeignKeyViolation(err):
			if strings.Contains(violatedConstraint(err), "staff") {
				return nil, apperrors.MissingReference("staff", "Staff profile not found.")
			}
			return nil, apperrors.MissingReference("perfume", "Perfume not found.")
		case isCheckViolation(err):
			return nil, apperrors.Validation("gender", "Please select a valid gender.")
		}
		return nil, fmt.Errorf("failed to create usage log: %w", err)
	}
	return &log, nil
}

// Query lists usage logs matching every set filter field, newest first
func (r *UsageLogRepository) Query(filter models.UsageLogFilter) ([]models.UsageLog, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Date != nil {
		start, end := filter.DayRange()
		args = append(args, start, end)
		conditions = append(conditions, fmt.Sprintf("ul.used_at >= $%d AND ul.used_at < $%d", len(args)-1, len(args)))
	}
	if filter.PerfumeID != nil {
		args = append(args, *filter.PerfumeID)
		conditions = append(conditions, fmt.Sprintf("ul.perfume_id = $%d", len(args)))
	}
	if filter.Gender != nil {
		args = append(args, string(*filter.Gender))
		conditions = append(conditions, fmt.Sprintf("ul.gender = $%d", len(args)))
	}

	query := `
		SELECT ul.id, ul.gender, ul.staff_id, ul.perfume_id, ul.used_at,
		       p.brand AS perfume_brand, p.name AS perfume_name,
		       s.name AS staff_name
		FROM usage_logs ul
		JOIN perfumes p ON p.id = ul.perfume_id
		JOIN staff s ON s.id = ul.staff_id`
	if len(conditions) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n\t\tORDER BY ul.used_at DESC, ul.id DESC"

	logs := []models.UsageLog{}
	if err := r.db.Select(&logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query usage logs: %w", err)
	}
	return logs, nil
}
