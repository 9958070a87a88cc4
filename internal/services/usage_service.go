package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// UsageObserver is notified after every recorded sampling
type UsageObserver interface {
	ObserveUsage(gender models.Gender)
}

// StaffResolver maps a principal to the staff profile that owns its actions
type StaffResolver interface {
	ResolveStaff(ctx context.Context, principal *models.Principal) (*models.Staff, bool, error)
}

// RecordResult describes a recorded sampling
type RecordResult struct {
	Log          *models.UsageLog
	Perfume      *models.Perfume
	Staff        *models.Staff
	StaffCreated bool
}

// DailySummary is the content of the today page
type DailySummary struct {
	Date      time.Time
	Logs      []models.UsageLog
	ByGender  []models.GenderCount
	ByPerfume []models.PerfumeCount
}

// Total is the number of samplings in the summary
func (d DailySummary) Total() int {
	return len(d.Logs)
}

// UsageService records perfume samplings and reports on them
type UsageService struct {
	logs     UsageLogStore
	perfumes PerfumeStore
	staff    StaffResolver
	observer UsageObserver
	location *time.Location
	logger   *logrus.Logger
	now      func() time.Time
}

// NewUsageService creates a new usage service. observer may be nil.
func NewUsageService(
	logs UsageLogStore,
	perfumes PerfumeStore,
	staff StaffResolver,
	observer UsageObserver,
	location *time.Location,
	logger *logrus.Logger,
) *UsageService {
	return &UsageService{
		logs:     logs,
		perfumes: perfumes,
		staff:    staff,
		observer: observer,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// Location is the time zone calendar days are evaluated in
func (s *UsageService) Location() *time.Location {
	return s.location
}

// RecordUsage logs one sampling of perfumeID by the principal's staff profile
func (s *UsageService) RecordUsage(ctx context.Context, principal *models.Principal, genderInput, perfumeInput string) (*RecordResult, error) {
	gender, err := models.ParseGender(genderInput)
	if err != nil {
		return nil, err
	}

	perfumeInput = strings.TrimSpace(perfumeInput)
	if perfumeInput == "" {
		return nil, apperrors.Validation("perfume", "Please select a perfume.")
	}
	perfumeID, err := uuid.Parse(perfumeInput)
	if err != nil {
		return nil, apperrors.MissingReference("perfume", "Perfume not found.")
	}

	perfume, err := s.perfumes.GetByID(perfumeID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.MissingReference("perfume", "Perfume not found.")
		}
		return nil, err
	}

	staff, created, err := s.staff.ResolveStaff(ctx, principal)
	if err != nil {
		return nil, err
	}

	log, err := s.logs.Create(gender, perfume.ID, staff.ID)
	if err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.ObserveUsage(gender)
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"usage_log_id": log.ID,
		"perfume_id":   perfume.ID,
		"staff_id":     staff.ID,
		"gender":       gender,
	}).Info("Usage recorded")

	return &RecordResult{Log: log, Perfume: perfume, Staff: staff, StaffCreated: created}, nil
}

// Today summarises the samplings of the current local calendar day
func (s *UsageService) Today(ctx context.Context) (*DailySummary, error) {
	day := models.StartOfDay(s.now(), s.location)

	logs, err := s.logs.Query(models.UsageLogFilter{Date: &day})
	if err != nil {
		return nil, fmt.Errorf("failed to load today's logs: %w", err)
	}

	return &DailySummary{
		Date:      day,
		Logs:      logs,
		ByGender:  models.GenderBreakdown(models.AggregateByGender(logs)),
		ByPerfume: models.AggregateByPerfume(logs),
	}, nil
}

// Logs lists samplings matching filter, newest first
func (s *UsageService) Logs(ctx context.Context, filter models.UsageLogFilter) ([]models.UsageLog, error) {
	logs, err := s.logs.Query(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage logs: %w", err)
	}
	return logs, nil
}
