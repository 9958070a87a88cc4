package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron      *cron.Cron
	sessions  SessionStore
	spec      string
	retention time.Duration
	logger    *logrus.Logger
	now       func() time.Time
}

// NewCronService creates a new CronService. spec uses the six-field format
// with seconds.
func NewCronService(sessions SessionStore, spec string, retention time.Duration, location *time.Location, logger *logrus.Logger) *CronService {
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	return &CronService{
		cron:      c,
		sessions:  sessions,
		spec:      spec,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.purgeSessionsJob); err != nil {
		return fmt.Errorf("failed to schedule session purge job: %w", err)
	}
	s.logger.WithField("spec", s.spec).Info("Scheduled: purge expired sessions")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// RunSessionPurgeNow deletes sessions that ended more than the retention age ago
func (s *CronService) RunSessionPurgeNow() (int64, error) {
	cutoff := s.now().Add(-s.retention)
	deleted, err := s.sessions.DeleteExpired(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return deleted, nil
}

func (s *CronService) purgeSessionsJob() {
	start := time.Now()

	deleted, err := s.RunSessionPurgeNow()
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Session purge failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"deleted":  deleted,
		"duration": time.Since(start).String(),
	}).Info("[CRON] Purged expired sessions")
}
