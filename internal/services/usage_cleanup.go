package services

import (
	"fmt"
	"time"

	"github.com/huangang/feedbacklens/internal/config"
	"github.com/huangang/feedbacklens/pkg/logger"
	"github.com/robfig/cron/v3"
)

// UsageCleanupService periodically drops AI usage logs past retention.
type UsageCleanupService struct {
	usage         *AIUsageService
	retentionDays int
	schedule      string
	cronScheduler *cron.Cron
	now           func() time.Time
}

func NewUsageCleanupService(usage *AIUsageService, cfg *config.UsageConfig) *UsageCleanupService {
	return &UsageCleanupService{
		usage:         usage,
		retentionDays: cfg.RetentionDays,
		schedule:      cfg.CleanupCron,
		now:           time.Now,
	}
}

// StartScheduler registers the cleanup job. Retention of zero or less
// disables it.
func (s *UsageCleanupService) StartScheduler() error {
	if s.retentionDays <= 0 {
		logger.Infof("[UsageCleanup] Retention disabled")
		return nil
	}

	s.cronScheduler = cron.New()
	if _, err := s.cronScheduler.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(); err != nil {
			logger.Errorf("[UsageCleanup] Cleanup failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.schedule, err)
	}

	s.cronScheduler.Start()
	logger.Infof("[UsageCleanup] Scheduler started (cron: %s, retention: %d days)", s.schedule, s.retentionDays)
	return nil
}

func (s *UsageCleanupService) StopScheduler() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
	}
}

// RunOnce deletes logs older than the retention window.
func (s *UsageCleanupService) RunOnce() (int64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.usage.CleanupBefore(cutoff)
	if err != nil {
		return 0, err
	}
	logger.Infof("[UsageCleanup] Deleted %d usage logs older than %s", deleted, cutoff.Format(time.RFC3339))
	return deleted, nil
}
