package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tinyrobots/robot-archive-bot/internal/archiver"
	"github.com/tinyrobots/robot-archive-bot/internal/config"
)

// Service drives the archiver on its configured schedules
type Service struct {
	config   *config.Config
	archiver *archiver.Service
	cron     *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, archiverService *archiver.Service) *Service {
	return &Service{
		config:   cfg,
		archiver: archiverService,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start registers the crawl and digest jobs and begins the schedule
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(s.config.CrawlSchedule, func() {
		logrus.Info("Starting scheduled archive run")
		if err := s.archiver.RunArchive(); err != nil {
			logrus.Errorf("Scheduled archive run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid crawl schedule %q: %w", s.config.CrawlSchedule, err)
	}

	_, err = s.cron.AddFunc(s.config.DigestSchedule, func() {
		logrus.Info("Starting scheduled digest")
		if err := s.archiver.RunDigest(); err != nil {
			logrus.Errorf("Scheduled digest failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", s.config.DigestSchedule, err)
	}

	s.cron.Start()
	logrus.Infof("Scheduler started (crawl %q, digest %q)", s.config.CrawlSchedule, s.config.DigestSchedule)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
