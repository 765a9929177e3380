package archiver

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tinyrobots/robot-archive-bot/internal/config"
	"github.com/tinyrobots/robot-archive-bot/internal/images"
	"github.com/tinyrobots/robot-archive-bot/internal/ingest"
	"github.com/tinyrobots/robot-archive-bot/internal/models"
	"github.com/tinyrobots/robot-archive-bot/internal/notifications"
	"github.com/tinyrobots/robot-archive-bot/internal/storage"
	"github.com/tinyrobots/robot-archive-bot/internal/store"
	"github.com/tinyrobots/robot-archive-bot/internal/upstream"
)

const crawlTimeout = 30 * time.Minute

// Service runs the archive pipeline end to end: crawl the announcement
// timeline, archive images for new robots and report them in digests.
type Service struct {
	config   *config.Config
	store    store.Store
	ingestor *ingest.Ingestor
	images   *images.Archiver
	notifier notifications.Notifier

	metrics    *Metrics
	lastDigest time.Time
	mu         sync.RWMutex
}

// Metrics holds archive run metrics
type Metrics struct {
	LastRun         time.Time `json:"last_run"`
	LastRunDuration string    `json:"last_run_duration"`
	CrawlCount      int       `json:"crawl_count"`
	LastRunRobots   int       `json:"last_run_robots"`
	TotalRobots     int       `json:"total_robots_archived"`
	ImagesArchived  int       `json:"images_archived"`
	ErrorCount      int       `json:"error_count"`
}

// NewService creates a new archiver service
func NewService(cfg *config.Config, st store.Store, client upstream.Client, backend storage.Interface, notifier notifications.Notifier) *Service {
	return &Service{
		config:   cfg,
		store:    st,
		ingestor: ingest.NewIngestor(client, st, cfg.Verbose),
		images:   images.NewArchiver(st, backend, cfg.ThumbSize),
		notifier: notifier,
		metrics:  &Metrics{},
	}
}

// RunArchive performs one crawl of the announcement timeline followed by
// an image sweep for any robots still missing their picture.
func (s *Service) RunArchive() error {
	start := time.Now()
	logrus.Info("Starting archive run")

	ctx, cancel := context.WithTimeout(context.Background(), crawlTimeout)
	defer cancel()

	idents, err := s.ingestor.CrawlTimeline(ctx, s.config.ArchiveUser, s.config.PageLength, s.config.Pages)
	if err != nil {
		s.recordError()
		return err
	}

	for _, ident := range idents {
		logrus.Infof("Archived robot %s", ident)
	}

	// Image failures are reported but do not fail the crawl; the next
	// sweep retries every robot still missing its picture.
	archived, err := s.images.ArchiveMissing(ctx)
	if err != nil {
		logrus.Errorf("Image sweep incomplete: %v", err)
		s.recordError()
	}

	s.updateMetrics(len(idents), archived, time.Since(start))

	logrus.Infof("Archive run completed in %v: %d new robots, %d images archived",
		time.Since(start), len(idents), archived)
	return nil
}

// RunDigest sends a digest of the robots archived since the previous
// digest. Nothing is sent when there are no new robots.
func (s *Service) RunDigest() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	since := s.digestWatermark()

	robots, err := s.store.RobotsCreatedSince(ctx, since)
	if err != nil {
		s.recordError()
		return err
	}

	if len(robots) == 0 {
		logrus.Debug("No new robots since last digest, skipping")
		return nil
	}

	digest := &models.Digest{
		GeneratedAt: time.Now().UTC(),
		Since:       since,
		Robots:      robots,
	}

	if err := s.notifier.SendDigest(digest); err != nil {
		s.recordError()
		return err
	}

	s.mu.Lock()
	s.lastDigest = digest.GeneratedAt
	s.mu.Unlock()

	logrus.Infof("Sent digest with %d robots", len(robots))
	return nil
}

func (s *Service) digestWatermark() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastDigest.IsZero() {
		return time.Now().UTC().Add(-24 * time.Hour)
	}
	return s.lastDigest
}

func (s *Service) updateMetrics(newRobots, imagesArchived int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.LastRun = time.Now().UTC()
	s.metrics.LastRunDuration = duration.String()
	s.metrics.CrawlCount++
	s.metrics.LastRunRobots = newRobots
	s.metrics.TotalRobots += newRobots
	s.metrics.ImagesArchived += imagesArchived
}

func (s *Service) recordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.ErrorCount++
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
