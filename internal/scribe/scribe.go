package scribe

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tinyrobots/robot-archive-bot/internal/models"
	"github.com/tinyrobots/robot-archive-bot/internal/parse"
	"github.com/tinyrobots/robot-archive-bot/internal/store"
)

// Scriber turns fetched posts into persisted robot records.
type Scriber struct {
	store   store.Store
	verbose bool
}

// NewScriber creates a new Scriber. With verbose set, skipped posts are
// logged at info level instead of debug.
func NewScriber(st store.Store, verbose bool) *Scriber {
	return &Scriber{store: st, verbose: verbose}
}

// ScribePosts parses and stores a collection of posts in series, skipping
// any that are not valid robot announcements. A system failure aborts the
// remaining posts; work already committed stays committed.
func (s *Scriber) ScribePosts(ctx context.Context, posts []models.Post) ([]models.Identity, error) {
	var idents []models.Identity

	for i := range posts {
		created, err := s.ScribePost(ctx, &posts[i])
		if err != nil {
			if IsInvalidPost(err) {
				s.logSkip(err)
				continue
			}
			return nil, err
		}
		idents = append(idents, created...)
	}

	return idents, nil
}

// ScribePost resolves the post to its original, parses it and stores one
// record per robot, all inside a single transaction. It returns the
// identities of the newly created records.
func (s *Scriber) ScribePost(ctx context.Context, post *models.Post) ([]models.Identity, error) {
	orig := post.Original()

	group, ok := parse.ParseGroup(orig.Text)
	if !ok || len(group.Robots) == 0 {
		return nil, &InvalidPostError{PostID: orig.ID, Reason: ReasonNoParse}
	}

	media, ok := orig.FirstUsableMedia()
	if !ok {
		return nil, &InvalidPostError{PostID: orig.ID, Reason: ReasonNoMedia}
	}

	records := make([]*models.RobotRecord, len(group.Robots))
	for i, robot := range group.Robots {
		records[i] = buildRecord(orig, robot, media, group)
	}

	created, duplicates, err := s.store.CreateRobots(ctx, records)
	if err != nil {
		return nil, err
	}

	// A post whose every robot already exists is itself a duplicate. A
	// mid-group duplicate does not abort its siblings: the new robots are
	// kept and the duplicates reported.
	if len(created) == 0 {
		return nil, &InvalidPostError{
			PostID:     orig.ID,
			Reason:     ReasonDuplicate,
			Duplicates: duplicates,
		}
	}

	for _, dup := range duplicates {
		logrus.Debugf("Robot %s in post %d already archived, skipped", dup, orig.ID)
	}

	return created, nil
}

func buildRecord(post *models.Post, robot parse.Robot, media models.Media, group parse.Group) *models.RobotRecord {
	rec := &models.RobotRecord{
		RobotNumber: robot.Number,
		Slug:        robot.Name.Slug(),
		Prefix:      robot.Name.Prefix,
		Suffix:      robot.Name.Suffix,
		PostID:      int64(post.ID),
		PostTime:    post.CreatedAt,
		ImageURL:    media.URL,
		Body:        group.Body,
	}

	if robot.Name.Plural != "" {
		plural := robot.Name.Plural
		rec.Plural = &plural
	}

	if alt := strings.TrimSpace(media.Alt); alt != "" {
		rec.Alt = &alt
	}

	if group.ContentWarning != "" {
		cw := group.ContentWarning
		rec.ContentWarning = &cw
	}

	return rec
}

func (s *Scriber) logSkip(err error) {
	if s.verbose {
		logrus.Infof("Skipping post: %v", err)
	} else {
		logrus.Debugf("Skipping post: %v", err)
	}
}
