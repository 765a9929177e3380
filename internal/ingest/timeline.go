package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tinyrobots/robot-archive-bot/internal/models"
	"github.com/tinyrobots/robot-archive-bot/internal/upstream"
)

// CrawlTimeline walks the user's timeline backwards from newest to oldest,
// one page at a time, scribing every announcement post it has not seen
// before. It stops after the given number of pages or on the first empty
// page. Posts within a page are scribed strictly in series so the duplicate
// check and the page watermark observe a consistent ordering.
func (ing *Ingestor) CrawlTimeline(ctx context.Context, user string, pageLength, pages int) ([]models.Identity, error) {
	user = strings.TrimPrefix(user, "@")

	var idents []models.Identity
	var maxID uint64

	for page := 0; page < pages; page++ {
		opts := upstream.TimelineOptions{Count: pageLength, MaxID: maxID}

		posts, err := ing.client.UserTimeline(ctx, user, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to read timeline page: %w", err)
		}

		// Guard against upstream anomalies before anything else.
		valid := posts[:0]
		for _, p := range posts {
			if p.ID > 0 {
				valid = append(valid, p)
			}
		}

		if len(valid) == 0 {
			logrus.Debugf("Empty timeline page reached after %d pages, stopping", page)
			break
		}

		// The upstream cursor is inclusive, so step one below the oldest id
		// on the page to avoid refetching the boundary post.
		minID := valid[0].ID
		for _, p := range valid[1:] {
			if p.ID < minID {
				minID = p.ID
			}
		}
		maxID = minID - 1

		candidates, err := ing.filterPage(ctx, user, valid)
		if err != nil {
			return nil, err
		}

		got, err := ing.scriber.ScribePosts(ctx, candidates)
		if err != nil {
			return nil, err
		}
		idents = append(idents, got...)
	}

	return idents, nil
}

// filterPage resolves reshares and drops posts that are already archived or
// were originally authored by someone other than the target user. The
// existence check runs once for the whole page.
func (ing *Ingestor) filterPage(ctx context.Context, user string, posts []models.Post) ([]models.Post, error) {
	origIDs := make([]uint64, 0, len(posts))
	for i := range posts {
		origIDs = append(origIDs, posts[i].Original().ID)
	}

	known, err := ing.store.ExistingPostIDs(ctx, origIDs)
	if err != nil {
		return nil, err
	}

	var keep []models.Post
	for i := range posts {
		orig := posts[i].Original()

		if !strings.EqualFold(orig.Author, user) {
			// A reshare of someone else's post is not one of the user's own
			// announcements.
			continue
		}
		if known[orig.ID] {
			continue
		}

		keep = append(keep, posts[i])
	}

	return keep, nil
}
