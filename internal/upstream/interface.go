package upstream

import (
	"context"

	"github.com/tinyrobots/robot-archive-bot/internal/models"
)

// MaxLookupIDs is the upstream API's hard ceiling on ids per lookup call.
const MaxLookupIDs = 100

// MaxPageLength is the upstream API's ceiling on posts per timeline page.
const MaxPageLength = 200

// TimelineOptions control a single timeline page request.
type TimelineOptions struct {
	// Count is the maximum number of posts in the page, up to MaxPageLength.
	Count int

	// MaxID, when non-zero, requests only posts with ids at or below it.
	// The upstream treats MaxID as inclusive.
	MaxID uint64
}

// Client is the upstream social API capability consumed by the ingestion
// pipeline.
type Client interface {
	// GetPosts fetches the posts with the given ids, at most MaxLookupIDs
	// per call. Unknown ids are silently absent from the result.
	GetPosts(ctx context.Context, ids []uint64) ([]models.Post, error)

	// UserTimeline fetches one page of the user's timeline, newest first.
	UserTimeline(ctx context.Context, user string, opts TimelineOptions) ([]models.Post, error)
}
