package scribe

import (
	"errors"
	"fmt"

	"github.com/tinyrobots/robot-archive-bot/internal/models"
)

// Reasons a post can be rejected without anything being wrong with the
// system. These are expected outcomes: most posts on a timeline are not
// robot announcements.
const (
	ReasonNoParse   = "could not parse robot data from post"
	ReasonNoMedia   = "post does not contain usable media"
	ReasonDuplicate = "robot group already archived"
)

// InvalidPostError marks a post that was skipped rather than archived.
// Callers treat it as "skip and continue"; every other error aborts the
// surrounding batch or page.
type InvalidPostError struct {
	PostID uint64
	Reason string

	// Duplicates holds the already-archived identities when Reason is
	// ReasonDuplicate.
	Duplicates []models.Identity
}

func (e *InvalidPostError) Error() string {
	if len(e.Duplicates) > 0 {
		return fmt.Sprintf("post %d: %s (%v)", e.PostID, e.Reason, e.Duplicates)
	}
	return fmt.Sprintf("post %d: %s", e.PostID, e.Reason)
}

// IsInvalidPost reports whether err classifies as an expected, skippable
// rejection rather than a system failure.
func IsInvalidPost(err error) bool {
	var invalid *InvalidPostError
	return errors.As(err, &invalid)
}
