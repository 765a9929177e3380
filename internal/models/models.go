package models

import (
	"fmt"
	"time"
)

// Media types we accept as a robot's picture.
const (
	MediaTypePhoto    = "photo"
	MediaTypeAnimated = "animated_gif"
	MediaTypeVideo    = "video"
)

// Post is a single upstream social-media post, the raw unit of ingestion.
// Text has URLs and media markup already stripped by the upstream client.
type Post struct {
	ID        uint64    `json:"id"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Text      string    `json:"text"`
	Media     []Media   `json:"media"`

	// RepostOf is set when this post is a reshare of another user's post.
	RepostOf *Post `json:"repost_of,omitempty"`
}

// Media is one attachment on a post.
type Media struct {
	Type string `json:"type"`
	URL  string `json:"url"`
	Alt  string `json:"alt"`
}

// Original follows the reshare chain to the post that was originally
// authored. Returns the receiver when the post is not a reshare.
func (p *Post) Original() *Post {
	for p.RepostOf != nil {
		p = p.RepostOf
	}
	return p
}

// FirstUsableMedia returns the first attachment that can serve as a robot's
// picture, or false if the post has none.
func (p *Post) FirstUsableMedia() (Media, bool) {
	for _, m := range p.Media {
		switch m.Type {
		case MediaTypePhoto, MediaTypeAnimated, MediaTypeVideo:
			return m, true
		}
	}
	return Media{}, false
}

// Identity is the pair that uniquely identifies a robot across all ingestion
// runs: its number plus the ASCII slug of its name prefix.
type Identity struct {
	Number int32  `json:"number"`
	Slug   string `json:"slug"`
}

func (id Identity) String() string {
	return fmt.Sprintf("%d-%s", id.Number, id.Slug)
}

// RobotRecord is one archived robot. Each row carries the full provenance of
// the announcing post so the record is self-contained.
type RobotRecord struct {
	ID          uint      `gorm:"primaryKey"`
	CreatedAt   time.Time
	RobotNumber int32  `gorm:"uniqueIndex:idx_robot_identity;not null"`
	Slug        string `gorm:"uniqueIndex:idx_robot_identity;not null"`
	Prefix      string `gorm:"not null"`
	Suffix      string `gorm:"not null"`
	Plural      *string

	PostID         int64     `gorm:"index;not null"`
	PostTime       time.Time `gorm:"not null"`
	ImageURL       string    `gorm:"not null"`
	Alt            *string
	Body           string `gorm:"not null"`
	ContentWarning *string

	// Set by the image archiver once the picture has been stored.
	ImagePath *string
	ThumbPath *string
}

// TableName pins the table name used by the store.
func (RobotRecord) TableName() string {
	return "robots"
}

// Identity returns the record's uniqueness key.
func (r *RobotRecord) Identity() Identity {
	return Identity{Number: r.RobotNumber, Slug: r.Slug}
}

// FullName is the robot's display name as written in the announcing post.
func (r *RobotRecord) FullName() string {
	name := r.Prefix + r.Suffix
	if r.Plural != nil {
		name += *r.Plural
	}
	return name
}
