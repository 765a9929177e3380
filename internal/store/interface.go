package store

import (
	"context"
	"time"

	"github.com/tinyrobots/robot-archive-bot/internal/models"
)

// Store defines the persistence operations of the archive.
type Store interface {
	// CreateRobots inserts the given records inside one transaction. Records
	// whose identity already exists are left untouched and reported as
	// duplicates; the rest are created. A database error rolls the whole
	// group back.
	CreateRobots(ctx context.Context, records []*models.RobotRecord) (created, duplicates []models.Identity, err error)

	// ExistingPostIDs reports which of the given post ids already have at
	// least one stored robot.
	ExistingPostIDs(ctx context.Context, ids []uint64) (map[uint64]bool, error)

	// PostIDs returns the distinct post ids of all stored robots.
	PostIDs(ctx context.Context) ([]uint64, error)

	// RobotsMissingImages returns records whose picture has not been
	// archived yet.
	RobotsMissingImages(ctx context.Context) ([]models.RobotRecord, error)

	// SetImagePaths records where a robot's archived picture and thumbnail
	// were stored.
	SetImagePaths(ctx context.Context, id uint, imagePath, thumbPath string) error

	// RobotsCreatedSince returns records archived at or after the given time.
	RobotsCreatedSince(ctx context.Context, since time.Time) ([]models.RobotRecord, error)
}
