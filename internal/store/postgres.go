package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/tinyrobots/robot-archive-bot/internal/models"
)

// PostgresStore implements Store on a Postgres database.
type PostgresStore struct {
	db *gorm.DB
}

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to Postgres at the given URL and verifies the
// connection. The caller should call Close when done.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Migrate creates or updates the robots table.
func (s *PostgresStore) Migrate() error {
	return s.db.AutoMigrate(&models.RobotRecord{})
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateRobots inserts every record in one transaction, using the identity
// index for conflict detection. Inserting never mutates existing rows.
func (s *PostgresStore) CreateRobots(ctx context.Context, records []*models.RobotRecord) (created, duplicates []models.Identity, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "robot_number"}, {Name: "slug"}},
				DoNothing: true,
			}).Create(rec)

			if res.Error != nil {
				return res.Error
			}

			if res.RowsAffected == 0 {
				duplicates = append(duplicates, rec.Identity())
			} else {
				created = append(created, rec.Identity())
			}
		}
		return nil
	})

	if err != nil {
		return nil, nil, fmt.Errorf("failed to store robot group: %w", err)
	}
	return created, duplicates, nil
}

func (s *PostgresStore) ExistingPostIDs(ctx context.Context, ids []uint64) (map[uint64]bool, error) {
	if len(ids) == 0 {
		return map[uint64]bool{}, nil
	}

	signed := make([]int64, len(ids))
	for i, id := range ids {
		signed[i] = int64(id)
	}

	var rows []int64
	err := s.db.WithContext(ctx).
		Model(&models.RobotRecord{}).
		Distinct("post_id").
		Where("post_id IN ?", signed).
		Pluck("post_id", &rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing post ids: %w", err)
	}

	known := make(map[uint64]bool, len(rows))
	for _, id := range rows {
		known[uint64(id)] = true
	}
	return known, nil
}

func (s *PostgresStore) PostIDs(ctx context.Context) ([]uint64, error) {
	var rows []int64
	err := s.db.WithContext(ctx).
		Model(&models.RobotRecord{}).
		Distinct("post_id").
		Order("post_id").
		Pluck("post_id", &rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve post ids: %w", err)
	}

	ids := make([]uint64, len(rows))
	for i, id := range rows {
		ids[i] = uint64(id)
	}
	return ids, nil
}

func (s *PostgresStore) RobotsMissingImages(ctx context.Context) ([]models.RobotRecord, error) {
	var records []models.RobotRecord
	err := s.db.WithContext(ctx).
		Where("image_path IS NULL").
		Order("robot_number").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve robots missing images: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) SetImagePaths(ctx context.Context, id uint, imagePath, thumbPath string) error {
	err := s.db.WithContext(ctx).
		Model(&models.RobotRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"image_path": imagePath,
			"thumb_path": thumbPath,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update image paths for robot %d: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) RobotsCreatedSince(ctx context.Context, since time.Time) ([]models.RobotRecord, error) {
	var records []models.RobotRecord
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("robot_number").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve recent robots: %w", err)
	}
	return records, nil
}
