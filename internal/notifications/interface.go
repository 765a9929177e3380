package notifications

import "github.com/tinyrobots/robot-archive-bot/internal/models"

// Notifier defines the contract for digest delivery
type Notifier interface {
	SendDigest(digest *models.Digest) error
}
