package database

import (
	"github.com/google/uuid"
	"github.com/thereayou/warbler/internal/models"
	"gorm.io/gorm"
)

func (d *Database) SaveMessage(message *models.Message) error {
	return d.db.Create(message).Error
}

func (d *Database) GetMessage(id string) (*models.Message, error) {
	var message models.Message
	if err := d.db.Preload("User").First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// DeleteMessage removes the message and any likes pointing at it.
func (d *Database) DeleteMessage(id string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Like{}, "message_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Message{}, "id = ?", id).Error
	})
}

// UserMessages returns the user's most recent messages, newest first.
func (d *Database) UserMessages(userID string, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := d.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Preload("User").
		Find(&messages).Error
	return messages, err
}

// Timeline returns the most recent messages authored by the user or by
// anyone they follow, newest first.
func (d *Database) Timeline(userID uuid.UUID, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := d.db.
		Where("user_id = ? OR user_id IN (?)",
			userID,
			d.db.Model(&models.Follow{}).
				Select("followed_id").
				Where("follower_id = ?", userID),
		).
		Order("created_at DESC").
		Limit(limit).
		Preload("User").
		Find(&messages).Error
	return messages, err
}
