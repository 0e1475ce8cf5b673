package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/warbler/internal/models"
	"gorm.io/gorm"
)

// ToggleLike adds a like for the (user, message) pair if absent and
// removes it if present. Returns true when the message ends up liked.
func (d *Database) ToggleLike(userID, messageID uuid.UUID) (bool, error) {
	liked := false
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var like models.Like
		err := tx.
			Where("user_id = ? AND message_id = ?", userID, messageID).
			First(&like).Error

		switch {
		case err == nil:
			return tx.Delete(&models.Like{}, "user_id = ? AND message_id = ?", userID, messageID).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.Like{UserID: userID, MessageID: messageID}).Error
		default:
			return err
		}
	})
	return liked, err
}

// LikedMessageIDs returns the ids of every message the user has liked.
func (d *Database) LikedMessageIDs(userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := d.db.Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, err
	}

	liked := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// LikedMessages returns the messages the user has liked, newest like first.
func (d *Database) LikedMessages(userID string) ([]models.Message, error) {
	var messages []models.Message
	err := d.db.
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC").
		Preload("User").
		Find(&messages).Error
	return messages, err
}

// LikeCount returns how many users have liked the message.
func (d *Database) LikeCount(messageID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.Model(&models.Like{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	return count, err
}
