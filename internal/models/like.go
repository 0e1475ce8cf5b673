package models

import (
	"time"

	"github.com/google/uuid"
)

// Like marks that a user liked a message. At most one row per
// (user, message) pair.
type Like struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_user_message"`
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_user_message"`
	CreatedAt time.Time

	User    User    `gorm:"foreignKey:UserID"`
	Message Message `gorm:"foreignKey:MessageID"`
}
