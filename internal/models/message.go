package models

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxMessageLength = 140

var ErrMessageTooLong = errors.New("message text exceeds the maximum length")

type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Text      string    `gorm:"size:140;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}

// BeforeCreate assigns the id and enforces the length limit for
// callers that bypass form binding. sqlite ignores the column size.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if utf8.RuneCountInString(m.Text) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
