package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/warbler/internal/models"
)

// MessageView is the JSON shape of a message on the API and the
// timeline stream.
type MessageView struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Liked     bool      `json:"liked,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessageView(m *models.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		Text:      m.Text,
		UserID:    m.UserID,
		Username:  m.User.Username,
		CreatedAt: m.CreatedAt,
	}
}

type CreateMessageRequest struct {
	Text string `json:"text" binding:"required,max=140"`
}
