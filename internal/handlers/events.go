package handlers

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/thereayou/warbler/internal/database"
	"github.com/thereayou/warbler/internal/handlers/dto"
	"github.com/thereayou/warbler/internal/models"
	"github.com/thereayou/warbler/internal/stream"
)

// broadcastMessageEvent fans a message event out to the author and
// everyone following them.
func broadcastMessageEvent(hub *stream.Hub, db *database.Database, logger *zap.Logger, typ stream.EventType, message *models.Message) {
	audience, err := db.FollowerIDs(message.UserID)
	if err != nil {
		logger.Error("stream audience", zap.Error(err))
		return
	}
	audience = append(audience, message.UserID)

	data, err := json.Marshal(dto.NewMessageView(message))
	if err != nil {
		logger.Error("encode message view", zap.Error(err))
		return
	}

	hub.Publish(stream.Event{
		Type:      typ,
		UserID:    message.UserID,
		Data:      data,
		Timestamp: time.Now(),
	}, audience)
}
