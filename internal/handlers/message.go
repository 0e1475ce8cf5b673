package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/warbler/internal/database"
	"github.com/thereayou/warbler/internal/handlers/forms"
	"github.com/thereayou/warbler/internal/middleware"
	"github.com/thereayou/warbler/internal/models"
	"github.com/thereayou/warbler/internal/stream"
)

type MessageHandler struct {
	db     *database.Database
	hub    *stream.Hub
	logger *zap.Logger
}

func NewMessageHandler(db *database.Database, hub *stream.Hub, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{db: db, hub: hub, logger: logger}
}

func (h *MessageHandler) ShowNewForm(c *gin.Context) {
	render(c, http.StatusOK, "messages_new.html", gin.H{"Form": forms.MessageForm{}})
}

func (h *MessageHandler) CreateMessage(c *gin.Context) {
	me, _ := middleware.UserFromContext(c)

	var form forms.MessageForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "messages_new.html", gin.H{
			"Form":   form,
			"Errors": forms.FieldErrors(err),
		})
		return
	}

	message := &models.Message{Text: form.Text, UserID: me.ID}
	if err := h.db.SaveMessage(message); err != nil {
		h.logger.Error("save message", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	message.User = *me
	broadcastMessageEvent(h.hub, h.db, h.logger, stream.TypeMessageNew, message)

	c.Redirect(http.StatusFound, "/users/"+me.ID.String())
}

func (h *MessageHandler) ShowMessage(c *gin.Context) {
	message, err := h.db.GetMessage(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}
	isOwner := false
	if me, ok := middleware.UserFromContext(c); ok {
		isOwner = me.ID == message.UserID
	}
	render(c, http.StatusOK, "messages_show.html", gin.H{"Message": message, "IsOwner": isOwner})
}

// DeleteMessage removes a message. Only the owner may delete it.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	me, _ := middleware.UserFromContext(c)

	message, err := h.db.GetMessage(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}

	if message.UserID != me.ID {
		middleware.AddFlash(c, "danger", "Access unauthorized.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := h.db.DeleteMessage(c.Param("id")); err != nil {
		h.logger.Error("delete message", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	broadcastMessageEvent(h.hub, h.db, h.logger, stream.TypeMessageDelete, message)

	c.Redirect(http.StatusFound, "/users/"+me.ID.String())
}

// ToggleLike adds the like if absent and removes it if present, then
// sends the user back home.
func (h *MessageHandler) ToggleLike(c *gin.Context) {
	me, _ := middleware.UserFromContext(c)

	message, err := h.db.GetMessage(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}

	if _, err := h.db.ToggleLike(me.ID, message.ID); err != nil {
		h.logger.Error("toggle like", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Redirect(http.StatusFound, "/")
}
