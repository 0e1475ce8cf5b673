package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/warbler/internal/database"
	"github.com/thereayou/warbler/internal/middleware"
)

const feedLimit = 100

type HomeHandler struct {
	db     *database.Database
	logger *zap.Logger
}

func NewHomeHandler(db *database.Database, logger *zap.Logger) *HomeHandler {
	return &HomeHandler{db: db, logger: logger}
}

// Home shows the anonymous landing page, or for a logged-in user the
// 100 most recent messages from themselves and everyone they follow.
func (h *HomeHandler) Home(c *gin.Context) {
	me, ok := middleware.UserFromContext(c)
	if !ok {
		render(c, http.StatusOK, "home_anon.html", nil)
		return
	}

	messages, err := h.db.Timeline(me.ID, feedLimit)
	if err != nil {
		h.logger.Error("timeline", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	liked, err := h.db.LikedMessageIDs(me.ID)
	if err != nil {
		h.logger.Error("liked ids", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	render(c, http.StatusOK, "home.html", gin.H{
		"Messages": messages,
		"Liked":    liked,
	})
}
