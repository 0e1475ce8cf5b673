package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thereayou/warbler/internal/database"
	"github.com/thereayou/warbler/internal/handlers/dto"
	"github.com/thereayou/warbler/internal/middleware"
	"github.com/thereayou/warbler/internal/models"
	"github.com/thereayou/warbler/internal/services"
	"github.com/thereayou/warbler/internal/stream"
	"github.com/thereayou/warbler/pkg/auth"
)

// APIHandler serves the JSON surface used by non-browser clients.
// Authentication is a bearer token instead of the session cookie.
type APIHandler struct {
	db         *database.Database
	auth       *services.AuthService
	jwtManager *auth.JWTManager
	redis      *redis.Client
	hub        *stream.Hub
	logger     *zap.Logger
}

func NewAPIHandler(db *database.Database, authSvc *services.AuthService, jwtMgr *auth.JWTManager, rdb *redis.Client, hub *stream.Hub, logger *zap.Logger) *APIHandler {
	return &APIHandler{db: db, auth: authSvc, jwtManager: jwtMgr, redis: rdb, hub: hub, logger: logger}
}

func (h *APIHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("api login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	token, err := h.jwtManager.Generate(user.ID.String())
	if err != nil {
		h.logger.Error("generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	})
}

// Logout blacklists the presented token in redis until it expires.
func (h *APIHandler) Logout(c *gin.Context) {
	rawToken, err := auth.ExtractTokenFromHeader(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ttl := time.Until(exp)
	h.redis.Set(context.Background(), "blacklist:"+rawToken, 1, ttl)

	c.Status(http.StatusOK)
}

func (h *APIHandler) Timeline(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	messages, err := h.db.Timeline(userID, feedLimit)
	if err != nil {
		h.logger.Error("api timeline", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	liked, err := h.db.LikedMessageIDs(userID)
	if err != nil {
		h.logger.Error("api liked ids", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	views := make([]dto.MessageView, len(messages))
	for i := range messages {
		views[i] = dto.NewMessageView(&messages[i])
		views[i].Liked = liked[messages[i].ID]
	}

	c.JSON(http.StatusOK, gin.H{"messages": views})
}

func (h *APIHandler) CreateMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.db.GetUser(userID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	message := &models.Message{Text: req.Text, UserID: userID}
	if err := h.db.SaveMessage(message); err != nil {
		h.logger.Error("api save message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	message.User = *user
	broadcastMessageEvent(h.hub, h.db, h.logger, stream.TypeMessageNew, message)

	c.JSON(http.StatusCreated, dto.NewMessageView(message))
}
