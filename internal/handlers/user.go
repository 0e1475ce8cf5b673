package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/warbler/internal/database"
	"github.com/thereayou/warbler/internal/handlers/forms"
	"github.com/thereayou/warbler/internal/middleware"
	"github.com/thereayou/warbler/internal/services"
)

const profileMessageLimit = 100

type UserHandler struct {
	db     *database.Database
	auth   *services.AuthService
	logger *zap.Logger
}

func NewUserHandler(db *database.Database, auth *services.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{db: db, auth: auth, logger: logger}
}

// ListUsers shows all users, filtered by the q username substring when
// present.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.db.ListUsers(c.Query("q"))
	if err != nil {
		h.logger.Error("list users", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	render(c, http.StatusOK, "users_index.html", gin.H{"Users": users})
}

func (h *UserHandler) ShowUser(c *gin.Context) {
	user, err := h.db.GetUser(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}

	messages, err := h.db.UserMessages(c.Param("id"), profileMessageLimit)
	if err != nil {
		h.logger.Error("user messages", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	data := gin.H{"User": user, "Messages": messages, "IsSelf": false, "IsFollowing": false}
	if me, ok := middleware.UserFromContext(c); ok {
		if me.ID == user.ID {
			data["IsSelf"] = true
		} else if following, err := h.db.IsFollowing(me.ID, user.ID); err == nil {
			data["IsFollowing"] = following
		}
	}
	render(c, http.StatusOK, "users_show.html", data)
}

func (h *UserHandler) ShowFollowing(c *gin.Context) {
	user, err := h.db.GetUser(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}

	following, err := h.db.Following(c.Param("id"))
	if err != nil {
		h.logger.Error("following", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	render(c, http.StatusOK, "users_following.html", gin.H{"User": user, "Following": following})
}

func (h *UserHandler) ShowFollowers(c *gin.Context) {
	user, err := h.db.GetUser(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}

	followers, err := h.db.Followers(c.Param("id"))
	if err != nil {
		h.logger.Error("followers", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	render(c, http.StatusOK, "users_followers.html", gin.H{"User": user, "Followers": followers})
}

func (h *UserHandler) ShowLikes(c *gin.Context) {
	user, err := h.db.GetUser(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}

	likes, err := h.db.LikedMessages(c.Param("id"))
	if err != nil {
		h.logger.Error("liked messages", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	render(c, http.StatusOK, "users_likes.html", gin.H{"User": user, "Likes": likes})
}

// Follow makes the session user follow the target. Following twice is
// a no-op; following yourself is rejected.
func (h *UserHandler) Follow(c *gin.Context) {
	me, _ := middleware.UserFromContext(c)

	target, err := h.db.GetUser(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}

	if target.ID == me.ID {
		middleware.AddFlash(c, "danger", "You cannot follow yourself.")
		c.Redirect(http.StatusFound, "/users/"+me.ID.String()+"/following")
		return
	}

	if err := h.db.Follow(me.ID, target.ID); err != nil {
		h.logger.Error("follow", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Redirect(http.StatusFound, "/users/"+me.ID.String()+"/following")
}

// StopFollowing removes the edge; unfollowing someone never followed
// is a no-op.
func (h *UserHandler) StopFollowing(c *gin.Context) {
	me, _ := middleware.UserFromContext(c)

	target, err := h.db.GetUser(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}

	if err := h.db.Unfollow(me.ID, target.ID); err != nil {
		h.logger.Error("unfollow", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Redirect(http.StatusFound, "/users/"+me.ID.String()+"/following")
}

func (h *UserHandler) ShowProfileForm(c *gin.Context) {
	me, _ := middleware.UserFromContext(c)
	render(c, http.StatusOK, "users_edit.html", gin.H{
		"Form": forms.ProfileForm{
			Username:       me.Username,
			Email:          me.Email,
			ImageURL:       me.ImageURL,
			HeaderImageURL: me.HeaderImageURL,
			Bio:            me.Bio,
			Location:       me.Location,
		},
	})
}

// UpdateProfile re-authenticates with the submitted password before
// committing any field changes, even though the session already
// identifies the user.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	me, _ := middleware.UserFromContext(c)

	var form forms.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "users_edit.html", gin.H{
			"Form":   form,
			"Errors": forms.FieldErrors(err),
		})
		return
	}

	if _, err := h.auth.Authenticate(me.Username, form.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			middleware.AddFlash(c, "danger", "Edit unauthorized.")
			c.Redirect(http.StatusFound, "/")
			return
		}
		h.logger.Error("profile re-auth", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	me.Username = form.Username
	me.Email = form.Email
	me.ImageURL = form.ImageURL
	me.HeaderImageURL = form.HeaderImageURL
	me.Bio = form.Bio
	me.Location = form.Location

	if err := h.db.UpdateUser(me); err != nil {
		if database.IsUniqueViolation(err) {
			middleware.AddFlash(c, "danger", "Username or e-mail already taken")
			render(c, http.StatusConflict, "users_edit.html", gin.H{"Form": form})
			return
		}
		h.logger.Error("update profile", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.Redirect(http.StatusFound, "/users/"+me.ID.String())
}

// DeleteUser removes the account and everything hanging off it.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	me, _ := middleware.UserFromContext(c)

	logOut(c)

	if err := h.db.DeleteUser(me.ID.String()); err != nil {
		h.logger.Error("delete user", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Redirect(http.StatusFound, "/signup")
}
