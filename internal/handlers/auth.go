package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/warbler/internal/database"
	"github.com/thereayou/warbler/internal/handlers/forms"
	"github.com/thereayou/warbler/internal/middleware"
	"github.com/thereayou/warbler/internal/models"
	"github.com/thereayou/warbler/internal/services"
)

type AuthHandler struct {
	db     *database.Database
	auth   *services.AuthService
	logger *zap.Logger
}

func NewAuthHandler(db *database.Database, auth *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, auth: auth, logger: logger}
}

// logIn stores the user id in the session cookie.
func logIn(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID.String())
	return session.Save()
}

func logOut(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(middleware.SessionUserKey)
	session.Save()
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	render(c, http.StatusOK, "signup.html", gin.H{"Form": forms.SignupForm{}})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var form forms.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "signup.html", gin.H{
			"Form":   form,
			"Errors": forms.FieldErrors(err),
		})
		return
	}

	user, err := h.auth.Signup(form.Username, form.Email, form.Password, form.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			middleware.AddFlash(c, "danger", "Username already taken")
			render(c, http.StatusConflict, "signup.html", gin.H{"Form": form})
		case errors.Is(err, services.ErrEmailTaken):
			middleware.AddFlash(c, "danger", "E-mail already taken")
			render(c, http.StatusConflict, "signup.html", gin.H{"Form": form})
		default:
			h.logger.Error("signup failed", zap.Error(err))
			render(c, http.StatusInternalServerError, "signup.html", gin.H{"Form": form})
		}
		return
	}

	if err := logIn(c, user); err != nil {
		h.logger.Error("save session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"Form": forms.LoginForm{}})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form forms.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{
			"Form":   form,
			"Errors": forms.FieldErrors(err),
		})
		return
	}

	user, err := h.auth.Authenticate(form.Username, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			middleware.AddFlash(c, "danger", "Invalid credentials.")
			render(c, http.StatusUnauthorized, "login.html", gin.H{"Form": form})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		render(c, http.StatusInternalServerError, "login.html", gin.H{"Form": form})
		return
	}

	if err := logIn(c, user); err != nil {
		h.logger.Error("save session", zap.Error(err))
	}
	middleware.AddFlash(c, "success", "Hello, "+user.Username+"!")
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	logOut(c)
	middleware.AddFlash(c, "success", "See you later!")
	c.Redirect(http.StatusFound, "/login")
}
