package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/thereayou/warbler/internal/handlers"
	"github.com/thereayou/warbler/internal/middleware"
	"github.com/thereayou/warbler/pkg/auth"
)

type Handlers struct {
	Home    *handlers.HomeHandler
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Message *handlers.MessageHandler
	API     *handlers.APIHandler
	Stream  *handlers.StreamHandler
}

func APIEndpoints(r *gin.Engine, jwtMgr *auth.JWTManager, rdb *redis.Client, h Handlers) {
	r.GET("/", h.Home.Home)

	r.GET("/signup", h.Auth.ShowSignup)
	r.POST("/signup", h.Auth.Signup)
	r.GET("/login", h.Auth.ShowLogin)
	r.POST("/login", h.Auth.Login)
	r.GET("/logout", h.Auth.Logout)

	r.GET("/users", h.User.ListUsers)
	r.GET("/users/:id", h.User.ShowUser)
	r.GET("/messages/:id", h.Message.ShowMessage)

	// Everything that mutates, plus the social pages, requires a login.
	authorized := r.Group("/")
	authorized.Use(middleware.LoginRequired())
	{
		authorized.GET("/users/:id/following", h.User.ShowFollowing)
		authorized.GET("/users/:id/followers", h.User.ShowFollowers)
		authorized.GET("/users/:id/likes", h.User.ShowLikes)
		authorized.POST("/users/follow/:id", h.User.Follow)
		authorized.POST("/users/stop-following/:id", h.User.StopFollowing)
		authorized.GET("/users/profile", h.User.ShowProfileForm)
		authorized.POST("/users/profile", h.User.UpdateProfile)
		authorized.POST("/users/delete", h.User.DeleteUser)
		authorized.POST("/users/add_like/:id", h.Message.ToggleLike)

		authorized.GET("/messages/new", h.Message.ShowNewForm)
		authorized.POST("/messages/new", h.Message.CreateMessage)
		authorized.POST("/messages/:id/delete", h.Message.DeleteMessage)
	}

	// JSON API
	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", h.API.Login)

		protected := api.Group("/")
		protected.Use(middleware.APIAuth(jwtMgr, rdb))
		{
			protected.POST("/auth/logout", h.API.Logout)
			protected.GET("/timeline", h.API.Timeline)
			protected.POST("/messages", h.API.CreateMessage)
		}
	}

	// Live timeline stream
	r.GET("/ws/timeline", middleware.StreamAuth(jwtMgr, rdb), h.Stream.HandleTimeline)
}
