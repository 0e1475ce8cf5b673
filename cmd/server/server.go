package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/thereayou/warbler/internal/database"
	"github.com/thereayou/warbler/internal/handlers"
	"github.com/thereayou/warbler/internal/middleware"
	"github.com/thereayou/warbler/internal/services"
	"github.com/thereayou/warbler/internal/stream"
	"github.com/thereayou/warbler/pkg/auth"
	"github.com/thereayou/warbler/pkg/logging"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *stream.Hub
	Logger     *zap.Logger
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			// fall back to real environment variables
		}
	}

	logger, err := logging.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		panic("logger init failed: " + err.Error())
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		logger.Fatal("postgres connect failed", zap.Error(err))
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		logger.Fatal("invalid REDIS_URL", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	hub := stream.NewHub(logger)
	go hub.Run()

	authSvc := services.NewAuthService(dbConn)

	h := Handlers{
		Home:    handlers.NewHomeHandler(dbConn, logger),
		Auth:    handlers.NewAuthHandler(dbConn, authSvc, logger),
		User:    handlers.NewUserHandler(dbConn, authSvc, logger),
		Message: handlers.NewMessageHandler(dbConn, hub, logger),
		API:     handlers.NewAPIHandler(dbConn, authSvc, jwtMgr, rdb, hub, logger),
		Stream:  handlers.NewStreamHandler(hub, logger),
	}

	router := gin.Default()

	store := cookie.NewStore([]byte(os.Getenv("SESSION_SECRET")))
	router.Use(sessions.Sessions("warbler_session", store))
	router.Use(middleware.CurrentUser(dbConn))

	router.LoadHTMLGlob("web/templates/*.html")
	router.Static("/static", "web/static")

	APIEndpoints(router, jwtMgr, rdb, h)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
		Logger:     logger,
	}
}

// Run serves until SIGINT/SIGTERM, then stops the stream hub and
// drains in-flight requests.
func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: s.Router}

	go func() {
		s.Logger.Info("server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatal("server run error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.Logger.Info("server shutting down")
	s.Hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Error("server shutdown", zap.Error(err))
	}
}
