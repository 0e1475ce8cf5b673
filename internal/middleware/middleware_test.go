package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/thereayou/warbler/internal/database"
	"github.com/thereayou/warbler/internal/models"
	"github.com/thereayou/warbler/pkg/auth"
)

func setupRouter(t *testing.T) (*gin.Engine, *database.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gdb))
	db := database.NewDatabase(gdb)

	r := gin.New()
	store := cookie.NewStore([]byte("test-session-secret-0123456789ab"))
	r.Use(sessions.Sessions("warbler_session", store))
	r.Use(CurrentUser(db))
	return r, db
}

func TestCurrentUserResolvesSession(t *testing.T) {
	r, db := setupRouter(t)

	user := &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "x"}
	require.NoError(t, db.SaveUser(user))

	r.GET("/session-login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionUserKey, user.ID.String())
		session.Save()
		c.Status(http.StatusOK)
	})
	r.GET("/whoami", func(c *gin.Context) {
		if me, ok := UserFromContext(c); ok {
			c.String(http.StatusOK, me.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session-login", nil))
	cookies := w.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "alice", w.Body.String())

	// without the cookie the request is anonymous
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestCurrentUserClearsStaleSession(t *testing.T) {
	r, db := setupRouter(t)

	user := &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "x"}
	require.NoError(t, db.SaveUser(user))

	r.GET("/session-login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionUserKey, user.ID.String())
		session.Save()
		c.Status(http.StatusOK)
	})
	r.GET("/whoami", func(c *gin.Context) {
		if _, ok := UserFromContext(c); ok {
			c.String(http.StatusOK, "logged in")
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session-login", nil))
	cookies := w.Result().Cookies()

	// the user disappears while the session cookie lives on
	require.NoError(t, db.DeleteUser(user.ID.String()))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestLoginRequiredRedirectsAnonymous(t *testing.T) {
	r, _ := setupRouter(t)

	r.POST("/protected", LoginRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/protected", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestFlashRoundTrip(t *testing.T) {
	r, _ := setupRouter(t)

	r.GET("/flash", func(c *gin.Context) {
		AddFlash(c, "danger", "Access unauthorized.")
		flashes := TakeFlashes(c)
		require.Len(t, flashes, 1)
		assert.Equal(t, "danger", flashes[0].Category)
		assert.Equal(t, "Access unauthorized.", flashes[0].Text)

		// drained after the first read
		assert.Empty(t, TakeFlashes(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flash", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStreamAuthRejectsRevokedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtMgr.Generate(uuid.New().String())
	require.NoError(t, err)

	r := gin.New()
	r.GET("/ws", StreamAuth(jwtMgr, rdb), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// revoked via the logout blacklist
	require.NoError(t, rdb.Set(context.Background(), "blacklist:"+token, 1, time.Hour).Err())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
