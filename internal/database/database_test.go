package database

import (
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/thereayou/warbler/internal/models"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewDatabase(db)
}

func createUser(t *testing.T, d *Database, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, d.SaveUser(user))
	return user
}

func createMessage(t *testing.T, d *Database, user *models.User, text string, at time.Time) *models.Message {
	t.Helper()
	message := &models.Message{Text: text, UserID: user.ID, CreatedAt: at}
	require.NoError(t, d.SaveMessage(message))
	return message
}

func TestFollowLifecycle(t *testing.T) {
	d := setupTestDB(t)
	u1 := createUser(t, d, "alice")
	u2 := createUser(t, d, "bob")

	require.NoError(t, d.Follow(u1.ID, u2.ID))

	following, err := d.IsFollowing(u1.ID, u2.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// the reverse direction stays false
	reverse, err := d.IsFollowing(u2.ID, u1.ID)
	require.NoError(t, err)
	assert.False(t, reverse)

	followers, err := d.Followers(u2.ID.String())
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	followed, err := d.Following(u1.ID.String())
	require.NoError(t, err)
	require.Len(t, followed, 1)
	assert.Equal(t, "bob", followed[0].Username)
}

func TestFollowIsIdempotent(t *testing.T) {
	d := setupTestDB(t)
	u1 := createUser(t, d, "alice")
	u2 := createUser(t, d, "bob")

	require.NoError(t, d.Follow(u1.ID, u2.ID))
	require.NoError(t, d.Follow(u1.ID, u2.ID))

	var count int64
	require.NoError(t, d.db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, d.Unfollow(u1.ID, u2.ID))
	require.NoError(t, d.Unfollow(u1.ID, u2.ID))

	require.NoError(t, d.db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestToggleLikeRestoresCount(t *testing.T) {
	d := setupTestDB(t)
	author := createUser(t, d, "alice")
	fan := createUser(t, d, "bob")
	message := createMessage(t, d, author, "hello", time.Now())

	before, err := d.LikeCount(message.ID)
	require.NoError(t, err)

	liked, err := d.ToggleLike(fan.ID, message.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	mid, err := d.LikeCount(message.ID)
	require.NoError(t, err)
	assert.Equal(t, before+1, mid)

	liked, err = d.ToggleLike(fan.ID, message.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	after, err := d.LikeCount(message.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLikedMessageIDs(t *testing.T) {
	d := setupTestDB(t)
	author := createUser(t, d, "alice")
	fan := createUser(t, d, "bob")
	m1 := createMessage(t, d, author, "one", time.Now())
	m2 := createMessage(t, d, author, "two", time.Now())

	_, err := d.ToggleLike(fan.ID, m1.ID)
	require.NoError(t, err)

	liked, err := d.LikedMessageIDs(fan.ID)
	require.NoError(t, err)
	assert.True(t, liked[m1.ID])
	assert.False(t, liked[m2.ID])
}

func TestTimelineOnlyShowsSelfAndFollowed(t *testing.T) {
	d := setupTestDB(t)
	me := createUser(t, d, "alice")
	friend := createUser(t, d, "bob")
	stranger := createUser(t, d, "carol")

	require.NoError(t, d.Follow(me.ID, friend.ID))

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	createMessage(t, d, me, "mine", base)
	createMessage(t, d, friend, "friendly", base.Add(time.Minute))
	createMessage(t, d, stranger, "noise", base.Add(2*time.Minute))

	timeline, err := d.Timeline(me.ID, 100)
	require.NoError(t, err)
	require.Len(t, timeline, 2)

	// newest first, stranger excluded
	assert.Equal(t, "friendly", timeline[0].Text)
	assert.Equal(t, "mine", timeline[1].Text)
	for _, m := range timeline {
		assert.NotEqual(t, stranger.ID, m.UserID)
	}
}

func TestTimelineLimit(t *testing.T) {
	d := setupTestDB(t)
	me := createUser(t, d, "alice")

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createMessage(t, d, me, "m", base.Add(time.Duration(i)*time.Second))
	}

	timeline, err := d.Timeline(me.ID, 3)
	require.NoError(t, err)
	assert.Len(t, timeline, 3)
}

func TestUserMessagesNewestFirst(t *testing.T) {
	d := setupTestDB(t)
	u := createUser(t, d, "alice")

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	createMessage(t, d, u, "old", base)
	createMessage(t, d, u, "new", base.Add(time.Hour))

	messages, err := d.UserMessages(u.ID.String(), 100)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "new", messages[0].Text)
	assert.Equal(t, "alice", messages[0].User.Username)
}

func TestDeleteUserCascades(t *testing.T) {
	d := setupTestDB(t)
	victim := createUser(t, d, "alice")
	other := createUser(t, d, "bob")

	msg := createMessage(t, d, victim, "bye", time.Now())
	otherMsg := createMessage(t, d, other, "stays", time.Now())

	require.NoError(t, d.Follow(victim.ID, other.ID))
	require.NoError(t, d.Follow(other.ID, victim.ID))

	_, err := d.ToggleLike(victim.ID, otherMsg.ID)
	require.NoError(t, err)
	_, err = d.ToggleLike(other.ID, msg.ID)
	require.NoError(t, err)

	require.NoError(t, d.DeleteUser(victim.ID.String()))

	_, err = d.GetUser(victim.ID.String())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var messages, follows, likes int64
	require.NoError(t, d.db.Model(&models.Message{}).Where("user_id = ?", victim.ID).Count(&messages).Error)
	require.NoError(t, d.db.Model(&models.Follow{}).Where("follower_id = ? OR followed_id = ?", victim.ID, victim.ID).Count(&follows).Error)
	require.NoError(t, d.db.Model(&models.Like{}).Where("user_id = ? OR message_id = ?", victim.ID, msg.ID).Count(&likes).Error)
	assert.Zero(t, messages)
	assert.Zero(t, follows)
	assert.Zero(t, likes)

	// unrelated rows survive
	_, err = d.GetMessage(otherMsg.ID.String())
	assert.NoError(t, err)
}

func TestDeleteMessageRemovesLikes(t *testing.T) {
	d := setupTestDB(t)
	author := createUser(t, d, "alice")
	fan := createUser(t, d, "bob")
	msg := createMessage(t, d, author, "gone soon", time.Now())

	_, err := d.ToggleLike(fan.ID, msg.ID)
	require.NoError(t, err)

	require.NoError(t, d.DeleteMessage(msg.ID.String()))

	var likes int64
	require.NoError(t, d.db.Model(&models.Like{}).Where("message_id = ?", msg.ID).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestFollowerIDs(t *testing.T) {
	d := setupTestDB(t)
	star := createUser(t, d, "alice")
	f1 := createUser(t, d, "bob")
	f2 := createUser(t, d, "carol")

	require.NoError(t, d.Follow(f1.ID, star.ID))
	require.NoError(t, d.Follow(f2.ID, star.ID))

	ids, err := d.FollowerIDs(star.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{f1.ID, f2.ID}, ids)
}

func TestListUsersSearch(t *testing.T) {
	d := setupTestDB(t)
	createUser(t, d, "alice")
	createUser(t, d, "alina")
	createUser(t, d, "bob")

	all, err := d.ListUsers("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matched, err := d.ListUsers("ali")
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "alice", matched[0].Username)
	assert.Equal(t, "alina", matched[1].Username)
}

func TestSaveMessageRejectsOverlongText(t *testing.T) {
	d := setupTestDB(t)
	user := createUser(t, d, "alice")

	long := strings.Repeat("a", models.MaxMessageLength+1)
	err := d.SaveMessage(&models.Message{Text: long, UserID: user.ID})
	assert.ErrorIs(t, err, models.ErrMessageTooLong)

	exact := strings.Repeat("a", models.MaxMessageLength)
	require.NoError(t, d.SaveMessage(&models.Message{Text: exact, UserID: user.ID}))
}
