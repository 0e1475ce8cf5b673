package database

import (
	"github.com/google/uuid"
	"github.com/thereayou/warbler/internal/models"
	"gorm.io/gorm/clause"
)

// Follow records that follower follows followed. Following a user who
// is already followed is a no-op.
func (d *Database) Follow(followerID, followedID uuid.UUID) error {
	follow := models.Follow{FollowerID: followerID, FollowedID: followedID}
	return d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
}

// Unfollow removes the edge. Unfollowing a user who was never followed
// is a no-op.
func (d *Database) Unfollow(followerID, followedID uuid.UUID) error {
	return d.db.
		Delete(&models.Follow{}, "follower_id = ? AND followed_id = ?", followerID, followedID).
		Error
}

func (d *Database) IsFollowing(followerID, followedID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

// Following returns the users that userID follows.
func (d *Database) Following(userID string) ([]models.User, error) {
	var users []models.User
	err := d.db.
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

// Followers returns the users that follow userID.
func (d *Database) Followers(userID string) ([]models.User, error) {
	var users []models.User
	err := d.db.
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

// FollowerIDs returns the ids of everyone following userID. Used by the
// stream hub to fan out new messages.
func (d *Database) FollowerIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.Model(&models.Follow{}).
		Where("followed_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}
