package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow is a directed edge: the follower sees the followed user's
// messages in their feed.
type Follow struct {
	FollowerID uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_follower_followed"`
	FollowedID uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_follower_followed"`
	CreatedAt  time.Time

	Follower User `gorm:"foreignKey:FollowerID"`
	Followed User `gorm:"foreignKey:FollowedID"`
}
