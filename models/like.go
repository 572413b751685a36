package models

import (
	"time"
)

const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

type Like struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_profile" json:"postId"`
	ProfileID uint      `gorm:"not null;uniqueIndex:idx_likes_post_profile" json:"profileId"`
	Reaction  string    `gorm:"size:7;not null" json:"reaction"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
