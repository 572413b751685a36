package models

import (
	"time"
)

// Follow is a directed graph edge: FollowerID follows ProfileID.
type Follow struct {
	ProfileID  uint      `gorm:"primaryKey;autoIncrement:false" json:"profile_id"`
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"follower_id"`
	CreatedAt  time.Time `json:"created_at"`
}
