package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/snap-point/follow-api/cache"
	"github.com/snap-point/follow-api/models"
	"gorm.io/gorm"
)

const countTTL = 300

// Graph reads and writes follower edges. Writes must go through a Graph bound
// to the transaction that also updates the pair's FollowRequest.
type Graph struct {
	DB    *gorm.DB
	Cache cache.Cache
}

func NewGraph(db *gorm.DB, c cache.Cache) *Graph {
	if c == nil {
		c = cache.Nop{}
	}
	return &Graph{DB: db, Cache: c}
}

func (g *Graph) WithTx(tx *gorm.DB) *Graph {
	return &Graph{DB: tx, Cache: g.Cache}
}

func (g *Graph) WithContext(ctx context.Context) *Graph {
	return &Graph{DB: g.DB.WithContext(ctx), Cache: g.Cache}
}

// AddFollower makes follower follow target. viaRequest tells whether the edge
// comes from an approved request; it must agree with the target's privacy.
// Duplicates are reported, not ignored.
func (g *Graph) AddFollower(target, follower *models.Profile, viaRequest bool) error {
	if target.ID == follower.ID {
		return ErrSelfFollow
	}
	if target.Private != viaRequest {
		return ErrPolicyMismatch
	}

	exists, err := g.IsFollower(target.ID, follower.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFollowing
	}

	err = g.DB.Create(&models.Follow{ProfileID: target.ID, FollowerID: follower.ID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyFollowing
	}
	return err
}

// RemoveFollower deletes the edge if present. A missing edge is not an error.
func (g *Graph) RemoveFollower(target, follower *models.Profile) error {
	return g.DB.
		Where("profile_id = ? AND follower_id = ?", target.ID, follower.ID).
		Delete(&models.Follow{}).Error
}

func (g *Graph) IsFollower(targetID, followerID uint) (bool, error) {
	var count int64
	err := g.DB.Model(&models.Follow{}).
		Where("profile_id = ? AND follower_id = ?", targetID, followerID).
		Count(&count).Error
	return count > 0, err
}

func (g *Graph) FollowerCount(profileID uint) (int64, error) {
	return g.count(followerKey(profileID), "profile_id = ?", profileID)
}

func (g *Graph) FollowingCount(profileID uint) (int64, error) {
	return g.count(followingKey(profileID), "follower_id = ?", profileID)
}

func (g *Graph) count(key, where string, profileID uint) (int64, error) {
	if count, ok := g.Cache.GetInt(key); ok {
		return count, nil
	}

	var count int64
	if err := g.DB.Model(&models.Follow{}).Where(where, profileID).Count(&count).Error; err != nil {
		return 0, err
	}
	g.Cache.SetInt(key, count, countTTL)
	return count, nil
}

// Invalidate drops cached counts touched by an edge between the two
// profiles. Call it after the writing transaction committed.
func (g *Graph) Invalidate(targetID, followerID uint) {
	g.Cache.Delete(followerKey(targetID), followingKey(followerID))
}

// FollowEntry is one row of a follower or following list.
type FollowEntry struct {
	ProfileID  uint      `json:"profileId"`
	UserID     uint      `json:"userId"`
	Username   string    `json:"username"`
	FollowedAt time.Time `json:"followedAt"`
}

func (g *Graph) Followers(profileID uint, offset, limit int) ([]FollowEntry, error) {
	return g.list("follows.follower_id", "follows.profile_id = ?", profileID, offset, limit)
}

func (g *Graph) Following(profileID uint, offset, limit int) ([]FollowEntry, error) {
	return g.list("follows.profile_id", "follows.follower_id = ?", profileID, offset, limit)
}

func (g *Graph) list(otherColumn, where string, profileID uint, offset, limit int) ([]FollowEntry, error) {
	entries := make([]FollowEntry, 0)
	err := g.DB.Model(&models.Follow{}).
		Select("profiles.id AS profile_id, users.id AS user_id, users.username, follows.created_at AS followed_at").
		Joins("JOIN profiles ON profiles.id = "+otherColumn).
		Joins("JOIN users ON users.id = profiles.user_id").
		Where(where, profileID).
		Order("follows.created_at DESC, profiles.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	return entries, nil
}

func followerKey(profileID uint) string {
	return fmt.Sprintf("profile:%d:followers", profileID)
}

func followingKey(profileID uint) string {
	return fmt.Sprintf("profile:%d:following", profileID)
}
