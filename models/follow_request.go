package models

import (
	"time"
)

type FollowStatus string

const (
	FollowStatusPending  FollowStatus = "pending"
	FollowStatusAccepted FollowStatus = "accepted"
	FollowStatusRejected FollowStatus = "rejected"
	FollowStatusDeleted  FollowStatus = "deleted"
)

func (s FollowStatus) Valid() bool {
	switch s {
	case FollowStatusPending, FollowStatusAccepted, FollowStatusRejected, FollowStatusDeleted:
		return true
	}
	return false
}

// Rerequestable reports whether a new follow attempt may reopen the row.
func (s FollowStatus) Rerequestable() bool {
	return s == FollowStatusRejected || s == FollowStatusDeleted
}

// FollowRequest is the single record of intent for an ordered pair of
// accounts. Rows are never removed; cancelling or unfollowing moves them to
// FollowStatusDeleted. AcceptedAt is set when the pair becomes a follow and
// cleared when a new request reopens the row, so a deleted row with
// AcceptedAt set was unfollowed rather than cancelled.
type FollowRequest struct {
	ID         uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	FromUserID uint         `gorm:"not null;uniqueIndex:idx_follow_requests_pair" json:"from_user_id"`
	ToUserID   uint         `gorm:"not null;uniqueIndex:idx_follow_requests_pair;index:idx_follow_requests_to_status" json:"to_user_id"`
	Status     FollowStatus `gorm:"not null;size:16;index:idx_follow_requests_to_status" json:"status"`
	AcceptedAt *time.Time   `json:"accepted_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Unfollowed reports whether the row was deleted after having been accepted.
func (r *FollowRequest) Unfollowed() bool {
	return r.Status == FollowStatusDeleted && r.AcceptedAt != nil
}

// Deleted mirrors the soft-delete flag of older clients.
func (r *FollowRequest) Deleted() bool {
	return r.Status == FollowStatusDeleted
}
