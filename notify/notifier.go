// Package notify delivers follow-request notices out of band. Delivery is
// best effort: callers hand notices to a Dispatcher and never wait on the
// transport.
package notify

import (
	"context"
	"time"
)

// FollowRequestNotice tells the target of a private follow request how to
// accept or reject it without signing in.
type FollowRequestNotice struct {
	ID           string    `json:"id"`
	FromUserID   uint      `json:"from_user_id"`
	FromUsername string    `json:"from_username"`
	ToUserID     uint      `json:"to_user_id"`
	ToUsername   string    `json:"to_username"`
	ToEmail      string    `json:"-"`
	AcceptToken  string    `json:"accept_token"`
	RejectToken  string    `json:"reject_token"`
	AcceptURL    string    `json:"accept_url"`
	RejectURL    string    `json:"reject_url"`
	CreatedAt    time.Time `json:"created_at"`
}

type Notifier interface {
	NotifyFollowRequest(ctx context.Context, notice FollowRequestNotice) error
}
