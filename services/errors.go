package services

import (
	"errors"

	"github.com/snap-point/follow-api/repositories"
)

var (
	ErrSelfFollow       = repositories.ErrSelfFollow
	ErrAlreadyFollowing = repositories.ErrAlreadyFollowing
	ErrDuplicateRequest = errors.New("follow request already sent")
	ErrNoPendingRequest = errors.New("no pending follow request")
	ErrInvalidToken     = errors.New("invalid action token")
	ErrNotFollowing     = errors.New("not following")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUserNotFound     = errors.New("user not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCommentsDisabled = errors.New("comments are disabled for this post")
)

// reason is the metric label for a guard failure.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrSelfFollow):
		return "self_follow"
	case errors.Is(err, ErrAlreadyFollowing):
		return "already_following"
	case errors.Is(err, ErrDuplicateRequest):
		return "duplicate_request"
	case errors.Is(err, ErrNoPendingRequest):
		return "no_pending_request"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrNotFollowing):
		return "not_following"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	}
	return "error"
}
