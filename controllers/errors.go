package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/follow-api/middleware"
	"github.com/snap-point/follow-api/services"
)

// respondError maps service errors to a status and a caller-visible message.
// Unknown errors are logged and reported as internal.
func respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, services.ErrSelfFollow):
		status, message = http.StatusBadRequest, "You cannot follow yourself"
	case errors.Is(err, services.ErrAlreadyFollowing):
		status, message = http.StatusConflict, "Already following this user"
	case errors.Is(err, services.ErrDuplicateRequest):
		status, message = http.StatusConflict, "Follow request already sent"
	case errors.Is(err, services.ErrNoPendingRequest):
		status, message = http.StatusNotFound, "No pending follow request"
	case errors.Is(err, services.ErrNotFollowing):
		status, message = http.StatusBadRequest, "You are not following this user"
	case errors.Is(err, services.ErrInvalidToken):
		status, message = http.StatusBadRequest, "Action failed"
	case errors.Is(err, services.ErrPermissionDenied):
		status, message = http.StatusForbidden, "You are not allowed to do this"
	case errors.Is(err, services.ErrUserNotFound):
		status, message = http.StatusNotFound, "User not found"
	case errors.Is(err, services.ErrPostNotFound):
		status, message = http.StatusNotFound, "Post not found"
	case errors.Is(err, services.ErrCommentNotFound):
		status, message = http.StatusNotFound, "Comment not found"
	case errors.Is(err, services.ErrCommentsDisabled):
		status, message = http.StatusForbidden, "Comments are disabled for this post"
	default:
		middleware.Log(c).WithError(err).Error("unhandled error")
		_ = c.Error(err)
	}

	c.JSON(status, gin.H{"success": false, "error": message})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not found in context"})
}
