package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/follow-api/models"
	"github.com/snap-point/follow-api/services"
	"github.com/snap-point/follow-api/utils"
)

type FollowController struct {
	Follows *services.FollowService
}

func NewFollowController(follows *services.FollowService) *FollowController {
	return &FollowController{Follows: follows}
}

// Follow godoc
// @Summary Follow a user
// @Description Follows a public profile directly or sends a follow request to a private one
// @Tags follows
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} services.FollowResult
// @Success 201 {object} services.FollowResult
// @Router /users/{username}/follow [post]
func (fc *FollowController) Follow(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}

	result, err := fc.Follows.InitiateFollow(c.Request.Context(), user.UserID, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	status, message := http.StatusOK, "Now following"
	if result.Status == models.FollowStatusPending {
		status, message = http.StatusCreated, "Follow request sent"
	}
	c.JSON(status, StandardResponse{Success: true, Data: result, Message: message})
}

// Unfollow godoc
// @Summary Unfollow a user
// @Tags follows
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} StandardResponse
// @Router /users/{username}/follow [delete]
func (fc *FollowController) Unfollow(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}

	if err := fc.Follows.Unfollow(c.Request.Context(), user.UserID, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Unfollowed"})
}

// CancelRequest godoc
// @Summary Cancel a pending follow request
// @Tags follows
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} StandardResponse
// @Router /users/{username}/follow-request [delete]
func (fc *FollowController) CancelRequest(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}

	if err := fc.Follows.CancelPending(c.Request.Context(), user.UserID, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Follow request cancelled"})
}

// RemoveFollower godoc
// @Summary Remove one of your followers
// @Tags follows
// @Produce json
// @Param username path string true "Follower username"
// @Success 200 {object} StandardResponse
// @Router /users/{username}/follower [delete]
func (fc *FollowController) RemoveFollower(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}

	if err := fc.Follows.RemoveFollower(c.Request.Context(), user.UserID, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Follower removed"})
}

// ResolveRequest godoc
// @Summary Accept or reject a follow request
// @Description Applies the decision carried by a signed action token
// @Tags follow-requests
// @Accept json
// @Produce json
// @Param request body ResolveRequest true "Action token"
// @Success 200 {object} models.FollowRequest
// @Router /follow-requests/resolve [post]
func (fc *FollowController) ResolveRequest(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	request, err := fc.Follows.ResolveActionToken(c.Request.Context(), user.UserID, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: request, Message: "Follow request " + string(request.Status)})
}

// ConfirmRequest godoc
// @Summary Accept or reject a follow request from an email link
// @Tags follow-requests
// @Produce json
// @Param token path string true "Action token"
// @Success 200 {object} models.FollowRequest
// @Router /follow-requests/confirm/{token} [get]
func (fc *FollowController) ConfirmRequest(c *gin.Context) {
	request, err := fc.Follows.ConfirmActionToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: request, Message: "Follow request " + string(request.Status)})
}

// ListIncoming godoc
// @Summary List follow requests waiting for you
// @Tags follow-requests
// @Produce json
// @Success 200 {array} repositories.PendingRequest
// @Router /follow-requests [get]
func (fc *FollowController) ListIncoming(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}

	requests, err := fc.Follows.ListPendingIncoming(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: requests})
}

// ListOutgoing godoc
// @Summary List follow requests you sent
// @Tags follow-requests
// @Produce json
// @Success 200 {array} repositories.PendingRequest
// @Router /follow-requests/sent [get]
func (fc *FollowController) ListOutgoing(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}

	requests, err := fc.Follows.ListPendingOutgoing(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: requests})
}
