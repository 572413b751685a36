package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/follow-api/models"
	"github.com/snap-point/follow-api/repositories"
	"github.com/snap-point/follow-api/services"
	"github.com/snap-point/follow-api/utils"
)

type UserController struct {
	Store      *repositories.RelationshipStore
	Graph      *repositories.Graph
	Visibility *services.Visibility
	Follows    *services.FollowService
}

func NewUserController(store *repositories.RelationshipStore, graph *repositories.Graph, visibility *services.Visibility, follows *services.FollowService) *UserController {
	return &UserController{Store: store, Graph: graph, Visibility: visibility, Follows: follows}
}

// viewer resolves the caller's profile and the profile named in the path.
func (uc *UserController) viewer(c *gin.Context) (actor, target *models.Profile, ok bool) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return nil, nil, false
	}

	store := uc.Store.WithContext(c.Request.Context())
	actor, err := store.EnsureProfile(user.UserID)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	target, err = store.ProfileByUsername(c.Param("username"))
	if errors.Is(err, repositories.ErrNotFound) {
		respondError(c, services.ErrUserNotFound)
		return nil, nil, false
	}
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return actor, target, true
}

// GetUserProfile godoc
// @Summary Get a user's profile
// @Description Returns profile details, counts and the caller's relationship to the user. Bio and name are hidden from callers who cannot see a private profile.
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]interface{}
// @Router /users/{username} [get]
func (uc *UserController) GetUserProfile(c *gin.Context) {
	actor, target, ok := uc.viewer(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	canView, err := uc.Visibility.CanViewOrInteract(ctx, actor.ID, target)
	if err != nil {
		respondError(c, err)
		return
	}

	graph := uc.Graph.WithContext(ctx)
	followersCount, err := graph.FollowerCount(target.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	followingCount, err := graph.FollowingCount(target.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	isOwnProfile := actor.ID == target.ID
	var isFollowing, isFollowPending bool
	if !isOwnProfile {
		request, err := uc.Store.WithContext(ctx).FindRequest(actor.UserID, target.UserID, false)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			respondError(c, err)
			return
		}
		if request != nil {
			isFollowing = request.Status == models.FollowStatusAccepted
			isFollowPending = request.Status == models.FollowStatusPending
		}
	}

	data := gin.H{
		"id":              target.ID,
		"username":        target.Username(),
		"private":         target.Private,
		"createdAt":       target.CreatedAt,
		"isOwnProfile":    isOwnProfile,
		"isFollowing":     isFollowing,
		"isFollowPending": isFollowPending,
		"canView":         canView,
		"followersCount":  followersCount,
		"followingCount":  followingCount,
	}
	if canView {
		data["firstName"] = target.FirstName
		data["lastName"] = target.LastName
		data["bio"] = target.Bio
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// GetFollowers godoc
// @Summary List a user's followers
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {array} repositories.FollowEntry
// @Router /users/{username}/followers [get]
func (uc *UserController) GetFollowers(c *gin.Context) {
	uc.listEdges(c, true)
}

// GetFollowing godoc
// @Summary List the users a user follows
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {array} repositories.FollowEntry
// @Router /users/{username}/following [get]
func (uc *UserController) GetFollowing(c *gin.Context) {
	uc.listEdges(c, false)
}

func (uc *UserController) listEdges(c *gin.Context, followers bool) {
	actor, target, ok := uc.viewer(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	canView, err := uc.Visibility.CanViewOrInteract(ctx, actor.ID, target)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canView {
		respondError(c, services.ErrPermissionDenied)
		return
	}

	page, pageSize, offset := utils.Pagination(c)
	graph := uc.Graph.WithContext(ctx)

	var (
		entries []repositories.FollowEntry
		total   int64
	)
	if followers {
		if entries, err = graph.Followers(target.ID, offset, pageSize); err == nil {
			total, err = graph.FollowerCount(target.ID)
		}
	} else {
		if entries, err = graph.Following(target.ID, offset, pageSize); err == nil {
			total, err = graph.FollowingCount(target.ID)
		}
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       entries,
		Pagination: newPagination(page, pageSize, total),
	})
}

// UpdatePrivacy godoc
// @Summary Make your profile private or public
// @Description Pending requests stay pending and existing followers are kept
// @Tags users
// @Accept json
// @Produce json
// @Param request body PrivacyRequest true "Privacy flag"
// @Success 200 {object} models.Profile
// @Router /profile/privacy [put]
func (uc *UserController) UpdatePrivacy(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}

	var req PrivacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	profile, err := uc.Follows.SetPrivacy(c.Request.Context(), user.UserID, *req.Private)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: profile})
}
