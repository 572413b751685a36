package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/follow-api/models"
	"github.com/snap-point/follow-api/services"
	"github.com/snap-point/follow-api/utils"
)

type PostController struct {
	Posts *services.PostService
}

func NewPostController(posts *services.PostService) *PostController {
	return &PostController{Posts: posts}
}

func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, services.ErrPostNotFound)
		return 0, false
	}
	return uint(id), true
}

func commentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("commentId"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, services.ErrCommentNotFound)
		return 0, false
	}
	return uint(id), true
}

// CreatePost godoc
// @Summary Create a new post
// @Tags posts
// @Accept json
// @Produce json
// @Param post body CreatePostRequest true "Post creation request"
// @Success 201 {object} models.Post
// @Router /posts [post]
func (pc *PostController) CreatePost(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	allowComments := true
	if req.AllowComments != nil {
		allowComments = *req.AllowComments
	}

	post, err := pc.Posts.Create(c.Request.Context(), user.UserID, req.Content, req.Draft, allowComments)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: post})
}

// GetUserPosts godoc
// @Summary List a user's published posts
// @Tags posts
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {array} models.Post
// @Router /users/{username}/posts [get]
func (pc *PostController) GetUserPosts(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}

	page, pageSize, offset := utils.Pagination(c)
	result, err := pc.Posts.ListByAuthor(c.Request.Context(), user.UserID, c.Param("username"), offset, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       result.Posts,
		Pagination: newPagination(page, pageSize, result.Total),
	})
}

// GetPostDetail godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Router /posts/{id} [get]
func (pc *PostController) GetPostDetail(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	post, err := pc.Posts.Get(c.Request.Context(), user.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: gin.H{
		"post":     post,
		"username": post.Author.Username(),
	}})
}

// UpdatePost godoc
// @Summary Edit your post
// @Description Only the fields present in the body are changed
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param post body UpdatePostRequest true "Fields to change"
// @Success 200 {object} models.Post
// @Router /posts/{id} [put]
func (pc *PostController) UpdatePost(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	post, err := pc.Posts.Update(c.Request.Context(), user.UserID, id, services.PostChanges{
		Content:       req.Content,
		Draft:         req.Draft,
		AllowComments: req.AllowComments,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: post})
}

// DeletePost godoc
// @Summary Delete your post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} StandardResponse
// @Router /posts/{id} [delete]
func (pc *PostController) DeletePost(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	if err := pc.Posts.Delete(c.Request.Context(), user.UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Post deleted"})
}

// AddComment godoc
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param comment body CreateCommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Router /posts/{id}/comments [post]
func (pc *PostController) AddComment(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	comment, err := pc.Posts.Comment(c.Request.Context(), user.UserID, id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: comment})
}

// GetComments godoc
// @Summary List comments of a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {array} models.Comment
// @Router /posts/{id}/comments [get]
func (pc *PostController) GetComments(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	comments, err := pc.Posts.Comments(c.Request.Context(), user.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: comments})
}

// GetComment godoc
// @Summary Get one comment of a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} models.Comment
// @Router /posts/{id}/comments/{commentId} [get]
func (pc *PostController) GetComment(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}

	comment, err := pc.Posts.CommentDetail(c.Request.Context(), user.UserID, id, cid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: gin.H{
		"comment":  comment,
		"username": comment.Author.Username(),
	}})
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description The comment's author and the post's author may delete it
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} StandardResponse
// @Router /posts/{id}/comments/{commentId} [delete]
func (pc *PostController) DeleteComment(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}

	if err := pc.Posts.DeleteComment(c.Request.Context(), user.UserID, id, cid); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Comment deleted"})
}

// LikePost godoc
// @Summary Like or dislike a post
// @Description Sending the same reaction twice removes it
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param reaction body LikeRequest false "Reaction, like by default"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id}/like [post]
func (pc *PostController) LikePost(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	var req LikeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
	}
	if req.Reaction == "" {
		req.Reaction = models.ReactionLike
	}

	reacted, count, err := pc.Posts.React(c.Request.Context(), user.UserID, id, req.Reaction)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"reacted":    reacted,
			"reaction":   req.Reaction,
			"likesCount": count,
		},
	})
}
