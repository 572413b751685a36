package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/snap-point/follow-api/controllers"
)

func SetupPostRoutes(protected *gin.RouterGroup, postController *controllers.PostController) {
	posts := protected.Group("/posts")
	{
		posts.POST("", postController.CreatePost)
		posts.GET("/:id", postController.GetPostDetail)
		posts.PUT("/:id", postController.UpdatePost)
		posts.PATCH("/:id", postController.UpdatePost)
		posts.DELETE("/:id", postController.DeletePost)
		posts.POST("/:id/comments", postController.AddComment)
		posts.GET("/:id/comments", postController.GetComments)
		posts.GET("/:id/comments/:commentId", postController.GetComment)
		posts.DELETE("/:id/comments/:commentId", postController.DeleteComment)
		posts.POST("/:id/like", postController.LikePost)
	}

	// User posts routes
	users := protected.Group("/users")
	{
		users.GET("/:username/posts", postController.GetUserPosts)
	}
}
