package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/snap-point/follow-api/controllers"
)

func SetupUserRoutes(protected *gin.RouterGroup, userController *controllers.UserController) {
	users := protected.Group("/users")
	{
		users.GET("/:username", userController.GetUserProfile)
		users.GET("/:username/followers", userController.GetFollowers)
		users.GET("/:username/following", userController.GetFollowing)
	}

	protected.PUT("/profile/privacy", userController.UpdatePrivacy)
}
