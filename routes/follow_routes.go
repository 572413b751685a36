package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/snap-point/follow-api/controllers"
)

func SetupFollowRoutes(protected *gin.RouterGroup, followController *controllers.FollowController) {
	users := protected.Group("/users")
	{
		users.POST("/:username/follow", followController.Follow)
		users.DELETE("/:username/follow", followController.Unfollow)
		users.DELETE("/:username/follow-request", followController.CancelRequest)
		users.DELETE("/:username/follower", followController.RemoveFollower)
	}

	requests := protected.Group("/follow-requests")
	{
		requests.GET("", followController.ListIncoming)
		requests.GET("/sent", followController.ListOutgoing)
		requests.POST("/resolve", followController.ResolveRequest)
	}
}
