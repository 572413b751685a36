package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/follow-api/controllers"
	"github.com/snap-point/follow-api/metrics"
	"github.com/snap-point/follow-api/middleware"
	"github.com/snap-point/follow-api/repositories"
	"github.com/snap-point/follow-api/services"
)

type Dependencies struct {
	JWTSecret  string
	Store      *repositories.RelationshipStore
	Graph      *repositories.Graph
	Follows    *services.FollowService
	Posts      *services.PostService
	Visibility *services.Visibility
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	// Initialize controllers
	followController := controllers.NewFollowController(deps.Follows)
	userController := controllers.NewUserController(deps.Store, deps.Graph, deps.Visibility, deps.Follows)
	postController := controllers.NewPostController(deps.Posts)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Public routes
	public := r.Group("/api")
	{
		public.GET("/follow-requests/confirm/:token", followController.ConfirmRequest)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.JWTSecret))
	{
		SetupFollowRoutes(protected, followController)
		SetupUserRoutes(protected, userController)
		SetupPostRoutes(protected, postController)
	}
}
