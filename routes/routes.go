package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"sketchboard/handlers"
	"sketchboard/middleware"
	"sketchboard/token"
)

type Dependencies struct {
	Auth     *handlers.Auth
	Posts    *handlers.Posts
	Comments *handlers.Comments
	Tokens   *token.Service
	Limiter  *middleware.IPRateLimiter
}

func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	// Public routes: registration and login, rate limited per IP since
	// they are the only brute-forceable surface.
	auth := router.Group("/auth")
	auth.Use(middleware.RateLimit(deps.Limiter))
	auth.POST("/register", deps.Auth.Register)
	auth.POST("/login", deps.Auth.Login)

	// Everything else requires a verified bearer token.
	protected := router.Group("/")
	protected.Use(middleware.RequireAuth(deps.Tokens))

	protected.POST("/posts", deps.Posts.Create)
	protected.GET("/posts", deps.Posts.List)
	protected.GET("/posts/:id", deps.Posts.Get)
	protected.DELETE("/posts/:id", deps.Posts.Delete)
	protected.POST("/posts/:id/like", deps.Posts.ToggleLike)
	protected.POST("/posts/:id/comment", deps.Comments.Create)

	protected.GET("/users/myposts", deps.Posts.MyPosts)
	protected.GET("/users/mycomments", deps.Comments.MyComments)

	protected.DELETE("/comments/:id", deps.Comments.Delete)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Endpoint not found"})
	})

	return router
}
