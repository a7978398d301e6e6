package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"microblog/handlers"
	"microblog/middleware"
)

// SetupRouter wires the URL surface. Static segments take priority
// over the profile wildcard, so /new/ and /follow/ never resolve as
// usernames.
func SetupRouter(h *handlers.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.RateLimit(middleware.NewIPRateLimiter(300, time.Minute)))

	auth := h.Auth

	router.GET("/", middleware.CachePage(h.Pages, h.CacheTTL), h.Index)
	router.GET("/group/:slug/", h.GroupPosts)

	router.GET("/new/", auth.RequireAuth(), h.NewPostForm)
	router.POST("/new/", auth.RequireAuth(), h.CreatePost)

	router.GET("/follow/", auth.RequireAuth(), h.FollowIndex)

	router.GET("/auth/login/", h.LoginForm)
	router.POST("/auth/login/", h.Login)
	router.POST("/auth/signup/", h.Signup)

	router.GET("/vapid-public-key/", h.VapidPublicKey)
	router.POST("/subscribe/", auth.RequireAuth(), h.SubscribePush)

	router.GET("/:username/", auth.OptionalAuth(), h.Profile)
	router.GET("/:username/follow/", auth.RequireAuth(), h.FollowProfile)
	router.GET("/:username/unfollow/", auth.RequireAuth(), h.UnfollowProfile)
	router.GET("/:username/:post_id/", h.PostView)
	router.GET("/:username/:post_id/edit/", auth.RequireAuth(), h.EditPost)
	router.POST("/:username/:post_id/edit/", auth.RequireAuth(), h.EditPost)
	router.POST("/:username/:post_id/comment/", auth.RequireAuth(), h.AddComment)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}
