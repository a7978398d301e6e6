package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	applog "microblog/log"
)

// Index renders the main feed: every post, newest first, ten per
// page. The response body is cached by the CachePage middleware.
func (h *Handler) Index(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	posts, page, err := h.Store.Posts(ctx, c.Query("page"))
	if err != nil {
		applog.Error.Printf("index: %v", err)
		serverError(c, "Failed to fetch posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":      posts,
		"paginator": page,
	})
}

// FollowIndex renders the personalized feed: posts whose authors the
// caller follows.
func (h *Handler) FollowIndex(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	user, ok := h.currentUser(ctx, c)
	if !ok {
		return
	}

	posts, page, err := h.Store.FollowedPosts(ctx, user.ID, c.Query("page"))
	if err != nil {
		applog.Error.Printf("follow index: %v", err)
		serverError(c, "Failed to fetch posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":      posts,
		"paginator": page,
	})
}
