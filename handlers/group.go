package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	applog "microblog/log"
	"microblog/storage"
)

// GroupPosts renders a group's page: its metadata plus its posts,
// newest first, paginated.
func (h *Handler) GroupPosts(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	group, err := h.Store.GroupBySlug(ctx, c.Param("slug"))
	if err == storage.ErrNotFound {
		notFound(c)
		return
	}
	if err != nil {
		applog.Error.Printf("group posts: %v", err)
		serverError(c, "Failed to fetch group")
		return
	}

	posts, page, err := h.Store.PostsByGroup(ctx, group.ID, c.Query("page"))
	if err != nil {
		applog.Error.Printf("group posts: %v", err)
		serverError(c, "Failed to fetch posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group":     group,
		"page":      posts,
		"paginator": page,
	})
}
