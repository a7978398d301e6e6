package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	applog "microblog/log"
	"microblog/storage"
)

// Profile renders a user's page: their posts, the post count, and —
// for an authenticated viewer — whether the viewer follows them.
func (h *Handler) Profile(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	profile, err := h.Store.UserByUsername(ctx, c.Param("username"))
	if err == storage.ErrNotFound {
		notFound(c)
		return
	}
	if err != nil {
		applog.Error.Printf("profile: %v", err)
		serverError(c, "Failed to fetch user")
		return
	}

	posts, page, err := h.Store.PostsByAuthor(ctx, profile.ID, c.Query("page"))
	if err != nil {
		applog.Error.Printf("profile: %v", err)
		serverError(c, "Failed to fetch posts")
		return
	}

	following := false
	if viewerID, err := primitive.ObjectIDFromHex(c.GetString("userId")); err == nil {
		following, err = h.Store.IsFollowing(ctx, viewerID, profile.ID)
		if err != nil {
			applog.Error.Printf("profile: %v", err)
			serverError(c, "Failed to fetch follow state")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":   profile,
		"page":      posts,
		"paginator": page,
		"postCount": page.Total,
		"following": following,
	})
}

// FollowProfile subscribes the caller to the named author. Following
// yourself is silently ignored; following twice changes nothing.
func (h *Handler) FollowProfile(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	user, ok := h.currentUser(ctx, c)
	if !ok {
		return
	}

	author, err := h.Store.UserByUsername(ctx, c.Param("username"))
	if err == storage.ErrNotFound {
		notFound(c)
		return
	}
	if err != nil {
		applog.Error.Printf("follow: %v", err)
		serverError(c, "Failed to fetch user")
		return
	}

	if user.ID != author.ID {
		if err := h.Store.Follow(ctx, user.ID, author.ID); err != nil {
			applog.Error.Printf("follow: %v", err)
			serverError(c, "Failed to follow")
			return
		}
	}

	c.Redirect(http.StatusFound, profileURL(author.Username))
}

// UnfollowProfile removes the caller's subscription to the named
// author. Removing a subscription that does not exist is not an error.
func (h *Handler) UnfollowProfile(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	user, ok := h.currentUser(ctx, c)
	if !ok {
		return
	}

	author, err := h.Store.UserByUsername(ctx, c.Param("username"))
	if err == storage.ErrNotFound {
		notFound(c)
		return
	}
	if err != nil {
		applog.Error.Printf("unfollow: %v", err)
		serverError(c, "Failed to fetch user")
		return
	}

	if err := h.Store.Unfollow(ctx, user.ID, author.ID); err != nil {
		applog.Error.Printf("unfollow: %v", err)
		serverError(c, "Failed to unfollow")
		return
	}

	c.Redirect(http.StatusFound, profileURL(author.Username))
}
