// Package handlers holds one method per page or action of the site.
// Each handler fetches through the injected store, optionally binds
// and validates a form, and answers with a redirect or a rendered
// JSON page.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"microblog/cache"
	"microblog/middleware"
	"microblog/models"
	"microblog/notify"
	"microblog/storage"
	"microblog/uploads"
)

const requestTimeout = 10 * time.Second

type Handler struct {
	Store    storage.Store
	Pages    cache.PageCache
	Uploads  uploads.Uploader
	Auth     *middleware.Authenticator
	Notify   *notify.Notifier
	CacheTTL time.Duration
}

func New(store storage.Store, pages cache.PageCache, up uploads.Uploader, auth *middleware.Authenticator, notifier *notify.Notifier) *Handler {
	return &Handler{
		Store:    store,
		Pages:    pages,
		Uploads:  up,
		Auth:     auth,
		Notify:   notifier,
		CacheTTL: 20 * time.Second,
	}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// currentUser loads the user RequireAuth put into the context.
func (h *Handler) currentUser(ctx context.Context, c *gin.Context) (*models.User, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return nil, false
	}
	user, err := h.Store.UserByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return nil, false
	}
	return user, true
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": "Not found",
		"path":  c.Request.URL.Path,
	})
}

func serverError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func postURL(username, postID string) string {
	return "/" + username + "/" + postID + "/"
}

func profileURL(username string) string {
	return "/" + username + "/"
}
