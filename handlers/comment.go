package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"microblog/forms"
	applog "microblog/log"
	"microblog/models"
	"microblog/storage"
)

// AddComment attaches a comment by the caller to the target post. Any
// authenticated user may comment on any post. Valid or not, the
// request ends with a redirect to the post page; an invalid form just
// saves nothing.
func (h *Handler) AddComment(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	user, ok := h.currentUser(ctx, c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("post_id"))
	if err != nil {
		notFound(c)
		return
	}

	post, err := h.Store.PostByID(ctx, postID)
	if err == storage.ErrNotFound {
		notFound(c)
		return
	}
	if err != nil {
		applog.Error.Printf("add comment: %v", err)
		serverError(c, "Failed to fetch post")
		return
	}

	form := forms.BindCommentForm(c)
	if form.Validate() == nil {
		comment := &models.Comment{
			ID:        primitive.NewObjectID(),
			PostID:    post.ID,
			AuthorID:  user.ID,
			Text:      form.Text,
			CreatedAt: time.Now().Unix(),
		}
		if err := h.Store.CreateComment(ctx, comment); err != nil {
			applog.Error.Printf("add comment: %v", err)
			serverError(c, "Failed to create comment")
			return
		}
	}

	c.Redirect(http.StatusFound, postURL(c.Param("username"), c.Param("post_id")))
}
