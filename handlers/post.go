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

// NewPostForm answers GET /new/ with an empty form.
func (h *Handler) NewPostForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"form":   forms.PostForm{},
		"errors": gin.H{},
	})
}

// CreatePost validates the submitted form, persists the post with the
// caller as author and redirects to the feed. A failed validation
// re-renders the form with field errors and mutates nothing.
func (h *Handler) CreatePost(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	user, ok := h.currentUser(ctx, c)
	if !ok {
		return
	}

	form := forms.BindPostForm(c)
	errs := form.Validate()
	if errs == nil {
		errs = make(map[string]string)
	}

	var group *models.Group
	if form.Group != "" {
		var err error
		group, err = h.Store.GroupBySlug(ctx, form.Group)
		if err == storage.ErrNotFound {
			errs["group"] = "Unknown group"
		} else if err != nil {
			applog.Error.Printf("create post: %v", err)
			serverError(c, "Failed to fetch group")
			return
		}
	}

	if len(errs) > 0 {
		c.JSON(http.StatusOK, gin.H{"form": form, "errors": errs})
		return
	}

	// The image is only touched once the form is known to be valid.
	if file, _, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		url, err := h.Uploads.Upload(ctx, file, primitive.NewObjectID().Hex())
		if err != nil {
			applog.Error.Printf("create post: upload: %v", err)
			serverError(c, "Failed to store image")
			return
		}
		form.Image = url
	}

	post := &models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  user.ID,
		Text:      form.Text,
		Image:     form.Image,
		CreatedAt: time.Now().Unix(),
	}
	if group != nil {
		post.GroupID = &group.ID
	}

	if err := h.Store.CreatePost(ctx, post); err != nil {
		applog.Error.Printf("create post: %v", err)
		serverError(c, "Failed to create post")
		return
	}

	h.Notify.PostPublished(post, user)

	c.Redirect(http.StatusFound, "/")
}

// PostView renders a single post with its comments and an empty
// comment form. The username segment must name an existing user, but
// the post is looked up by id alone.
func (h *Handler) PostView(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	profile, err := h.Store.UserByUsername(ctx, c.Param("username"))
	if err == storage.ErrNotFound {
		notFound(c)
		return
	}
	if err != nil {
		applog.Error.Printf("post view: %v", err)
		serverError(c, "Failed to fetch user")
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
		applog.Error.Printf("post view: %v", err)
		serverError(c, "Failed to fetch post")
		return
	}

	comments, err := h.Store.CommentsByPost(ctx, post.ID)
	if err != nil {
		applog.Error.Printf("post view: %v", err)
		serverError(c, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":     post,
		"profile":  profile,
		"comments": comments,
		"form":     forms.CommentForm{},
	})
}

// EditPost lets a post's author change its text, group and image. The
// lookup is scoped to the caller, so anyone else sees a 404.
func (h *Handler) EditPost(c *gin.Context) {
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

	post, err := h.Store.PostByIDAndAuthor(ctx, postID, user.ID)
	if err == storage.ErrNotFound {
		notFound(c)
		return
	}
	if err != nil {
		applog.Error.Printf("edit post: %v", err)
		serverError(c, "Failed to fetch post")
		return
	}

	if c.Request.Method == http.MethodGet {
		form := forms.PostForm{Text: post.Text, Image: post.Image}
		if post.Group != nil {
			form.Group = post.Group.Slug
		}
		c.JSON(http.StatusOK, gin.H{"form": form, "errors": gin.H{}})
		return
	}

	form := forms.BindPostForm(c)
	errs := form.Validate()
	if errs == nil {
		errs = make(map[string]string)
	}

	var group *models.Group
	if form.Group != "" {
		group, err = h.Store.GroupBySlug(ctx, form.Group)
		if err == storage.ErrNotFound {
			errs["group"] = "Unknown group"
		} else if err != nil {
			applog.Error.Printf("edit post: %v", err)
			serverError(c, "Failed to fetch group")
			return
		}
	}

	if len(errs) > 0 {
		c.JSON(http.StatusOK, gin.H{"form": form, "errors": errs})
		return
	}

	if file, _, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		url, err := h.Uploads.Upload(ctx, file, primitive.NewObjectID().Hex())
		if err != nil {
			applog.Error.Printf("edit post: upload: %v", err)
			serverError(c, "Failed to store image")
			return
		}
		post.Image = url
	}

	post.Text = form.Text
	if group != nil {
		post.GroupID = &group.ID
	} else {
		post.GroupID = nil
	}

	if err := h.Store.UpdatePost(ctx, post); err != nil {
		applog.Error.Printf("edit post: %v", err)
		serverError(c, "Failed to update post")
		return
	}

	c.Redirect(http.StatusFound, postURL(user.Username, post.ID.Hex()))
}
