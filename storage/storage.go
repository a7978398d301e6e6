package storage

import (
	"context"
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"microblog/models"
)

// PostsPerPage is the fixed page size of every post listing.
const PostsPerPage = 10

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")

// Pagination describes one page of a listing.
type Pagination struct {
	Page     int   `json:"page"`
	NumPages int   `json:"numPages"`
	PerPage  int   `json:"perPage"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"hasNext"`
	HasPrev  bool  `json:"hasPrev"`
}

// PageFor resolves a raw page query value against a total count.
// Non-numeric values fall back to page 1; numbers outside the valid
// range clamp to the last page. An empty listing still has one page.
func PageFor(raw string, total int64, perPage int) Pagination {
	numPages := int((total + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	page, err := strconv.Atoi(raw)
	if err != nil {
		page = 1
	} else if page < 1 || page > numPages {
		page = numPages
	}

	return Pagination{
		Page:     page,
		NumPages: numPages,
		PerPage:  perPage,
		Total:    total,
		HasNext:  page < numPages,
		HasPrev:  page > 1,
	}
}

// Offset is the number of items preceding this page.
func (p Pagination) Offset() int64 {
	return int64(p.Page-1) * int64(p.PerPage)
}

// Store is the persistence boundary of the application. All post
// listings come back newest-first with authors (and groups, where set)
// attached, already cut to the requested page.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// DeleteUser removes the user and cascades to their posts,
	// comments, follow links (both directions) and push subscription.
	DeleteUser(ctx context.Context, id primitive.ObjectID) error

	CreateGroup(ctx context.Context, group *models.Group) error
	GroupBySlug(ctx context.Context, slug string) (*models.Group, error)
	// DeleteGroup removes the group together with its posts.
	DeleteGroup(ctx context.Context, id primitive.ObjectID) error

	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, post *models.Post) error
	PostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	PostByIDAndAuthor(ctx context.Context, id, authorID primitive.ObjectID) (*models.Post, error)
	Posts(ctx context.Context, page string) ([]models.Post, Pagination, error)
	PostsByGroup(ctx context.Context, groupID primitive.ObjectID, page string) ([]models.Post, Pagination, error)
	PostsByAuthor(ctx context.Context, authorID primitive.ObjectID, page string) ([]models.Post, Pagination, error)
	FollowedPosts(ctx context.Context, followerID primitive.ObjectID, page string) ([]models.Post, Pagination, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	CommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)

	// Follow creates the (follower, author) link if it does not exist.
	Follow(ctx context.Context, followerID, authorID primitive.ObjectID) error
	// Unfollow removes the link; removing a missing link is not an error.
	Unfollow(ctx context.Context, followerID, authorID primitive.ObjectID) error
	IsFollowing(ctx context.Context, followerID, authorID primitive.ObjectID) (bool, error)
	FollowerIDs(ctx context.Context, authorID primitive.ObjectID) ([]primitive.ObjectID, error)

	SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error
	PushSubscriptionByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, userID primitive.ObjectID) error
}
