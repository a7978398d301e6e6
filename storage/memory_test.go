package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/models"
)

func seedUser(t *testing.T, s *Memory, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedPost(t *testing.T, s *Memory, author *models.User, text string) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Text: text}
	require.NoError(t, s.CreatePost(context.Background(), post))
	return post
}

func TestMemoryUserUniqueness(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	seedUser(t, s, "leo")

	err := s.CreateUser(ctx, &models.User{Username: "leo", Email: "second@example.com"})
	assert.Error(t, err)
	err = s.CreateUser(ctx, &models.User{Username: "other", Email: "leo@example.com"})
	assert.Error(t, err)
}

func TestMemoryPostsNewestFirst(t *testing.T) {
	s := NewMemory()
	leo := seedUser(t, s, "leo")
	for i := 0; i < 5; i++ {
		seedPost(t, s, leo, fmt.Sprintf("post %d", i))
	}

	posts, pg, err := s.Posts(context.Background(), "1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, pg.Total)
	require.Len(t, posts, 5)
	for i, p := range posts {
		assert.Equal(t, fmt.Sprintf("post %d", 4-i), p.Text)
		require.NotNil(t, p.Author)
		assert.Equal(t, "leo", p.Author.Username)
	}
}

func TestMemoryFollowIdempotent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	a := seedUser(t, s, "a")
	b := seedUser(t, s, "b")

	require.NoError(t, s.Follow(ctx, a.ID, b.ID))
	require.NoError(t, s.Follow(ctx, a.ID, b.ID))
	assert.Equal(t, 1, s.FollowCount())

	following, err := s.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	require.NoError(t, s.Unfollow(ctx, a.ID, b.ID))
	require.NoError(t, s.Unfollow(ctx, a.ID, b.ID))
	assert.Equal(t, 0, s.FollowCount())
}

func TestMemoryDeleteUserCascades(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	leo := seedUser(t, s, "leo")
	fan := seedUser(t, s, "fan")
	post := seedPost(t, s, leo, "soon gone")

	require.NoError(t, s.CreateComment(ctx, &models.Comment{PostID: post.ID, AuthorID: fan.ID, Text: "nice"}))
	require.NoError(t, s.Follow(ctx, fan.ID, leo.ID))
	require.NoError(t, s.SavePushSubscription(ctx, &models.PushSubscription{UserID: leo.ID}))

	require.NoError(t, s.DeleteUser(ctx, leo.ID))

	_, err := s.UserByID(ctx, leo.ID)
	assert.Equal(t, ErrNotFound, err)
	_, err = s.PostByID(ctx, post.ID)
	assert.Equal(t, ErrNotFound, err)
	comments, err := s.CommentsByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Equal(t, 0, s.FollowCount())
	_, err = s.PushSubscriptionByUser(ctx, leo.ID)
	assert.Equal(t, ErrNotFound, err)
}

func TestMemoryDeleteGroupCascades(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	leo := seedUser(t, s, "leo")
	group := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, s.CreateGroup(ctx, group))

	post := &models.Post{AuthorID: leo.ID, Text: "in group", GroupID: &group.ID}
	require.NoError(t, s.CreatePost(ctx, post))
	loose := seedPost(t, s, leo, "no group")

	require.NoError(t, s.DeleteGroup(ctx, group.ID))

	_, err := s.GroupBySlug(ctx, "cats")
	assert.Equal(t, ErrNotFound, err)
	_, err = s.PostByID(ctx, post.ID)
	assert.Equal(t, ErrNotFound, err)
	_, err = s.PostByID(ctx, loose.ID)
	assert.NoError(t, err)
}

func TestMemoryPostByIDAndAuthor(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	leo := seedUser(t, s, "leo")
	mia := seedUser(t, s, "mia")
	post := seedPost(t, s, leo, "mine")

	got, err := s.PostByIDAndAuthor(ctx, post.ID, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Text)

	_, err = s.PostByIDAndAuthor(ctx, post.ID, mia.ID)
	assert.Equal(t, ErrNotFound, err)
}

func TestMemorySavePushSubscriptionReplaces(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	leo := seedUser(t, s, "leo")

	first := &models.PushSubscription{UserID: leo.ID}
	first.Sub.Endpoint = "https://push.example.com/a"
	require.NoError(t, s.SavePushSubscription(ctx, first))

	second := &models.PushSubscription{UserID: leo.ID}
	second.Sub.Endpoint = "https://push.example.com/b"
	require.NoError(t, s.SavePushSubscription(ctx, second))

	got, err := s.PushSubscriptionByUser(ctx, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://push.example.com/b", got.Sub.Endpoint)
}
