package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowFeed(t *testing.T) {
	a := newApp(t)
	alice := a.createUser(t, "alice")
	bob := a.createUser(t, "bob")
	carol := a.createUser(t, "carol")

	w := a.get(t, "/bob/follow/", a.session(t, alice))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/bob/", w.Header().Get("Location"))

	a.createPost(t, bob, "bob's post")

	// The follower sees it first in their feed.
	resp := decodePage(t, a.get(t, "/follow/", a.session(t, alice)))
	require.Len(t, resp.Page, 1)
	assert.Equal(t, "bob's post", resp.Page[0].Text)

	// A non-follower does not.
	resp = decodePage(t, a.get(t, "/follow/", a.session(t, carol)))
	assert.Empty(t, resp.Page)
}

func TestFollowFeedNewestFirst(t *testing.T) {
	a := newApp(t)
	alice := a.createUser(t, "alice")
	bob := a.createUser(t, "bob")
	dave := a.createUser(t, "dave")

	a.get(t, "/bob/follow/", a.session(t, alice))
	a.get(t, "/dave/follow/", a.session(t, alice))

	a.createPost(t, bob, "first")
	a.createPost(t, dave, "second")
	a.createPost(t, bob, "third")

	resp := decodePage(t, a.get(t, "/follow/", a.session(t, alice)))
	require.Len(t, resp.Page, 3)
	assert.Equal(t, "third", resp.Page[0].Text)
	assert.Equal(t, "second", resp.Page[1].Text)
	assert.Equal(t, "first", resp.Page[2].Text)
}

func TestFollowIsIdempotent(t *testing.T) {
	a := newApp(t)
	alice := a.createUser(t, "alice")
	a.createUser(t, "bob")

	a.get(t, "/bob/follow/", a.session(t, alice))
	a.get(t, "/bob/follow/", a.session(t, alice))

	assert.Equal(t, 1, a.store.FollowCount())
}

func TestUnfollowIsIdempotent(t *testing.T) {
	a := newApp(t)
	alice := a.createUser(t, "alice")
	bob := a.createUser(t, "bob")

	a.get(t, "/bob/follow/", a.session(t, alice))
	require.Equal(t, 1, a.store.FollowCount())

	w := a.get(t, "/bob/unfollow/", a.session(t, alice))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 0, a.store.FollowCount())

	// A second unfollow is not an error and changes nothing.
	w = a.get(t, "/bob/unfollow/", a.session(t, alice))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 0, a.store.FollowCount())

	following, err := a.store.IsFollowing(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestSelfFollowIsIgnored(t *testing.T) {
	a := newApp(t)
	alice := a.createUser(t, "alice")

	w := a.get(t, "/alice/follow/", a.session(t, alice))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/alice/", w.Header().Get("Location"))
	assert.Equal(t, 0, a.store.FollowCount())
}

func TestFollowUnknownUser(t *testing.T) {
	a := newApp(t)
	alice := a.createUser(t, "alice")

	w := a.get(t, "/nobody/follow/", a.session(t, alice))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowRequiresAuth(t *testing.T) {
	a := newApp(t)
	a.createUser(t, "bob")

	w := a.get(t, "/follow/")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/follow/", w.Header().Get("Location"))

	w = a.get(t, "/bob/follow/")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/bob/follow/", w.Header().Get("Location"))
}
