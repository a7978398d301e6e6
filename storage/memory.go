package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"microblog/models"
)

// Memory is an in-process Store with the same contract as Mongo. It
// backs the test suite; nothing about it survives a restart.
type Memory struct {
	mu       sync.Mutex
	seq      int64
	users    map[primitive.ObjectID]models.User
	groups   map[primitive.ObjectID]models.Group
	posts    map[primitive.ObjectID]models.Post
	postSeq  map[primitive.ObjectID]int64
	comments map[primitive.ObjectID]models.Comment
	follows  map[primitive.ObjectID]models.Follow
	subs     map[primitive.ObjectID]models.PushSubscription
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[primitive.ObjectID]models.User),
		groups:   make(map[primitive.ObjectID]models.Group),
		posts:    make(map[primitive.ObjectID]models.Post),
		postSeq:  make(map[primitive.ObjectID]int64),
		comments: make(map[primitive.ObjectID]models.Comment),
		follows:  make(map[primitive.ObjectID]models.Follow),
		subs:     make(map[primitive.ObjectID]models.PushSubscription),
	}
}

// ----- users -----

func (s *Memory) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return fmt.Errorf("duplicate username %q", user.Username)
		}
		if u.Email == user.Email {
			return fmt.Errorf("duplicate email %q", user.Email)
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Memory) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *Memory) UserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	for pid, p := range s.posts {
		if p.AuthorID == id {
			s.deletePostLocked(pid)
		}
	}
	for cid, c := range s.comments {
		if c.AuthorID == id {
			delete(s.comments, cid)
		}
	}
	for fid, f := range s.follows {
		if f.FollowerID == id || f.AuthorID == id {
			delete(s.follows, fid)
		}
	}
	delete(s.subs, id)
	return nil
}

func (s *Memory) deletePostLocked(id primitive.ObjectID) {
	delete(s.posts, id)
	delete(s.postSeq, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
}

// ----- groups -----

func (s *Memory) CreateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	for _, g := range s.groups {
		if g.Slug == group.Slug {
			return fmt.Errorf("duplicate slug %q", group.Slug)
		}
	}
	s.groups[group.ID] = *group
	return nil
}

func (s *Memory) GroupBySlug(_ context.Context, slug string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.Slug == slug {
			group := g
			return &group, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) DeleteGroup(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return ErrNotFound
	}
	delete(s.groups, id)
	for pid, p := range s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			s.deletePostLocked(pid)
		}
	}
	return nil
}

// ----- posts -----

func (s *Memory) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt == 0 {
		post.CreatedAt = time.Now().Unix()
	}
	s.seq++
	s.postSeq[post.ID] = s.seq
	stored := *post
	stored.Author = nil
	stored.Group = nil
	s.posts[post.ID] = stored
	return nil
}

func (s *Memory) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Text = post.Text
	stored.GroupID = post.GroupID
	stored.Image = post.Image
	s.posts[post.ID] = stored
	return nil
}

func (s *Memory) PostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.attachLocked(&post)
	return &post, nil
}

func (s *Memory) PostByIDAndAuthor(_ context.Context, id, authorID primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok || post.AuthorID != authorID {
		return nil, ErrNotFound
	}
	s.attachLocked(&post)
	return &post, nil
}

func (s *Memory) attachLocked(post *models.Post) {
	if author, ok := s.users[post.AuthorID]; ok {
		a := author
		post.Author = &a
	}
	if post.GroupID != nil {
		if group, ok := s.groups[*post.GroupID]; ok {
			g := group
			post.Group = &g
		}
	}
}

func (s *Memory) Posts(_ context.Context, page string) ([]models.Post, Pagination, error) {
	return s.listPosts(func(models.Post) bool { return true }, page)
}

func (s *Memory) PostsByGroup(_ context.Context, groupID primitive.ObjectID, page string) ([]models.Post, Pagination, error) {
	return s.listPosts(func(p models.Post) bool {
		return p.GroupID != nil && *p.GroupID == groupID
	}, page)
}

func (s *Memory) PostsByAuthor(_ context.Context, authorID primitive.ObjectID, page string) ([]models.Post, Pagination, error) {
	return s.listPosts(func(p models.Post) bool { return p.AuthorID == authorID }, page)
}

func (s *Memory) FollowedPosts(_ context.Context, followerID primitive.ObjectID, page string) ([]models.Post, Pagination, error) {
	s.mu.Lock()
	followed := make(map[primitive.ObjectID]bool)
	for _, f := range s.follows {
		if f.FollowerID == followerID {
			followed[f.AuthorID] = true
		}
	}
	s.mu.Unlock()
	return s.listPosts(func(p models.Post) bool { return followed[p.AuthorID] }, page)
}

func (s *Memory) listPosts(match func(models.Post) bool, page string) ([]models.Post, Pagination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if match(p) {
			all = append(all, p)
		}
	}
	// Newest first; insertion order breaks timestamp ties.
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt > all[j].CreatedAt
		}
		return s.postSeq[all[i].ID] > s.postSeq[all[j].ID]
	})

	pg := PageFor(page, int64(len(all)), PostsPerPage)
	start := pg.Offset()
	end := start + int64(pg.PerPage)
	if start > int64(len(all)) {
		start = int64(len(all))
	}
	if end > int64(len(all)) {
		end = int64(len(all))
	}

	posts := make([]models.Post, 0, end-start)
	for _, p := range all[start:end] {
		post := p
		s.attachLocked(&post)
		posts = append(posts, post)
	}
	return posts, pg, nil
}

// ----- comments -----

func (s *Memory) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt == 0 {
		comment.CreatedAt = time.Now().Unix()
	}
	s.seq++
	stored := *comment
	stored.Author = nil
	s.comments[comment.ID] = stored
	s.postSeq[comment.ID] = s.seq
	return nil
}

func (s *Memory) CommentsByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			comment := c
			if author, ok := s.users[c.AuthorID]; ok {
				a := author
				comment.Author = &a
			}
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt != comments[j].CreatedAt {
			return comments[i].CreatedAt < comments[j].CreatedAt
		}
		return s.postSeq[comments[i].ID] < s.postSeq[comments[j].ID]
	})
	return comments, nil
}

// ----- follows -----

func (s *Memory) Follow(_ context.Context, followerID, authorID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.follows {
		if f.FollowerID == followerID && f.AuthorID == authorID {
			return nil
		}
	}
	follow := models.Follow{
		ID:         primitive.NewObjectID(),
		FollowerID: followerID,
		AuthorID:   authorID,
		CreatedAt:  time.Now().Unix(),
	}
	s.follows[follow.ID] = follow
	return nil
}

func (s *Memory) Unfollow(_ context.Context, followerID, authorID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, f := range s.follows {
		if f.FollowerID == followerID && f.AuthorID == authorID {
			delete(s.follows, id)
		}
	}
	return nil
}

func (s *Memory) IsFollowing(_ context.Context, followerID, authorID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.follows {
		if f.FollowerID == followerID && f.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Memory) FollowerIDs(_ context.Context, authorID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []primitive.ObjectID{}
	for _, f := range s.follows {
		if f.AuthorID == authorID {
			ids = append(ids, f.FollowerID)
		}
	}
	return ids, nil
}

// FollowCount reports the number of follow links in the store.
func (s *Memory) FollowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.follows)
}

// ----- push subscriptions -----

func (s *Memory) SavePushSubscription(_ context.Context, sub *models.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	s.subs[sub.UserID] = *sub
	return nil
}

func (s *Memory) PushSubscriptionByUser(_ context.Context, userID primitive.ObjectID) (*models.PushSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (s *Memory) DeletePushSubscription(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, userID)
	return nil
}
