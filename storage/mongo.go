package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"microblog/models"
)

// Mongo is the MongoDB-backed Store.
type Mongo struct {
	users    *mongo.Collection
	groups   *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
	follows  *mongo.Collection
	subs     *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		users:    db.Collection("users"),
		groups:   db.Collection("groups"),
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
		follows:  db.Collection("follows"),
		subs:     db.Collection("push_subscriptions"),
	}
}

// EnsureIndexes creates the unique indexes backing the model's
// invariants: usernames, emails, group slugs and follow pairs.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	if _, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	}); err != nil {
		return err
	}

	if _, err := s.groups.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique,
	}); err != nil {
		return err
	}

	if _, err := s.follows.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "followerId", Value: 1}, {Key: "authorId", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}

	_, err := s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	})
	return err
}

func asNotFound(err error) error {
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

// ----- users -----

func (s *Mongo) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	_, err := s.users.InsertOne(ctx, user)
	return err
}

func (s *Mongo) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, asNotFound(err)
	}
	return &user, nil
}

func (s *Mongo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, asNotFound(err)
	}
	return &user, nil
}

func (s *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, asNotFound(err)
	}
	return &user, nil
}

func (s *Mongo) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	cursor, err := s.posts.Find(ctx, bson.M{"authorId": id})
	if err != nil {
		return err
	}
	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return err
	}
	for _, p := range posts {
		if _, err := s.comments.DeleteMany(ctx, bson.M{"postId": p.ID}); err != nil {
			return err
		}
	}
	if _, err := s.posts.DeleteMany(ctx, bson.M{"authorId": id}); err != nil {
		return err
	}
	if _, err := s.comments.DeleteMany(ctx, bson.M{"authorId": id}); err != nil {
		return err
	}
	if _, err := s.follows.DeleteMany(ctx, bson.M{"$or": []bson.M{
		{"followerId": id},
		{"authorId": id},
	}}); err != nil {
		return err
	}
	if _, err := s.subs.DeleteMany(ctx, bson.M{"userId": id}); err != nil {
		return err
	}
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ----- groups -----

func (s *Mongo) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	_, err := s.groups.InsertOne(ctx, group)
	return err
}

func (s *Mongo) GroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := s.groups.FindOne(ctx, bson.M{"slug": slug}).Decode(&group); err != nil {
		return nil, asNotFound(err)
	}
	return &group, nil
}

func (s *Mongo) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	cursor, err := s.posts.Find(ctx, bson.M{"groupId": id})
	if err != nil {
		return err
	}
	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return err
	}
	for _, p := range posts {
		if _, err := s.comments.DeleteMany(ctx, bson.M{"postId": p.ID}); err != nil {
			return err
		}
	}
	if _, err := s.posts.DeleteMany(ctx, bson.M{"groupId": id}); err != nil {
		return err
	}
	res, err := s.groups.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ----- posts -----

func (s *Mongo) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt == 0 {
		post.CreatedAt = time.Now().Unix()
	}
	_, err := s.posts.InsertOne(ctx, post)
	return err
}

func (s *Mongo) UpdatePost(ctx context.Context, post *models.Post) error {
	update := bson.M{"$set": bson.M{
		"text":    post.Text,
		"groupId": post.GroupID,
		"image":   post.Image,
	}}
	res, err := s.posts.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) PostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return s.onePost(ctx, bson.M{"_id": id})
}

func (s *Mongo) PostByIDAndAuthor(ctx context.Context, id, authorID primitive.ObjectID) (*models.Post, error) {
	return s.onePost(ctx, bson.M{"_id": id, "authorId": authorID})
}

func (s *Mongo) onePost(ctx context.Context, filter bson.M) (*models.Post, error) {
	var post models.Post
	if err := s.posts.FindOne(ctx, filter).Decode(&post); err != nil {
		return nil, asNotFound(err)
	}
	if err := s.attach(ctx, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// attach populates the response-only author and group fields.
func (s *Mongo) attach(ctx context.Context, post *models.Post) error {
	var author models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": post.AuthorID}).Decode(&author); err == nil {
		post.Author = &author
	} else if err != mongo.ErrNoDocuments {
		return err
	}
	if post.GroupID != nil {
		var group models.Group
		if err := s.groups.FindOne(ctx, bson.M{"_id": *post.GroupID}).Decode(&group); err == nil {
			post.Group = &group
		} else if err != mongo.ErrNoDocuments {
			return err
		}
	}
	return nil
}

func (s *Mongo) Posts(ctx context.Context, page string) ([]models.Post, Pagination, error) {
	return s.listPosts(ctx, bson.M{}, page)
}

func (s *Mongo) PostsByGroup(ctx context.Context, groupID primitive.ObjectID, page string) ([]models.Post, Pagination, error) {
	return s.listPosts(ctx, bson.M{"groupId": groupID}, page)
}

func (s *Mongo) PostsByAuthor(ctx context.Context, authorID primitive.ObjectID, page string) ([]models.Post, Pagination, error) {
	return s.listPosts(ctx, bson.M{"authorId": authorID}, page)
}

func (s *Mongo) FollowedPosts(ctx context.Context, followerID primitive.ObjectID, page string) ([]models.Post, Pagination, error) {
	cursor, err := s.follows.Find(ctx, bson.M{"followerId": followerID})
	if err != nil {
		return nil, Pagination{}, err
	}
	var follows []models.Follow
	if err := cursor.All(ctx, &follows); err != nil {
		return nil, Pagination{}, err
	}
	if len(follows) == 0 {
		return []models.Post{}, PageFor(page, 0, PostsPerPage), nil
	}
	authorIDs := make([]primitive.ObjectID, len(follows))
	for i, f := range follows {
		authorIDs[i] = f.AuthorID
	}
	return s.listPosts(ctx, bson.M{"authorId": bson.M{"$in": authorIDs}}, page)
}

func (s *Mongo) listPosts(ctx context.Context, filter bson.M, page string) ([]models.Post, Pagination, error) {
	total, err := s.posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}
	pg := PageFor(page, total, PostsPerPage)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: pg.Offset()}},
		{{Key: "$limit", Value: int64(pg.PerPage)}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "authorId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "groups"},
			{Key: "localField", Value: "groupId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "group"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$group"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := s.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, Pagination{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		models.Post `bson:",inline"`
		Author      *models.User  `bson:"author"`
		Group       *models.Group `bson:"group"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, Pagination{}, err
	}

	posts := make([]models.Post, len(rows))
	for i, r := range rows {
		post := r.Post
		post.Author = r.Author
		post.Group = r.Group
		posts[i] = post
	}
	return posts, pg, nil
}

// ----- comments -----

func (s *Mongo) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.CreatedAt == 0 {
		comment.CreatedAt = time.Now().Unix()
	}
	_, err := s.comments.InsertOne(ctx, comment)
	return err
}

func (s *Mongo) CommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.comments.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	for i := range comments {
		var author models.User
		if err := s.users.FindOne(ctx, bson.M{"_id": comments[i].AuthorID}).Decode(&author); err == nil {
			comments[i].Author = &author
		}
	}
	return comments, nil
}

// ----- follows -----

func (s *Mongo) Follow(ctx context.Context, followerID, authorID primitive.ObjectID) error {
	filter := bson.M{"followerId": followerID, "authorId": authorID}
	update := bson.M{"$setOnInsert": models.Follow{
		ID:         primitive.NewObjectID(),
		FollowerID: followerID,
		AuthorID:   authorID,
		CreatedAt:  time.Now().Unix(),
	}}
	_, err := s.follows.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (s *Mongo) Unfollow(ctx context.Context, followerID, authorID primitive.ObjectID) error {
	_, err := s.follows.DeleteOne(ctx, bson.M{"followerId": followerID, "authorId": authorID})
	return err
}

func (s *Mongo) IsFollowing(ctx context.Context, followerID, authorID primitive.ObjectID) (bool, error) {
	count, err := s.follows.CountDocuments(ctx, bson.M{"followerId": followerID, "authorId": authorID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Mongo) FollowerIDs(ctx context.Context, authorID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := s.follows.Find(ctx, bson.M{"authorId": authorID})
	if err != nil {
		return nil, err
	}
	var follows []models.Follow
	if err := cursor.All(ctx, &follows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(follows))
	for i, f := range follows {
		ids[i] = f.FollowerID
	}
	return ids, nil
}

// ----- push subscriptions -----

func (s *Mongo) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	update := bson.M{
		"$set":         bson.M{"sub": sub.Sub},
		"$setOnInsert": bson.M{"_id": sub.ID},
	}
	_, err := s.subs.UpdateOne(
		ctx,
		bson.M{"userId": sub.UserID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *Mongo) PushSubscriptionByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	if err := s.subs.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub); err != nil {
		return nil, asNotFound(err)
	}
	return &sub, nil
}

func (s *Mongo) DeletePushSubscription(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.subs.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}
