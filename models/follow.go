package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Follow is a directed subscription link from a follower to an author.
// The (followerId, authorId) pair is unique.
type Follow struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FollowerID primitive.ObjectID `bson:"followerId" json:"followerId"`
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	CreatedAt  int64              `bson:"createdAt" json:"createdAt"`
}
