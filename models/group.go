package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Group is a topical category posts may optionally belong to. The slug
// is its immutable public identifier.
type Group struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
}
