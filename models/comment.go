package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	Author    string             `bson:"author" json:"author"`
	AuthorID  primitive.ObjectID `bson:"authorId" json:"authorId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	// Parent post title, joined for the "my comments" view
	PostTitle string `bson:"postTitle,omitempty" json:"postTitle,omitempty"`
}
