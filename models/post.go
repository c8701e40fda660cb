package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title     string               `bson:"title" json:"title"`
	Content   string               `bson:"content" json:"content"`
	ImageData string               `bson:"imageData" json:"imageData"`
	Author    string               `bson:"author" json:"author"`
	AuthorID  primitive.ObjectID   `bson:"authorId" json:"authorId"`
	Likes     int                  `bson:"likes" json:"likes"`
	LikedBy   []primitive.ObjectID `bson:"likedBy" json:"-"` // projected to isLiked, never serialized
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`

	// Populated in responses only. Comments is always serialized, as an
	// empty array when the post has none, so clients can index it.
	IsLiked  bool      `bson:"-" json:"isLiked"`
	Comments []Comment `bson:"-" json:"comments"`
}

// LikedByUser reports whether userID is a member of the like set.
func (p *Post) LikedByUser(userID primitive.ObjectID) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}
