// Package handlers binds the HTTP routes to the stores. Every error a
// handler emits is a JSON {message} body with a status from the taxonomy:
// 400 validation, 401 unauthenticated, 403 forbidden, 404 absent, 409
// conflict, 500 internal.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sketchboard/middleware"
	"sketchboard/models"
)

const requestTimeout = 10 * time.Second

// rankingSize is the fixed top-N by-likes view returned with every listing.
const rankingSize = 10

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type PostStore interface {
	Insert(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	List(ctx context.Context, sort string) ([]models.Post, error)
	Ranking(ctx context.Context, n int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (int, bool, error)
}

type CommentStore interface {
	Insert(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	ListByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) error
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// currentUser reads the identity the auth middleware attached to the
// request. A failure here means a token was minted with a malformed user
// id, which no login path produces.
func currentUser(c *gin.Context) (primitive.ObjectID, string, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString(middleware.ContextUserID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid user identity"})
		return primitive.NilObjectID, "", false
	}
	return userID, c.GetString(middleware.ContextUsername), true
}
