package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sketchboard/models"
	"sketchboard/store"
)

type Comments struct {
	Comments CommentStore
	Posts    PostStore
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create adds a comment to a post and returns the post's full comment list,
// oldest first.
func (h *Comments) Create(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment text is required"})
		return
	}

	userID, username, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	exists, err := h.Posts.Exists(ctx, postID)
	if err != nil {
		log.Printf("CreateComment lookup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create comment"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	comment := &models.Comment{
		ID:        primitive.NewObjectID(),
		PostID:    postID,
		Author:    username,
		AuthorID:  userID,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}

	if err := h.Comments.Insert(ctx, comment); err != nil {
		log.Printf("CreateComment insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create comment"})
		return
	}

	comments, err := h.Comments.ListByPost(ctx, postID)
	if err != nil {
		log.Printf("CreateComment list error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Comment added",
		"comments": comments,
	})
}

func (h *Comments) MyComments(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	comments, err := h.Comments.ListByAuthor(ctx, userID)
	if err != nil {
		log.Printf("MyComments error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *Comments) Delete(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	comment, err := h.Comments.FindByID(ctx, commentID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
		return
	}
	if err != nil {
		log.Printf("DeleteComment error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch comment"})
		return
	}

	if comment.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only delete your own comments"})
		return
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("DeleteComment error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
