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

type Posts struct {
	Posts    PostStore
	Comments CommentStore
}

type CreatePostRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	ImageData string `json:"imageData" binding:"required"`
}

func (h *Posts) Create(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title, content and image data are all required"})
		return
	}

	userID, username, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	post := &models.Post{
		ID:        primitive.NewObjectID(),
		Title:     req.Title,
		Content:   req.Content,
		ImageData: req.ImageData,
		Author:    username,
		AuthorID:  userID,
		Likes:     0,
		LikedBy:   []primitive.ObjectID{},
		CreatedAt: time.Now(),
	}

	if err := h.Posts.Insert(ctx, post); err != nil {
		log.Printf("CreatePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// List returns every post in the requested order plus the fixed by-likes
// ranking. The like set is projected down to the requester's isLiked flag.
func (h *Posts) List(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	sort := c.DefaultQuery("sort", store.SortLatest)
	switch sort {
	case store.SortLatest, store.SortPopular, store.SortMostCommented:
	default:
		sort = store.SortLatest
	}

	ctx, cancel := requestContext()
	defer cancel()

	posts, err := h.Posts.List(ctx, sort)
	if err != nil {
		log.Printf("ListPosts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch posts"})
		return
	}

	ranking, err := h.Posts.Ranking(ctx, rankingSize)
	if err != nil {
		log.Printf("ListPosts ranking error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch ranking"})
		return
	}

	shapePosts(posts, userID)
	shapePosts(ranking, userID)

	c.JSON(http.StatusOK, gin.H{
		"posts":   posts,
		"ranking": ranking,
	})
}

func (h *Posts) Get(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	post, err := h.Posts.FindByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("GetPost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch post"})
		return
	}

	comments, err := h.Comments.ListByPost(ctx, postID)
	if err != nil {
		log.Printf("GetPost comments error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch comments"})
		return
	}

	post.IsLiked = post.LikedByUser(userID)
	post.Comments = comments

	c.JSON(http.StatusOK, post)
}

// Delete removes a post and its comments. Comments go first so a partial
// failure leaves the post in place and the whole cascade retryable.
func (h *Posts) Delete(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	post, err := h.Posts.FindByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("DeletePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch post"})
		return
	}

	if post.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only delete your own posts"})
		return
	}

	if err := h.Comments.DeleteByPost(ctx, postID); err != nil {
		log.Printf("DeletePost cascade error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete post"})
		return
	}

	if err := h.Posts.Delete(ctx, postID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("DeletePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

func (h *Posts) ToggleLike(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	likes, isLiked, err := h.Posts.ToggleLike(ctx, postID, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("ToggleLike error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to toggle like"})
		return
	}

	message := "Like added"
	if !isLiked {
		message = "Like removed"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"likes":   likes,
		"isLiked": isLiked,
	})
}

func (h *Posts) MyPosts(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	posts, err := h.Posts.ListByAuthor(ctx, userID)
	if err != nil {
		log.Printf("MyPosts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch posts"})
		return
	}

	shapePosts(posts, userID)

	c.JSON(http.StatusOK, posts)
}

// shapePosts projects the like set down to the viewer's isLiked flag and
// guarantees a non-nil comments slice so the field serializes as [].
func shapePosts(posts []models.Post, userID primitive.ObjectID) {
	for i := range posts {
		posts[i].IsLiked = posts[i].LikedByUser(userID)
		if posts[i].Comments == nil {
			posts[i].Comments = []models.Comment{}
		}
	}
}
