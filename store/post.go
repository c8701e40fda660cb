package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sketchboard/models"
)

type PostStore struct {
	coll *mongo.Collection
}

func NewPostStore(db *mongo.Database) *PostStore {
	return &PostStore{coll: db.Collection("posts")}
}

func (s *PostStore) Insert(ctx context.Context, post *models.Post) error {
	_, err := s.coll.InsertOne(ctx, post)
	return err
}

func (s *PostStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns all posts in the requested order. The "comments" order needs
// each post's comment count, so it runs as an aggregation joining the
// comments collection; the other orders are plain sorted finds.
func (s *PostStore) List(ctx context.Context, sort string) ([]models.Post, error) {
	if sort == SortMostCommented {
		return s.listByCommentCount(ctx)
	}

	order := bson.D{{Key: "createdAt", Value: -1}}
	if sort == SortPopular {
		order = bson.D{{Key: "likes", Value: -1}, {Key: "createdAt", Value: -1}}
	}

	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(order))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostStore) listByCommentCount(ctx context.Context) ([]models.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "comments"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "postId"},
			{Key: "as", Value: "postComments"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "commentCount", Value: bson.D{{Key: "$size", Value: "$postComments"}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "commentCount", Value: -1},
			{Key: "createdAt", Value: -1},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "postComments", Value: 0}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Ranking returns the top n posts by like count, newest first on ties.
func (s *PostStore) Ranking(ctx context.Context, n int) ([]models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "likes", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(int64(n))

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostStore) ListByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.M{"authorId": authorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleLike flips userID's membership in the post's like set, moving the
// denormalized counter in the same single-document update so `likes` can
// never drift from the set size under concurrent toggles. Each branch is a
// conditional update that only matches when the membership test holds;
// whichever branch matches did the whole toggle atomically.
func (s *PostStore) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (int, bool, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	// A racing toggle by the same user can invalidate both membership
	// filters between our two attempts, so retry the pair a few times
	// before concluding the post itself is gone.
	for attempt := 0; attempt < 3; attempt++ {
		var post models.Post

		// Already liked: remove and decrement.
		err := s.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": postID, "likedBy": userID},
			bson.M{
				"$pull": bson.M{"likedBy": userID},
				"$inc":  bson.M{"likes": -1},
			},
			after,
		).Decode(&post)
		if err == nil {
			return clampLikes(post.Likes), false, nil
		}
		if err != mongo.ErrNoDocuments {
			return 0, false, err
		}

		// Not liked yet: add and increment.
		err = s.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": postID, "likedBy": bson.M{"$ne": userID}},
			bson.M{
				"$addToSet": bson.M{"likedBy": userID},
				"$inc":      bson.M{"likes": 1},
			},
			after,
		).Decode(&post)
		if err == nil {
			return clampLikes(post.Likes), true, nil
		}
		if err != mongo.ErrNoDocuments {
			return 0, false, err
		}

		exists, err := s.Exists(ctx, postID)
		if err != nil {
			return 0, false, err
		}
		if !exists {
			return 0, false, ErrNotFound
		}
	}

	// The post exists but every attempt lost the race; let the caller
	// report a retryable failure rather than a bogus absence.
	return 0, false, ErrContention
}

// Documents written before the counter was guarded could hold a negative
// count; never surface one.
func clampLikes(likes int) int {
	if likes < 0 {
		return 0
	}
	return likes
}
