package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sketchboard/models"
)

type CommentStore struct {
	coll *mongo.Collection
}

func NewCommentStore(db *mongo.Database) *CommentStore {
	return &CommentStore{coll: db.Collection("comments")}
}

func (s *CommentStore) Insert(ctx context.Context, comment *models.Comment) error {
	_, err := s.coll.InsertOne(ctx, comment)
	return err
}

func (s *CommentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *CommentStore) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := s.coll.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByAuthor returns the author's comments newest first, each annotated
// with its parent post's title via a lookup join. A comment whose post was
// deleted out from under it keeps an empty title rather than disappearing.
func (s *CommentStore) ListByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Comment, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "authorId", Value: authorID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "posts"},
			{Key: "localField", Value: "postId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "post"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$post"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "postTitle", Value: "$post.title"}}}},
		{{Key: "$project", Value: bson.D{{Key: "post", Value: 0}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByPost removes every comment referencing the post. Idempotent, so a
// failed post-deletion cascade can simply be retried.
func (s *CommentStore) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"postId": postID})
	return err
}
