package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"yasn/models"
	"yasn/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// codeIllegalOperation is what a standalone mongod answers to a transaction.
const codeIllegalOperation = 20

func (m *MongoDB) FindPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	cursor, err := m.Posts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, utils.NewDatabaseError("failed to query posts", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, utils.NewDatabaseError("failed to decode posts", err)
	}
	return posts, nil
}

// ListPosts returns every post, newest first, with the creator expanded.
// An empty tag means no filter.
func (m *MongoDB) ListPosts(ctx context.Context, tag string) ([]models.FeedPost, error) {
	cursor, err := m.Posts.Aggregate(ctx, feedPipeline(tag))
	if err != nil {
		return nil, utils.NewDatabaseError("failed to aggregate feed", err)
	}
	defer cursor.Close(ctx)

	posts := []models.FeedPost{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, utils.NewDatabaseError("failed to decode feed", err)
	}
	return posts, nil
}

func feedPipeline(tag string) mongo.Pipeline {
	var pipeline mongo.Pipeline
	if tag != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{{Key: "tags", Value: tag}}}})
	}
	return append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "creator"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "creatorUser"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$creatorUser"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	)
}

// CreatePostForUser inserts the post and links it from its creator's posts.
// Both writes share a transaction when the deployment supports one;
// otherwise the insert is undone if linking fails.
func (m *MongoDB) CreatePostForUser(ctx context.Context, post *models.Post) error {
	preparePost(post)

	if m.useTransactions {
		err := m.createPostInTransaction(ctx, post)
		if !isTransactionUnsupported(err) {
			return err
		}
		m.logger.Warn("transactions unsupported by deployment, using compensating writes", "error", err)
	}
	return m.createPostWithCompensation(ctx, post)
}

func preparePost(post *models.Post) {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Date.IsZero() {
		post.Date = time.Now().UTC()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	for i := range post.Comments {
		if post.Comments[i].ID.IsZero() {
			post.Comments[i].ID = primitive.NewObjectID()
		}
	}
	if post.Likes.Likers == nil {
		post.Likes.Likers = []primitive.ObjectID{}
	}
}

func (m *MongoDB) createPostInTransaction(ctx context.Context, post *models.Post) error {
	session, err := m.Client.StartSession()
	if err != nil {
		return utils.NewDatabaseError("failed to start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := m.Posts.InsertOne(sc, post); err != nil {
			return nil, err
		}
		return nil, m.linkPost(sc, post)
	})
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) || isTransactionUnsupported(err) {
			return err
		}
		return utils.NewDatabaseError("failed to create post", err)
	}
	return nil
}

func (m *MongoDB) createPostWithCompensation(ctx context.Context, post *models.Post) error {
	if _, err := m.Posts.InsertOne(ctx, post); err != nil {
		return utils.NewDatabaseError("failed to insert post", err)
	}

	linkErr := m.linkPost(ctx, post)
	if linkErr == nil {
		return nil
	}

	if _, err := m.Posts.DeleteOne(ctx, bson.M{"_id": post.ID}); err != nil {
		m.logger.Error("failed to remove unlinked post", "postId", post.ID.Hex(), "error", err)
	}
	return linkErr
}

// linkPost adds the post id to the creator's posts; $addToSet keeps it unique.
func (m *MongoDB) linkPost(ctx context.Context, post *models.Post) error {
	res, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": post.Creator},
		bson.M{"$addToSet": bson.M{"posts": post.ID}},
	)
	if err != nil {
		return utils.NewDatabaseError("failed to link post to user", err)
	}
	if res.MatchedCount == 0 {
		return utils.NewUserNotFoundError(post.Creator.Hex())
	}
	return nil
}

func isTransactionUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == codeIllegalOperation || cmdErr.Name == "IllegalOperation") {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction numbers are only allowed") ||
		strings.Contains(msg, "transactions are not supported")
}

// SetLike adds or removes userID from the post's likers. Likes count is
// left as it was at creation.
func (m *MongoDB) SetLike(ctx context.Context, postID, userID primitive.ObjectID, liked bool) error {
	op := "$pull"
	if liked {
		op = "$addToSet"
	}
	return m.updatePost(ctx, postID, bson.M{op: bson.M{"likes.likers": userID}})
}

func (m *MongoDB) AddComment(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	return m.updatePost(ctx, postID, bson.M{"$push": bson.M{"comments": comment}})
}

func (m *MongoDB) updatePost(ctx context.Context, postID primitive.ObjectID, update bson.M) error {
	res, err := m.Posts.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return utils.NewDatabaseError("failed to update post", err)
	}
	if res.MatchedCount == 0 {
		return utils.NewPostNotFoundError(postID.Hex())
	}
	return nil
}
