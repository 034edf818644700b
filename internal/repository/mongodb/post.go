package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
)

var _ repository.PostRepository = (*PostRepo)(nil)
var _ repository.LikeRepository = (*LikeRepo)(nil)

// PostRepo stores post documents.
type PostRepo struct {
	c *mongo.Collection
}

func (r *PostRepo) Create(ctx context.Context, post *model.Post) error {
	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Images == nil {
		post.Images = []string{}
	}
	if post.Items == nil {
		post.Items = []model.Item{}
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}

	_, err := r.c.InsertOne(ctx, post)
	if err != nil {
		return fmt.Errorf("mongodb: inserting post: %w", err)
	}
	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	var p model.Post
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: getting post %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// List returns every post in the store's natural order. The feed has no
// server-side pagination in the current contract.
func (r *PostRepo) List(ctx context.Context) ([]model.Post, error) {
	cur, err := r.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing posts: %w", err)
	}
	defer cur.Close(ctx)

	posts := []model.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("mongodb: decoding posts: %w", err)
	}
	return posts, nil
}

// Update merges the non-nil patch fields into the post and returns the
// updated document.
func (r *PostRepo) Update(ctx context.Context, id primitive.ObjectID, patch repository.PostPatch) (*model.Post, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Images != nil {
		set["images"] = *patch.Images
	}
	if patch.Items != nil {
		set["items"] = *patch.Items
	}
	if patch.IsBuySell != nil {
		set["isBuySell"] = *patch.IsBuySell
	}

	var p model.Post
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: updating post %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// DeleteOwned deletes the post only when id and author match in a single
// filter, so "absent" and "not yours" are indistinguishable by design.
func (r *PostRepo) DeleteOwned(ctx context.Context, id, author primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id, "author": author})
	if err != nil {
		return fmt.Errorf("mongodb: deleting post %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("post", id.Hex())
	}
	return nil
}

func (r *PostRepo) PushLike(ctx context.Context, postID, likeID primitive.ObjectID) error {
	_, err := r.c.UpdateByID(ctx, postID, bson.M{"$push": bson.M{"likes": likeID}})
	if err != nil {
		return fmt.Errorf("mongodb: pushing like on post %s: %w", postID.Hex(), err)
	}
	return nil
}

func (r *PostRepo) PullLike(ctx context.Context, postID, likeID primitive.ObjectID) error {
	_, err := r.c.UpdateByID(ctx, postID, bson.M{"$pull": bson.M{"likes": likeID}})
	if err != nil {
		return fmt.Errorf("mongodb: pulling like on post %s: %w", postID.Hex(), err)
	}
	return nil
}

// LikeRepo stores like edges.
type LikeRepo struct {
	c *mongo.Collection
}

func (r *LikeRepo) Get(ctx context.Context, post, user primitive.ObjectID) (*model.Like, error) {
	var like model.Like
	err := r.c.FindOne(ctx, bson.M{"post": post, "user": user}).Decode(&like)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("like", post.Hex()+"/"+user.Hex())
		}
		return nil, fmt.Errorf("mongodb: getting like: %w", err)
	}
	return &like, nil
}

func (r *LikeRepo) Create(ctx context.Context, like *model.Like) error {
	like.ID = primitive.NewObjectID()
	like.CreatedAt = time.Now()

	_, err := r.c.InsertOne(ctx, like)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Duplicate("User has already liked the post")
		}
		return fmt.Errorf("mongodb: inserting like: %w", err)
	}
	return nil
}

// DeleteByID removes a like edge by id alone — it does not verify which post
// the edge belongs to (permissive by contract). Deleting an absent like is
// not an error.
func (r *LikeRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongodb: deleting like %s: %w", id.Hex(), err)
	}
	return nil
}

func (r *LikeRepo) ListByPost(ctx context.Context, post primitive.ObjectID) ([]model.Like, error) {
	cur, err := r.c.Find(ctx, bson.M{"post": post})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing likes for post %s: %w", post.Hex(), err)
	}
	defer cur.Close(ctx)

	likes := []model.Like{}
	if err := cur.All(ctx, &likes); err != nil {
		return nil, fmt.Errorf("mongodb: decoding likes: %w", err)
	}
	return likes, nil
}
