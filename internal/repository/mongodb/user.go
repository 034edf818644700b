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

// compile-time interface checks
var _ repository.UserRepository = (*UserRepo)(nil)
var _ repository.FollowRepository = (*FollowRepo)(nil)

// UserRepo stores profile documents in the users collection.
type UserRepo struct {
	c *mongo.Collection
}

// Create inserts a new profile document.
//
// The unique indexes on uid and email turn a repeated registration into a
// duplicate-key error, which we translate to ErrConflict so the handler can
// answer 409. Follower/following lists start as empty arrays, not null —
// the client iterates them unconditionally.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}

	_, err := r.c.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("User already exists")
		}
		return fmt.Errorf("mongodb: inserting user (uid=%s): %w", user.UID, err)
	}
	return nil
}

// GetByID retrieves a user by document ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (r *UserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: getting user %s: %w", id.Hex(), err)
	}
	return &u, nil
}

// GetByUID retrieves a user by their identity-provider uid.
func (r *UserRepo) GetByUID(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	err := r.c.FindOne(ctx, bson.M{"uid": uid}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", uid)
		}
		return nil, fmt.Errorf("mongodb: getting user by uid %s: %w", uid, err)
	}
	return &u, nil
}

// ListByIDs fetches the user documents for a set of IDs in one query.
// Missing IDs are silently absent from the result — callers resolving like
// edges tolerate dangling references.
func (r *UserRepo) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	cur, err := r.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing users by ids: %w", err)
	}
	defer cur.Close(ctx)

	users := make([]model.User, 0, len(ids))
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongodb: decoding users: %w", err)
	}
	return users, nil
}

// UpdateProfile sets name and picture on the profile with the given uid and
// returns the updated document (ReturnDocument After, the findOneAndUpdate
// "new: true" idiom).
func (r *UserRepo) UpdateProfile(ctx context.Context, uid, name, picture string) (*model.User, error) {
	var u model.User
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"uid": uid},
		bson.M{"$set": bson.M{"name": name, "picture": picture, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", uid)
		}
		return nil, fmt.Errorf("mongodb: updating profile %s: %w", uid, err)
	}
	return &u, nil
}

// PushFollowing appends a follow-edge id to the user's following list.
// This is the second write of the non-atomic follow pair.
func (r *UserRepo) PushFollowing(ctx context.Context, userID, edgeID primitive.ObjectID) error {
	_, err := r.c.UpdateByID(ctx, userID, bson.M{"$push": bson.M{"following": edgeID}})
	if err != nil {
		return fmt.Errorf("mongodb: pushing following on %s: %w", userID.Hex(), err)
	}
	return nil
}

// PullFollowing removes a follow-edge id from the user's following list.
func (r *UserRepo) PullFollowing(ctx context.Context, userID, edgeID primitive.ObjectID) error {
	_, err := r.c.UpdateByID(ctx, userID, bson.M{"$pull": bson.M{"following": edgeID}})
	if err != nil {
		return fmt.Errorf("mongodb: pulling following on %s: %w", userID.Hex(), err)
	}
	return nil
}

// FollowRepo stores follow edges in their own collection.
type FollowRepo struct {
	c *mongo.Collection
}

// Get returns the follow edge for the ordered pair, or ErrNotFound.
func (r *FollowRepo) Get(ctx context.Context, user, following primitive.ObjectID) (*model.Following, error) {
	var edge model.Following
	err := r.c.FindOne(ctx, bson.M{"user": user, "following": following}).Decode(&edge)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("following", user.Hex()+"/"+following.Hex())
		}
		return nil, fmt.Errorf("mongodb: getting follow edge: %w", err)
	}
	return &edge, nil
}

// Create inserts a follow edge. A duplicate-key error from the unique
// (user, following) index wins over any advisory pre-check the service did.
func (r *FollowRepo) Create(ctx context.Context, edge *model.Following) error {
	edge.ID = primitive.NewObjectID()
	edge.CreatedAt = time.Now()

	_, err := r.c.InsertOne(ctx, edge)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Duplicate("Already following this user")
		}
		return fmt.Errorf("mongodb: inserting follow edge: %w", err)
	}
	return nil
}

// Delete removes the edge for the pair and returns the removed document so
// the caller can pull its id from the follower's following list. A missing
// edge answers "Not following this user" (400 on the wire).
func (r *FollowRepo) Delete(ctx context.Context, user, following primitive.ObjectID) (*model.Following, error) {
	var edge model.Following
	err := r.c.FindOneAndDelete(ctx, bson.M{"user": user, "following": following}).Decode(&edge)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.Duplicate("Not following this user")
		}
		return nil, fmt.Errorf("mongodb: deleting follow edge: %w", err)
	}
	return &edge, nil
}
