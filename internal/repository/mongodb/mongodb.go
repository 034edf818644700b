// Package mongodb implements the repository interfaces on MongoDB.
//
// WHY A DOCUMENT STORE?
// The data model leans on document features throughout: array $push/$pull
// for like and following lists, $in filters for category membership, and
// unique compound indexes on edge collections. The driver is the only place
// that knows about bson — services see repository interfaces and apperror
// values, never mongo types.
//
// The unique indexes created in ensureIndexes are load-bearing: duplicate
// follow/like detection is pre-checked by the services, but the index is the
// authoritative guard against the race between check and insert.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names, kept in one place so index setup and queries agree.
const (
	colUsers      = "users"
	colFollowings = "followings"
	colPosts      = "posts"
	colLikes      = "likes"
	colCategories = "categories"
	colProducts   = "products"
	colOffers     = "offers"
	colCarts      = "carts"
	colReviews    = "reviews"
)

// DB wraps the mongo client and exposes one repository per collection.
// A single client (one connection pool) serves every collection; the
// per-collection repo types exist so each can satisfy its interface without
// method-name collisions.
type DB struct {
	client *mongo.Client
	db     *mongo.Database

	Users      *UserRepo
	Follows    *FollowRepo
	Posts      *PostRepo
	Likes      *LikeRepo
	Categories *CategoryRepo
	Products   *ProductRepo
	Offers     *OfferRepo
	Carts      *CartRepo
	Reviews    *ReviewRepo
}

// New connects to MongoDB, verifies the connection with a ping, and ensures
// the unique indexes exist. The caller owns the returned DB and must Close it
// on shutdown.
func New(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connecting: %w", err)
	}

	// Connect does not dial eagerly; ping so a bad URI fails here instead of
	// on the first query.
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: pinging: %w", err)
	}

	db := &DB{client: client, db: client.Database(dbName)}
	db.Users = &UserRepo{c: db.db.Collection(colUsers)}
	db.Follows = &FollowRepo{c: db.db.Collection(colFollowings)}
	db.Posts = &PostRepo{c: db.db.Collection(colPosts)}
	db.Likes = &LikeRepo{c: db.db.Collection(colLikes)}
	db.Categories = &CategoryRepo{c: db.db.Collection(colCategories)}
	db.Products = &ProductRepo{c: db.db.Collection(colProducts)}
	db.Offers = &OfferRepo{c: db.db.Collection(colOffers)}
	db.Carts = &CartRepo{c: db.db.Collection(colCarts)}
	db.Reviews = &ReviewRepo{c: db.db.Collection(colReviews)}

	if err := db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: ensuring indexes: %w", err)
	}

	return db, nil
}

// Close disconnects the underlying client, draining the connection pool.
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// ensureIndexes creates the uniqueness constraints the contract relies on.
// CreateMany is idempotent for identical definitions, so this is safe to run
// on every start — the moral equivalent of the SQL migration step.
func (db *DB) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := db.db.Collection(colUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "uid", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	// One edge per ordered (user, following) pair.
	_, err = db.db.Collection(colFollowings).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "following", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("followings index: %w", err)
	}

	// One like per (post, user) pair — the authoritative duplicate guard.
	_, err = db.db.Collection(colLikes).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "post", Value: 1}, {Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("likes index: %w", err)
	}

	// Category membership filter used by the storefront listing.
	_, err = db.db.Collection(colProducts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("products index: %w", err)
	}

	return nil
}
