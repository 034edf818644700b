// Package repository defines the data-access interfaces the services depend
// on. Concrete implementations live in subpackages (mongodb for production,
// memory for tests) — services only ever see these interfaces.
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/model"
)

// ListOptions carries pagination and sort direction for product listings.
//
// Skip is computed by the implementation as (Page-1)*10 with a fixed page
// size of 10, independent of Limit. That quirk is part of the wire contract
// and is pinned by tests — do not "fix" it here.
type ListOptions struct {
	Limit int
	Page  int
	Desc  bool // sort on _id descending when true, ascending otherwise
}

// PostPatch holds the mutable fields of a post. Nil fields are left
// untouched by Update.
type PostPatch struct {
	Description *string
	Images      *[]string
	Items       *[]model.Item
	IsBuySell   *bool
}

// ProductPatch holds the mutable fields of a product.
type ProductPatch struct {
	Name              *string
	Description       *string
	Price             *float64
	QuantityAvailable *int
	ImageURLs         *[]string
	Category          *[]primitive.ObjectID
	Offers            *[]primitive.ObjectID
}

// OfferPatch holds the mutable fields of an offer. Image stays nil when the
// update carried no replacement file, which retains the stored URL.
type OfferPatch struct {
	Name               *string
	Description        *string
	Image              *string
	DiscountPercentage *float64
	StartDate          *time.Time
	EndDate            *time.Time
}

type UserRepository interface {
	// Create inserts a profile. Returns apperror.ErrConflict when a profile
	// with the same uid or email already exists.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByUID(ctx context.Context, uid string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error)
	// UpdateProfile sets name and picture on the profile with the given uid
	// and returns the updated document.
	UpdateProfile(ctx context.Context, uid, name, picture string) (*model.User, error)
	// PushFollowing / PullFollowing maintain the user's following edge-id
	// list. They are the second write of the non-atomic follow/unfollow pair.
	PushFollowing(ctx context.Context, userID, edgeID primitive.ObjectID) error
	PullFollowing(ctx context.Context, userID, edgeID primitive.ObjectID) error
}

type FollowRepository interface {
	// Get returns the edge for the ordered (user, following) pair, or
	// apperror.ErrNotFound when no such edge exists.
	Get(ctx context.Context, user, following primitive.ObjectID) (*model.Following, error)
	// Create inserts the edge. The unique (user, following) index is the
	// source of truth; an index violation surfaces as apperror.ErrDuplicate.
	Create(ctx context.Context, edge *model.Following) error
	// Delete removes the edge for the pair and returns the removed document
	// so the caller can pull its id from the following list.
	Delete(ctx context.Context, user, following primitive.ObjectID) (*model.Following, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	// List returns all posts in the store's natural order.
	List(ctx context.Context) ([]model.Post, error)
	Update(ctx context.Context, id primitive.ObjectID, patch PostPatch) (*model.Post, error)
	// DeleteOwned deletes the post only when both the id and the author
	// match, in a single filter. apperror.ErrNotFound covers both "absent"
	// and "not yours".
	DeleteOwned(ctx context.Context, id, author primitive.ObjectID) error
	PushLike(ctx context.Context, postID, likeID primitive.ObjectID) error
	PullLike(ctx context.Context, postID, likeID primitive.ObjectID) error
}

type LikeRepository interface {
	Get(ctx context.Context, post, user primitive.ObjectID) (*model.Like, error)
	Create(ctx context.Context, like *model.Like) error
	// DeleteByID removes a like edge without verifying which post it
	// belongs to (permissive by contract).
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	ListByPost(ctx context.Context, post primitive.ObjectID) ([]model.Like, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	List(ctx context.Context, opts ListOptions) ([]model.Product, error)
	// ListByCategory filters by category membership: category ∈ categories.
	ListByCategory(ctx context.Context, categories []primitive.ObjectID, opts ListOptions) ([]model.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, patch ProductPatch) (*model.Product, error)
	DeleteOwned(ctx context.Context, id, author primitive.ObjectID) error
}

type OfferRepository interface {
	Create(ctx context.Context, offer *model.Offer) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Offer, error)
	List(ctx context.Context) ([]model.Offer, error)
	Update(ctx context.Context, id primitive.ObjectID, patch OfferPatch) (*model.Offer, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Cart, error)
	List(ctx context.Context) ([]model.Cart, error)
	Update(ctx context.Context, id primitive.ObjectID, user primitive.ObjectID, products []primitive.ObjectID) (*model.Cart, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Review, error)
	List(ctx context.Context) ([]model.Review, error)
	ListByUser(ctx context.Context, user primitive.ObjectID) ([]model.Review, error)
	ListByProduct(ctx context.Context, product primitive.ObjectID) ([]model.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, rating *int, comment *string) (*model.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
