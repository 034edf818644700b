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

var _ repository.CartRepository = (*CartRepo)(nil)
var _ repository.ReviewRepository = (*ReviewRepo)(nil)

// CartRepo stores cart documents.
type CartRepo struct {
	c *mongo.Collection
}

func (r *CartRepo) Create(ctx context.Context, cart *model.Cart) error {
	now := time.Now()
	cart.ID = primitive.NewObjectID()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	if cart.Products == nil {
		cart.Products = []primitive.ObjectID{}
	}

	_, err := r.c.InsertOne(ctx, cart)
	if err != nil {
		return fmt.Errorf("mongodb: inserting cart: %w", err)
	}
	return nil
}

func (r *CartRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Cart, error) {
	var cart model.Cart
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("cart", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: getting cart %s: %w", id.Hex(), err)
	}
	return &cart, nil
}

func (r *CartRepo) List(ctx context.Context) ([]model.Cart, error) {
	cur, err := r.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing carts: %w", err)
	}
	defer cur.Close(ctx)

	carts := []model.Cart{}
	if err := cur.All(ctx, &carts); err != nil {
		return nil, fmt.Errorf("mongodb: decoding carts: %w", err)
	}
	return carts, nil
}

func (r *CartRepo) Update(ctx context.Context, id primitive.ObjectID, user primitive.ObjectID, products []primitive.ObjectID) (*model.Cart, error) {
	if products == nil {
		products = []primitive.ObjectID{}
	}

	var cart model.Cart
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"user": user, "products": products, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("cart", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: updating cart %s: %w", id.Hex(), err)
	}
	return &cart, nil
}

func (r *CartRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongodb: deleting cart %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("cart", id.Hex())
	}
	return nil
}

// ReviewRepo stores review documents.
type ReviewRepo struct {
	c *mongo.Collection
}

func (r *ReviewRepo) Create(ctx context.Context, review *model.Review) error {
	now := time.Now()
	review.ID = primitive.NewObjectID()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.c.InsertOne(ctx, review)
	if err != nil {
		return fmt.Errorf("mongodb: inserting review: %w", err)
	}
	return nil
}

func (r *ReviewRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Review, error) {
	var rev model.Review
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rev)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("review", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: getting review %s: %w", id.Hex(), err)
	}
	return &rev, nil
}

func (r *ReviewRepo) List(ctx context.Context) ([]model.Review, error) {
	return r.listFiltered(ctx, bson.M{})
}

func (r *ReviewRepo) ListByUser(ctx context.Context, user primitive.ObjectID) ([]model.Review, error) {
	return r.listFiltered(ctx, bson.M{"user": user})
}

func (r *ReviewRepo) ListByProduct(ctx context.Context, product primitive.ObjectID) ([]model.Review, error) {
	return r.listFiltered(ctx, bson.M{"product": product})
}

func (r *ReviewRepo) listFiltered(ctx context.Context, filter bson.M) ([]model.Review, error) {
	cur, err := r.c.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing reviews: %w", err)
	}
	defer cur.Close(ctx)

	reviews := []model.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("mongodb: decoding reviews: %w", err)
	}
	return reviews, nil
}

func (r *ReviewRepo) Update(ctx context.Context, id primitive.ObjectID, rating *int, comment *string) (*model.Review, error) {
	set := bson.M{"updatedAt": time.Now()}
	if rating != nil {
		set["rating"] = *rating
	}
	if comment != nil {
		set["comment"] = *comment
	}

	var rev model.Review
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rev)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("review", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: updating review %s: %w", id.Hex(), err)
	}
	return &rev, nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongodb: deleting review %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("review", id.Hex())
	}
	return nil
}
