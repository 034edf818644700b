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

var _ repository.CategoryRepository = (*CategoryRepo)(nil)
var _ repository.ProductRepository = (*ProductRepo)(nil)
var _ repository.OfferRepository = (*OfferRepo)(nil)

// CategoryRepo stores category documents.
type CategoryRepo struct {
	c *mongo.Collection
}

func (r *CategoryRepo) Create(ctx context.Context, category *model.Category) error {
	now := time.Now()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now

	_, err := r.c.InsertOne(ctx, category)
	if err != nil {
		return fmt.Errorf("mongodb: inserting category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Category, error) {
	var cat model.Category
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("category", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: getting category %s: %w", id.Hex(), err)
	}
	return &cat, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	cur, err := r.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing categories: %w", err)
	}
	defer cur.Close(ctx)

	categories := []model.Category{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("mongodb: decoding categories: %w", err)
	}
	return categories, nil
}

// ProductRepo stores product documents.
type ProductRepo struct {
	c *mongo.Collection
}

func (r *ProductRepo) Create(ctx context.Context, product *model.Product) error {
	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.ImageURLs == nil {
		product.ImageURLs = []string{}
	}
	if product.Offers == nil {
		product.Offers = []primitive.ObjectID{}
	}

	_, err := r.c.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("mongodb: inserting product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	var p model.Product
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("product", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: getting product %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// findOpts translates ListOptions into driver options.
//
// skip is (page-1)*10 with a FIXED page size of 10, regardless of the
// requested limit. The original backend shipped this way and clients page
// against it; preserved verbatim and pinned by tests.
func findOpts(opts repository.ListOptions) *options.FindOptions {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	sort := 1
	if opts.Desc {
		sort = -1
	}

	return options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * 10)).
		SetSort(bson.D{{Key: "_id", Value: sort}})
}

func (r *ProductRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Product, error) {
	cur, err := r.c.Find(ctx, bson.M{}, findOpts(opts))
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing products: %w", err)
	}
	defer cur.Close(ctx)

	products := []model.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongodb: decoding products: %w", err)
	}
	return products, nil
}

func (r *ProductRepo) ListByCategory(ctx context.Context, categories []primitive.ObjectID, opts repository.ListOptions) ([]model.Product, error) {
	cur, err := r.c.Find(ctx, bson.M{"category": bson.M{"$in": categories}}, findOpts(opts))
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing products by category: %w", err)
	}
	defer cur.Close(ctx)

	products := []model.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongodb: decoding products: %w", err)
	}
	return products, nil
}

func (r *ProductRepo) Update(ctx context.Context, id primitive.ObjectID, patch repository.ProductPatch) (*model.Product, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.QuantityAvailable != nil {
		set["quantityAvailable"] = *patch.QuantityAvailable
	}
	if patch.ImageURLs != nil {
		set["imageUrls"] = *patch.ImageURLs
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Offers != nil {
		set["offers"] = *patch.Offers
	}

	var p model.Product
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("product", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: updating product %s: %w", id.Hex(), err)
	}
	return &p, nil
}

func (r *ProductRepo) DeleteOwned(ctx context.Context, id, author primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id, "author": author})
	if err != nil {
		return fmt.Errorf("mongodb: deleting product %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("product", id.Hex())
	}
	return nil
}

// OfferRepo stores offer documents.
type OfferRepo struct {
	c *mongo.Collection
}

func (r *OfferRepo) Create(ctx context.Context, offer *model.Offer) error {
	now := time.Now()
	offer.ID = primitive.NewObjectID()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	_, err := r.c.InsertOne(ctx, offer)
	if err != nil {
		return fmt.Errorf("mongodb: inserting offer: %w", err)
	}
	return nil
}

func (r *OfferRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Offer, error) {
	var o model.Offer
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("offer", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: getting offer %s: %w", id.Hex(), err)
	}
	return &o, nil
}

func (r *OfferRepo) List(ctx context.Context) ([]model.Offer, error) {
	cur, err := r.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing offers: %w", err)
	}
	defer cur.Close(ctx)

	offers := []model.Offer{}
	if err := cur.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("mongodb: decoding offers: %w", err)
	}
	return offers, nil
}

// Update merges non-nil patch fields. A nil Image retains the stored URL —
// uploads are optional on offer updates.
func (r *OfferRepo) Update(ctx context.Context, id primitive.ObjectID, patch repository.OfferPatch) (*model.Offer, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.DiscountPercentage != nil {
		set["discountPercentage"] = *patch.DiscountPercentage
	}
	if patch.StartDate != nil {
		set["startDate"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["endDate"] = *patch.EndDate
	}

	var o model.Offer
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("offer", id.Hex())
		}
		return nil, fmt.Errorf("mongodb: updating offer %s: %w", id.Hex(), err)
	}
	return &o, nil
}

func (r *OfferRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongodb: deleting offer %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("offer", id.Hex())
	}
	return nil
}
