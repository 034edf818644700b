package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
	"github.com/sakif/bazaar/internal/storage"
)

// CatalogService handles the storefront catalog: categories, products, and
// discount offers.
type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	offers     repository.OfferRepository
	users      repository.UserRepository
	assets     storage.ObjectStore
	logger     *slog.Logger
}

func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	offers repository.OfferRepository,
	users repository.UserRepository,
	assets storage.ObjectStore,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		offers:     offers,
		users:      users,
		assets:     assets,
		logger:     logger,
	}
}

// CreateCategory uploads the image and persists the category.
func (s *CatalogService) CreateCategory(ctx context.Context, name, description string, image Upload) (*model.Category, error) {
	obj, err := s.assets.Save(ctx, "image", image.MimeType, image.Content)
	if err != nil {
		return nil, fmt.Errorf("uploading category image: %w", err)
	}

	category := &model.Category{
		Name:        name,
		Description: description,
		Image:       obj.URL,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	s.logger.Info("category created",
		slog.String("id", category.ID.Hex()),
		slog.String("name", name),
	)
	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id primitive.ObjectID) (*model.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

// AddProduct uploads all images in parallel and persists the product with
// the caller's profile as its author.
func (s *CatalogService) AddProduct(ctx context.Context, uid, name, description string, price float64, quantityAvailable int, categories []primitive.ObjectID, images []Upload) (*model.Product, error) {
	if price < 0 {
		return nil, apperror.ValidationFailed("price", "price must not be negative")
	}
	if quantityAvailable < 0 {
		return nil, apperror.ValidationFailed("quantityAvailable", "quantityAvailable must not be negative")
	}
	if len(categories) == 0 {
		return nil, apperror.ValidationFailed("category", "at least one category is required")
	}

	caller, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	urls, err := uploadAll(ctx, s.assets, "images", images)
	if err != nil {
		return nil, fmt.Errorf("uploading product images: %w", err)
	}

	product := &model.Product{
		Author:            caller.ID,
		Name:              name,
		Description:       description,
		Price:             price,
		QuantityAvailable: quantityAvailable,
		ImageURLs:         urls,
		Category:          categories,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	s.logger.Info("product created",
		slog.String("id", product.ID.Hex()),
		slog.String("author", caller.ID.Hex()),
	)
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, opts repository.ListOptions) ([]model.Product, error) {
	return s.products.List(ctx, opts)
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, categories []primitive.ObjectID, opts repository.ListOptions) ([]model.Product, error) {
	if len(categories) == 0 {
		return nil, apperror.ValidationFailed("category", "at least one category is required")
	}
	return s.products.ListByCategory(ctx, categories, opts)
}

// EditProduct applies the patch after verifying the caller authored the
// product. Forbidden on mismatch, and nothing is written.
func (s *CatalogService) EditProduct(ctx context.Context, uid string, id primitive.ObjectID, patch repository.ProductPatch) (*model.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	caller, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if product.Author != caller.ID {
		return nil, apperror.Forbidden("Unauthorized: User does not own the product")
	}

	updated, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product updated", slog.String("id", id.Hex()))
	return updated, nil
}

// DeleteProduct mirrors EditProduct's ownership check, then deletes under
// the combined (id, author) filter.
func (s *CatalogService) DeleteProduct(ctx context.Context, uid string, id primitive.ObjectID) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	caller, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	if product.Author != caller.ID {
		return apperror.Forbidden("Unauthorized: User does not own the product")
	}

	if err := s.products.DeleteOwned(ctx, id, caller.ID); err != nil {
		return err
	}

	s.logger.Info("product deleted", slog.String("id", id.Hex()))
	return nil
}

// CreateOffer uploads the image and persists the offer.
// discountPercentage must lie in [0,100]; startDate ≤ endDate is not
// enforced.
func (s *CatalogService) CreateOffer(ctx context.Context, offer *model.Offer, image *Upload) (*model.Offer, error) {
	if offer.DiscountPercentage < 0 || offer.DiscountPercentage > 100 {
		return nil, apperror.ValidationFailed("discountPercentage", "discountPercentage must be between 0 and 100")
	}
	if image == nil {
		return nil, apperror.ValidationFailed("offer", "offer image is required")
	}

	obj, err := s.assets.Save(ctx, "offer", image.MimeType, image.Content)
	if err != nil {
		return nil, fmt.Errorf("uploading offer image: %w", err)
	}
	offer.Image = obj.URL

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("creating offer: %w", err)
	}

	s.logger.Info("offer created", slog.String("id", offer.ID.Hex()))
	return offer, nil
}

func (s *CatalogService) GetOffer(ctx context.Context, id primitive.ObjectID) (*model.Offer, error) {
	return s.offers.GetByID(ctx, id)
}

func (s *CatalogService) ListOffers(ctx context.Context) ([]model.Offer, error) {
	return s.offers.List(ctx)
}

// UpdateOffer merges the patch; when a replacement image is supplied it is
// uploaded and its URL set, otherwise the stored URL is retained.
func (s *CatalogService) UpdateOffer(ctx context.Context, id primitive.ObjectID, patch repository.OfferPatch, image *Upload) (*model.Offer, error) {
	if patch.DiscountPercentage != nil && (*patch.DiscountPercentage < 0 || *patch.DiscountPercentage > 100) {
		return nil, apperror.ValidationFailed("discountPercentage", "discountPercentage must be between 0 and 100")
	}

	if image != nil {
		obj, err := s.assets.Save(ctx, "offer", image.MimeType, image.Content)
		if err != nil {
			return nil, fmt.Errorf("uploading offer image: %w", err)
		}
		patch.Image = &obj.URL
	}

	updated, err := s.offers.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("offer updated", slog.String("id", id.Hex()))
	return updated, nil
}

func (s *CatalogService) DeleteOffer(ctx context.Context, id primitive.ObjectID) error {
	if err := s.offers.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("offer deleted", slog.String("id", id.Hex()))
	return nil
}
