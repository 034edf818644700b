package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
)

// CommerceService handles carts, reviews, and the storefront aggregate.
type CommerceService struct {
	carts      repository.CartRepository
	reviews    repository.ReviewRepository
	offers     repository.OfferRepository
	categories repository.CategoryRepository
	products   repository.ProductRepository
	logger     *slog.Logger
}

func NewCommerceService(
	carts repository.CartRepository,
	reviews repository.ReviewRepository,
	offers repository.OfferRepository,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	logger *slog.Logger,
) *CommerceService {
	return &CommerceService{
		carts:      carts,
		reviews:    reviews,
		offers:     offers,
		categories: categories,
		products:   products,
		logger:     logger,
	}
}

func (s *CommerceService) CreateCart(ctx context.Context, user primitive.ObjectID, products []primitive.ObjectID) (*model.Cart, error) {
	cart := &model.Cart{User: user, Products: products}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("creating cart: %w", err)
	}

	s.logger.Info("cart created",
		slog.String("id", cart.ID.Hex()),
		slog.String("user", user.Hex()),
	)
	return cart, nil
}

func (s *CommerceService) GetCart(ctx context.Context, id primitive.ObjectID) (*model.Cart, error) {
	return s.carts.GetByID(ctx, id)
}

func (s *CommerceService) ListCarts(ctx context.Context) ([]model.Cart, error) {
	return s.carts.List(ctx)
}

func (s *CommerceService) UpdateCart(ctx context.Context, id, user primitive.ObjectID, products []primitive.ObjectID) (*model.Cart, error) {
	cart, err := s.carts.Update(ctx, id, user, products)
	if err != nil {
		return nil, err
	}

	s.logger.Info("cart updated", slog.String("id", id.Hex()))
	return cart, nil
}

func (s *CommerceService) DeleteCart(ctx context.Context, id primitive.ObjectID) error {
	if err := s.carts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("cart deleted", slog.String("id", id.Hex()))
	return nil
}

func (s *CommerceService) CreateReview(ctx context.Context, user, product primitive.ObjectID, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperror.ValidationFailed("rating", "rating must be between 1 and 5")
	}

	review := &model.Review{User: user, Product: product, Rating: rating, Comment: comment}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
	}

	s.logger.Info("review created",
		slog.String("id", review.ID.Hex()),
		slog.String("product", product.Hex()),
	)
	return review, nil
}

func (s *CommerceService) GetReview(ctx context.Context, id primitive.ObjectID) (*model.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

func (s *CommerceService) ListReviews(ctx context.Context) ([]model.Review, error) {
	return s.reviews.List(ctx)
}

func (s *CommerceService) ListReviewsByUser(ctx context.Context, user primitive.ObjectID) ([]model.Review, error) {
	return s.reviews.ListByUser(ctx, user)
}

func (s *CommerceService) ListReviewsByProduct(ctx context.Context, product primitive.ObjectID) ([]model.Review, error) {
	return s.reviews.ListByProduct(ctx, product)
}

func (s *CommerceService) UpdateReview(ctx context.Context, id primitive.ObjectID, rating *int, comment *string) (*model.Review, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, apperror.ValidationFailed("rating", "rating must be between 1 and 5")
	}

	review, err := s.reviews.Update(ctx, id, rating, comment)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review updated", slog.String("id", id.Hex()))
	return review, nil
}

func (s *CommerceService) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("review deleted", slog.String("id", id.Hex()))
	return nil
}

// Storefront assembles the landing-page aggregate. The three reads fan out
// concurrently; any failure fails the whole aggregate. Recommended is
// always empty until a recommendation signal exists, and popular is the
// first page of ten products.
func (s *CommerceService) Storefront(ctx context.Context) (*model.Storefront, error) {
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		firstErr   error
		offers     []model.Offer
		categories []model.Category
		popular    []model.Product
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		v, err := s.offers.List(ctx)
		if err != nil {
			fail(fmt.Errorf("listing offers: %w", err))
			return
		}
		offers = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.categories.List(ctx)
		if err != nil {
			fail(fmt.Errorf("listing categories: %w", err))
			return
		}
		categories = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.products.List(ctx, repository.ListOptions{Limit: 10, Page: 1})
		if err != nil {
			fail(fmt.Errorf("listing popular products: %w", err))
			return
		}
		popular = v
	}()
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return &model.Storefront{
		Offers:      offers,
		Recommended: []model.Product{},
		Categories:  categories,
		Popular:     popular,
	}, nil
}
