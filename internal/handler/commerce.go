package handler

import (
	"log/slog"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/service"
)

// CommerceHandler serves carts, reviews, and the storefront aggregate.
type CommerceHandler struct {
	commerce *service.CommerceService
	logger   *slog.Logger
}

func NewCommerceHandler(commerce *service.CommerceService, logger *slog.Logger) *CommerceHandler {
	return &CommerceHandler{commerce: commerce, logger: logger}
}

// HandleCreateCart creates a cart.
//
// HTTP: POST /api/carts
// BODY: {"user": "...", "products": ["...", ...]}
func (h *CommerceHandler) HandleCreateCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User     string   `json:"user"`
		Products []string `json:"products"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := primitive.ObjectIDFromHex(req.User)
	if err != nil {
		writeError(w, apperror.ValidationFailed("user", "Invalid user"))
		return
	}
	products, err := hexIDs(req.Products, "products")
	if err != nil {
		writeError(w, err)
		return
	}

	cart, err := h.commerce.CreateCart(r.Context(), user, products)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cart)
}

// HandleGetCart returns one cart.
//
// HTTP: GET /api/carts/{id}
func (h *CommerceHandler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	cart, err := h.commerce.GetCart(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// HandleListCarts returns all carts.
//
// HTTP: GET /api/carts
func (h *CommerceHandler) HandleListCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := h.commerce.ListCarts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, carts)
}

// HandleUpdateCart replaces a cart's user and product list.
//
// HTTP: PUT /api/carts/{id}
func (h *CommerceHandler) HandleUpdateCart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		User     string   `json:"user"`
		Products []string `json:"products"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := primitive.ObjectIDFromHex(req.User)
	if err != nil {
		writeError(w, apperror.ValidationFailed("user", "Invalid user"))
		return
	}
	products, err := hexIDs(req.Products, "products")
	if err != nil {
		writeError(w, err)
		return
	}

	cart, err := h.commerce.UpdateCart(r.Context(), id, user, products)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// HandleDeleteCart deletes a cart.
//
// HTTP: DELETE /api/carts/{id}
func (h *CommerceHandler) HandleDeleteCart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.commerce.DeleteCart(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart deleted successfully"})
}

// HandleCreateReview creates a product review.
//
// HTTP: POST /api/reviews
// BODY: {"user": "...", "product": "...", "rating": 1-5, "comment": "..."}
func (h *CommerceHandler) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User    string `json:"user"`
		Product string `json:"product"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := primitive.ObjectIDFromHex(req.User)
	if err != nil {
		writeError(w, apperror.ValidationFailed("user", "Invalid user"))
		return
	}
	product, err := primitive.ObjectIDFromHex(req.Product)
	if err != nil {
		writeError(w, apperror.ValidationFailed("product", "Invalid product"))
		return
	}

	review, err := h.commerce.CreateReview(r.Context(), user, product, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// HandleGetReview returns one review.
//
// HTTP: GET /api/reviews/{id}
func (h *CommerceHandler) HandleGetReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	review, err := h.commerce.GetReview(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// HandleListReviews returns all reviews.
//
// HTTP: GET /api/reviews
func (h *CommerceHandler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.commerce.ListReviews(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// HandleListReviewsByUser returns the reviews written by one user.
//
// HTTP: GET /api/reviews/user/{userId}
func (h *CommerceHandler) HandleListReviewsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	reviews, err := h.commerce.ListReviewsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// HandleListReviewsByProduct returns the reviews on one product.
//
// HTTP: GET /api/reviews/product/{productId}
func (h *CommerceHandler) HandleListReviewsByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, err)
		return
	}

	reviews, err := h.commerce.ListReviewsByProduct(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// HandleUpdateReview updates a review's rating and/or comment.
//
// HTTP: PUT /api/reviews/{id}
func (h *CommerceHandler) HandleUpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Rating  *int    `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	review, err := h.commerce.UpdateReview(r.Context(), id, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// HandleDeleteReview deletes a review.
//
// HTTP: DELETE /api/reviews/{id}
func (h *CommerceHandler) HandleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.commerce.DeleteReview(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Review deleted successfully"})
}

// HandleStorefront returns the landing-page aggregate.
//
// HTTP: GET /api/store
func (h *CommerceHandler) HandleStorefront(w http.ResponseWriter, r *http.Request) {
	store, err := h.commerce.Storefront(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, store)
}

// hexIDs parses a list of hex document ids from a request body.
func hexIDs(raw []string, field string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, apperror.ValidationFailed(field, "Invalid "+field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
