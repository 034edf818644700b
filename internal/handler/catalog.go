package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/auth"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
	"github.com/sakif/bazaar/internal/service"
)

// CatalogHandler serves categories, products, and offers.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// HandleCreateCategory creates a category from a multipart form.
//
// HTTP: POST /api/category
// FORM: name, description, single file under "image".
func (h *CatalogHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	image, cleanup, err := formUpload(r, "image")
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()
	if image == nil {
		writeError(w, apperror.ValidationFailed("image", "Category image is required"))
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), r.FormValue("name"), r.FormValue("description"), *image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// HandleGetCategory returns one category.
//
// HTTP: GET /api/category/{id}
func (h *CatalogHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	category, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// HandleListCategories returns all categories.
//
// HTTP: GET /api/category
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HandleAddProduct creates a product from a multipart form, authored by the
// authenticated caller.
//
// HTTP: POST /api/product
// Auth: required
// FORM: name, description, price, quantityAvailable, category
// (comma-separated ids), up to 5 files under "images".
func (h *CatalogHandler) HandleAddProduct(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Missing authentication"))
		return
	}

	images, cleanup, err := formUploads(r, "images", maxImagesPerUpload)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("price", "Invalid price"))
		return
	}
	quantity, err := strconv.Atoi(r.FormValue("quantityAvailable"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("quantityAvailable", "Invalid quantityAvailable"))
		return
	}
	categories, err := splitIDs(r.FormValue("category"))
	if err != nil {
		writeError(w, err)
		return
	}

	product, err := h.catalog.AddProduct(r.Context(), identity.UID,
		r.FormValue("name"), r.FormValue("description"), price, quantity, categories, images)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// HandleListProducts returns a page of products.
//
// HTTP: GET /api/product?limit=&page=&sort=
func (h *CatalogHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// HandleGetProduct returns one product.
//
// HTTP: GET /api/product/{id}
func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// HandleListProductsByCategory returns a page of products belonging to any
// of the given categories.
//
// HTTP: GET /api/product/category/{categories} — comma-separated ids.
func (h *CatalogHandler) HandleListProductsByCategory(w http.ResponseWriter, r *http.Request) {
	categories, err := splitIDs(r.PathValue("categories"))
	if err != nil {
		writeError(w, err)
		return
	}

	products, err := h.catalog.ListProductsByCategory(r.Context(), categories, listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// HandleEditProduct merges the JSON patch into the caller's own product.
//
// HTTP: PATCH /api/product/{id}
// Auth: required
func (h *CatalogHandler) HandleEditProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Missing authentication"))
		return
	}

	var req struct {
		Name              *string               `json:"name"`
		Description       *string               `json:"description"`
		Price             *float64              `json:"price"`
		QuantityAvailable *int                  `json:"quantityAvailable"`
		ImageURLs         *[]string             `json:"imageUrls"`
		Category          *[]primitive.ObjectID `json:"category"`
		Offers            *[]primitive.ObjectID `json:"offers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	product, err := h.catalog.EditProduct(r.Context(), identity.UID, id, repository.ProductPatch{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		QuantityAvailable: req.QuantityAvailable,
		ImageURLs:         req.ImageURLs,
		Category:          req.Category,
		Offers:            req.Offers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// HandleDeleteProduct deletes the caller's own product.
//
// HTTP: DELETE /api/product/{id}
// Auth: required
func (h *CatalogHandler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Missing authentication"))
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), identity.UID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// HandleCreateOffer creates an offer from a multipart form.
//
// HTTP: POST /api/offers
// FORM: name, description, discountPercentage, startDate, endDate (RFC
// 3339), single file under "offer".
func (h *CatalogHandler) HandleCreateOffer(w http.ResponseWriter, r *http.Request) {
	image, cleanup, err := formUpload(r, "offer")
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	discount, err := strconv.ParseFloat(r.FormValue("discountPercentage"), 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("discountPercentage", "Invalid discountPercentage"))
		return
	}

	offer := &model.Offer{
		Name:               r.FormValue("name"),
		Description:        r.FormValue("description"),
		DiscountPercentage: discount,
	}
	// Dates are stored as given; start after end is not rejected.
	if t, err := time.Parse(time.RFC3339, r.FormValue("startDate")); err == nil {
		offer.StartDate = t
	}
	if t, err := time.Parse(time.RFC3339, r.FormValue("endDate")); err == nil {
		offer.EndDate = t
	}

	created, err := h.catalog.CreateOffer(r.Context(), offer, image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleGetOffer returns one offer.
//
// HTTP: GET /api/offers/{id}
func (h *CatalogHandler) HandleGetOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	offer, err := h.catalog.GetOffer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

// HandleListOffers returns all offers.
//
// HTTP: GET /api/offers
func (h *CatalogHandler) HandleListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.catalog.ListOffers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

// HandleUpdateOffer merges the multipart fields into the offer. The file is
// optional: without one the stored image URL is retained.
//
// HTTP: PUT /api/offers/{id}
func (h *CatalogHandler) HandleUpdateOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	image, cleanup, err := formUpload(r, "offer")
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	var patch repository.OfferPatch
	if v := r.FormValue("name"); v != "" {
		patch.Name = &v
	}
	if v := r.FormValue("description"); v != "" {
		patch.Description = &v
	}
	if v := r.FormValue("discountPercentage"); v != "" {
		discount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, apperror.ValidationFailed("discountPercentage", "Invalid discountPercentage"))
			return
		}
		patch.DiscountPercentage = &discount
	}
	if t, err := time.Parse(time.RFC3339, r.FormValue("startDate")); err == nil {
		patch.StartDate = &t
	}
	if t, err := time.Parse(time.RFC3339, r.FormValue("endDate")); err == nil {
		patch.EndDate = &t
	}

	offer, err := h.catalog.UpdateOffer(r.Context(), id, patch, image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

// HandleDeleteOffer deletes an offer.
//
// HTTP: DELETE /api/offers/{id}
func (h *CatalogHandler) HandleDeleteOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.catalog.DeleteOffer(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Offer deleted successfully"})
}
