package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
	"github.com/sakif/bazaar/internal/repository/memory"
)

func newCatalogService(store *memory.Store, assets *fakeObjectStore) *CatalogService {
	return NewCatalogService(store.Categories, store.Products, store.Offers, store.Users, assets, testLogger())
}

func seedProducts(t *testing.T, store *memory.Store, author primitive.ObjectID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		p := &model.Product{
			Author:            author,
			Name:              fmt.Sprintf("p%d", i),
			Price:             float64(i),
			QuantityAvailable: 1,
			Category:          []primitive.ObjectID{primitive.NewObjectID()},
		}
		if err := store.Products.Create(context.Background(), p); err != nil {
			t.Fatalf("seeding product %d: %v", i, err)
		}
	}
}

func TestListProducts_PaginationOffsetIgnoresLimit(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")
	seedProducts(t, store, author.ID, 20)

	// The skip is (page-1)*10 regardless of limit, so limit 5 / page 2
	// starts at offset 10, not 5. Kept contract; this test pins it.
	products, err := svc.ListProducts(ctx, repository.ListOptions{Limit: 5, Page: 2})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}

	if len(products) != 5 {
		t.Fatalf("product count = %d, want 5", len(products))
	}
	if products[0].Name != "p10" {
		t.Errorf("first product = %q, want %q (offset 10)", products[0].Name, "p10")
	}
	if products[4].Name != "p14" {
		t.Errorf("last product = %q, want %q", products[4].Name, "p14")
	}
}

func TestListProducts_DescendingSort(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")
	seedProducts(t, store, author.ID, 3)

	products, err := svc.ListProducts(ctx, repository.ListOptions{Limit: 10, Page: 1, Desc: true})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("product count = %d, want 3", len(products))
	}
	if products[0].Name != "p2" {
		t.Errorf("first product descending = %q, want %q", products[0].Name, "p2")
	}
}

func TestListProductsByCategory(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")
	books := primitive.NewObjectID()
	toys := primitive.NewObjectID()

	for i, cat := range []primitive.ObjectID{books, toys, books} {
		p := &model.Product{
			Author:   author.ID,
			Name:     fmt.Sprintf("p%d", i),
			Category: []primitive.ObjectID{cat},
		}
		if err := store.Products.Create(ctx, p); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	products, err := svc.ListProductsByCategory(ctx, []primitive.ObjectID{books}, repository.ListOptions{Limit: 10, Page: 1})
	if err != nil {
		t.Fatalf("ListProductsByCategory: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("product count in category = %d, want 2", len(products))
	}
}

func TestAddProduct_Validation(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	mustRegister(t, store, "u1", "A")
	cat := []primitive.ObjectID{primitive.NewObjectID()}

	if _, err := svc.AddProduct(ctx, "u1", "x", "", -1, 1, cat, nil); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("negative price error = %v, want ErrValidation", err)
	}
	if _, err := svc.AddProduct(ctx, "u1", "x", "", 1, -1, cat, nil); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("negative quantity error = %v, want ErrValidation", err)
	}
	if _, err := svc.AddProduct(ctx, "u1", "x", "", 1, 1, nil, nil); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("missing category error = %v, want ErrValidation", err)
	}
}

func TestAddProduct_AuthorIsCaller(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	caller := mustRegister(t, store, "u1", "A")

	product, err := svc.AddProduct(ctx, "u1", "lamp", "desk lamp", 30, 4,
		[]primitive.ObjectID{primitive.NewObjectID()},
		[]Upload{{MimeType: "image/png", Content: strings.NewReader("img")}})
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if product.Author != caller.ID {
		t.Errorf("Author = %v, want caller id %v", product.Author, caller.ID)
	}
	if len(product.ImageURLs) != 1 {
		t.Errorf("ImageURLs length = %d, want 1", len(product.ImageURLs))
	}
}

func TestEditProduct_NotOwner(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	owner := mustRegister(t, store, "u1", "A")
	mustRegister(t, store, "u2", "B")

	product := &model.Product{
		Author:   owner.ID,
		Name:     "original",
		Category: []primitive.ObjectID{primitive.NewObjectID()},
	}
	if err := store.Products.Create(ctx, product); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	name := "hijacked"
	_, err := svc.EditProduct(ctx, "u2", product.ID, repository.ProductPatch{Name: &name})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("EditProduct by non-owner error = %v, want ErrForbidden", err)
	}

	stored, err := store.Products.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Name != "original" {
		t.Errorf("Name after forbidden edit = %q, want %q", stored.Name, "original")
	}
}

func TestDeleteProduct_NotOwner(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	owner := mustRegister(t, store, "u1", "A")
	mustRegister(t, store, "u2", "B")

	product := &model.Product{
		Author:   owner.ID,
		Name:     "keep",
		Category: []primitive.ObjectID{primitive.NewObjectID()},
	}
	if err := store.Products.Create(ctx, product); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	if err := svc.DeleteProduct(ctx, "u2", product.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("DeleteProduct by non-owner error = %v, want ErrForbidden", err)
	}
	if _, err := store.Products.GetByID(ctx, product.ID); err != nil {
		t.Error("product should still exist after a forbidden delete")
	}
}

func TestCreateCategory_UploadsImage(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Books", "printed things",
		Upload{MimeType: "image/jpeg", Content: strings.NewReader("cover")})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	if category.Image != "http://assets.local/static/image-cover" {
		t.Errorf("Image = %q, want the uploaded asset URL", category.Image)
	}

	got, err := svc.GetCategory(ctx, category.ID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got.Name != "Books" || got.Description != "printed things" {
		t.Errorf("stored category = %q/%q, want Books/printed things", got.Name, got.Description)
	}
}

func TestCreateOffer_DiscountBounds(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	image := func() *Upload {
		return &Upload{MimeType: "image/png", Content: strings.NewReader("banner")}
	}

	for _, discount := range []float64{-1, 101} {
		offer := &model.Offer{Name: "sale", DiscountPercentage: discount}
		if _, err := svc.CreateOffer(ctx, offer, image()); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("discount %v error = %v, want ErrValidation", discount, err)
		}
	}

	offer := &model.Offer{Name: "sale", DiscountPercentage: 50}
	created, err := svc.CreateOffer(ctx, offer, image())
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	if created.Image == "" {
		t.Error("offer image URL not set")
	}
}

func TestCreateOffer_RequiresImage(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})

	offer := &model.Offer{Name: "sale", DiscountPercentage: 10}
	if _, err := svc.CreateOffer(context.Background(), offer, nil); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CreateOffer without image error = %v, want ErrValidation", err)
	}
}

func TestUpdateOffer_RetainsImageWithoutFile(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	offer := &model.Offer{
		Name:               "sale",
		DiscountPercentage: 10,
		StartDate:          time.Now(),
		EndDate:            time.Now().Add(24 * time.Hour),
	}
	created, err := svc.CreateOffer(ctx, offer, &Upload{MimeType: "image/png", Content: strings.NewReader("v1")})
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	original := created.Image

	// No file on this update: the stored URL must survive.
	name := "bigger sale"
	updated, err := svc.UpdateOffer(ctx, created.ID, repository.OfferPatch{Name: &name}, nil)
	if err != nil {
		t.Fatalf("UpdateOffer: %v", err)
	}
	if updated.Image != original {
		t.Errorf("Image after update without file = %q, want %q", updated.Image, original)
	}
	if updated.Name != "bigger sale" {
		t.Errorf("Name = %q, want %q", updated.Name, "bigger sale")
	}

	// With a file, the URL is replaced.
	replaced, err := svc.UpdateOffer(ctx, created.ID, repository.OfferPatch{},
		&Upload{MimeType: "image/png", Content: strings.NewReader("v2")})
	if err != nil {
		t.Fatalf("UpdateOffer with file: %v", err)
	}
	if replaced.Image == original {
		t.Error("Image should change when a replacement file is uploaded")
	}
}

func TestUpdateOffer_DiscountBounds(t *testing.T) {
	store := memory.New()
	svc := newCatalogService(store, &fakeObjectStore{})
	ctx := context.Background()

	bad := 150.0
	_, err := svc.UpdateOffer(ctx, primitive.NewObjectID(), repository.OfferPatch{DiscountPercentage: &bad}, nil)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("UpdateOffer discount 150 error = %v, want ErrValidation", err)
	}
}
