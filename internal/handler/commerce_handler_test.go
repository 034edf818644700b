package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bazaar/internal/handler"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository/memory"
	"github.com/sakif/bazaar/internal/service"
)

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func newCommerceFixture(t *testing.T) (*memory.Store, *handler.CommerceHandler) {
	t.Helper()
	store := memory.New()
	svc := service.NewCommerceService(store.Carts, store.Reviews, store.Offers, store.Categories, store.Products, testLogger())
	return store, handler.NewCommerceHandler(svc, testLogger())
}

func TestHandleStorefront_Shape(t *testing.T) {
	store, h := newCommerceFixture(t)
	ctx := context.Background()

	require.NoError(t, store.Offers.Create(ctx, &model.Offer{Name: "summer sale", DiscountPercentage: 20}))
	require.NoError(t, store.Categories.Create(ctx, &model.Category{Name: "Books"}))
	for i := 0; i < 12; i++ {
		require.NoError(t, store.Products.Create(ctx, &model.Product{Name: fmt.Sprintf("p%d", i)}))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/store", nil)
	rec := httptest.NewRecorder()

	h.HandleStorefront(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Offers      []json.RawMessage `json:"offers"`
		Recommended []json.RawMessage `json:"recommended"`
		Categories  []json.RawMessage `json:"categories"`
		Popular     []json.RawMessage `json:"popular"`
	}
	rawBody := rec.Body.String()
	require.NoError(t, json.Unmarshal([]byte(rawBody), &res))

	assert.Len(t, res.Offers, 1)
	assert.Len(t, res.Categories, 1)
	assert.Len(t, res.Popular, 10, "popular is capped at the first page of ten")
	assert.NotNil(t, res.Recommended)
	assert.Empty(t, res.Recommended)

	// recommended must serialize as [], not null.
	assert.Contains(t, rawBody, `"recommended":[]`)
}

func TestHandleCart_CreateAndGet(t *testing.T) {
	_, h := newCommerceFixture(t)

	body := `{"user":"64f000000000000000000001","products":["64f000000000000000000002"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/carts", jsonBody(body))
	rec := httptest.NewRecorder()

	h.HandleCreateCart(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var cart model.Cart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))

	getReq := httptest.NewRequest(http.MethodGet, "/api/carts/x", nil)
	getReq.SetPathValue("id", cart.ID.Hex())
	getRec := httptest.NewRecorder()

	h.HandleGetCart(getRec, getReq)
	assert.Equal(t, http.StatusOK, getRec.Code)
}

func TestHandleCart_BadUserID(t *testing.T) {
	_, h := newCommerceFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/carts", jsonBody(`{"user":"nope","products":[]}`))
	rec := httptest.NewRecorder()

	h.HandleCreateCart(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReview_RatingRejected(t *testing.T) {
	_, h := newCommerceFixture(t)

	body := `{"user":"64f000000000000000000001","product":"64f000000000000000000002","rating":8,"comment":"!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", jsonBody(body))
	rec := httptest.NewRecorder()

	h.HandleCreateReview(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
