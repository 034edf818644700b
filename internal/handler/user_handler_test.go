package handler_test

import (
	"context"
	"encoding/json"
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

func newUserFixture(t *testing.T) (*memory.Store, *handler.UserHandler) {
	t.Helper()
	store := memory.New()
	svc := service.NewUserService(store.Users, store.Follows, testLogger())
	return store, handler.NewUserHandler(svc, testLogger())
}

func createUser(t *testing.T, store *memory.Store, uid, name string) *model.User {
	t.Helper()
	user := &model.User{UID: uid, Email: uid + "@example.com", Name: name}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

func TestHandleGetProfile_Found(t *testing.T) {
	store, h := newUserFixture(t)
	createUser(t, store, "u1", "Alice")

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", strings.NewReader(`{"uid":"u1"}`))
	rec := httptest.NewRecorder()

	h.HandleGetProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var user model.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
	assert.Equal(t, "Alice", user.Name)
}

func TestHandleGetProfile_NotFound(t *testing.T) {
	_, h := newUserFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", strings.NewReader(`{"uid":"missing"}`))
	rec := httptest.NewRecorder()

	h.HandleGetProfile(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleFollow_Lifecycle(t *testing.T) {
	store, h := newUserFixture(t)
	a := createUser(t, store, "u1", "A")
	b := createUser(t, store, "u2", "B")

	follow := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/user/follow/x/y", nil)
		req.SetPathValue("currentUserId", a.ID.Hex())
		req.SetPathValue("otherUserId", b.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleFollow(rec, req)
		return rec
	}

	rec := follow()
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Successfully followed the user"}`, rec.Body.String())

	// Second identical follow is a 400, not a 409.
	rec = follow()
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/user/unfollow/x/y", nil)
	req.SetPathValue("currentUserId", a.ID.Hex())
	req.SetPathValue("otherUserId", b.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleUnfollow(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Successfully unfollowed the user"}`, rec.Body.String())
}

func TestHandleFollow_UnknownUser(t *testing.T) {
	store, h := newUserFixture(t)
	a := createUser(t, store, "u1", "A")

	req := httptest.NewRequest(http.MethodPost, "/api/user/follow/x/y", nil)
	req.SetPathValue("currentUserId", a.ID.Hex())
	req.SetPathValue("otherUserId", "64f000000000000000000000")
	rec := httptest.NewRecorder()

	h.HandleFollow(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleFollow_MalformedID(t *testing.T) {
	_, h := newUserFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/user/follow/x/y", nil)
	req.SetPathValue("currentUserId", "not-a-hex-id")
	req.SetPathValue("otherUserId", "also-not")
	rec := httptest.NewRecorder()

	h.HandleFollow(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
