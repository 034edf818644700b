package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
	"github.com/sakif/bazaar/internal/repository/memory"
)

func newPostService(store *memory.Store, assets *fakeObjectStore) *PostService {
	return NewPostService(store.Posts, store.Likes, store.Users, assets, testLogger())
}

func TestCreatePost_UploadsInOrder(t *testing.T) {
	store := memory.New()
	assets := &fakeObjectStore{}
	svc := newPostService(store, assets)
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")

	uploads := []Upload{
		{MimeType: "image/png", Content: strings.NewReader("one")},
		{MimeType: "image/png", Content: strings.NewReader("two")},
		{MimeType: "image/png", Content: strings.NewReader("three")},
	}

	post, err := svc.Create(ctx, author.ID, "hello", nil, false, uploads)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	want := []string{
		"http://assets.local/static/images-one",
		"http://assets.local/static/images-two",
		"http://assets.local/static/images-three",
	}
	if len(post.Images) != len(want) {
		t.Fatalf("image count = %d, want %d", len(post.Images), len(want))
	}
	for i := range want {
		if post.Images[i] != want[i] {
			t.Errorf("Images[%d] = %q, want %q", i, post.Images[i], want[i])
		}
	}
}

func TestCreatePost_UploadFailureAborts(t *testing.T) {
	store := memory.New()
	assets := &fakeObjectStore{fail: true}
	svc := newPostService(store, assets)
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")

	_, err := svc.Create(ctx, author.ID, "hello", nil, false, []Upload{
		{MimeType: "image/png", Content: strings.NewReader("one")},
	})
	if err == nil {
		t.Fatal("Create should fail when the asset host fails")
	}

	posts, err := store.Posts.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("post count after failed upload = %d, want 0", len(posts))
	}
}

func TestLike_TwiceIsDuplicate(t *testing.T) {
	store := memory.New()
	svc := newPostService(store, &fakeObjectStore{})
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")
	liker := mustRegister(t, store, "u2", "B")

	post, err := svc.Create(ctx, author.ID, "post", nil, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Like(ctx, post.ID, liker.ID); err != nil {
		t.Fatalf("first Like: %v", err)
	}

	_, err = svc.Like(ctx, post.ID, liker.ID)
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Fatalf("second Like error = %v, want ErrDuplicate", err)
	}
}

func TestList_LikeCountMatchesEdges(t *testing.T) {
	store := memory.New()
	svc := newPostService(store, &fakeObjectStore{})
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")
	b := mustRegister(t, store, "u2", "B")
	c := mustRegister(t, store, "u3", "C")

	post, err := svc.Create(ctx, author.ID, "post", nil, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Like(ctx, post.ID, b.ID); err != nil {
		t.Fatalf("Like b: %v", err)
	}
	if _, err := svc.Like(ctx, post.ID, c.ID); err != nil {
		t.Fatalf("Like c: %v", err)
	}

	views, err := svc.List(ctx, b.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("view count = %d, want 1", len(views))
	}

	view := views[0]
	if view.LikeCount != 2 {
		t.Errorf("LikeCount = %d, want 2", view.LikeCount)
	}
	if !view.IsLikedByCurrentUser {
		t.Error("IsLikedByCurrentUser = false for a user who liked the post")
	}
	if view.Author == nil || view.Author.ID != author.ID {
		t.Error("author not resolved on the projection")
	}

	// Anonymous viewer never sees the like flag set.
	anon, err := svc.List(ctx, primitive.NilObjectID)
	if err != nil {
		t.Fatalf("List anonymous: %v", err)
	}
	if anon[0].IsLikedByCurrentUser {
		t.Error("IsLikedByCurrentUser = true for an anonymous viewer")
	}
}

func TestUnlike_RemovesEdge(t *testing.T) {
	store := memory.New()
	svc := newPostService(store, &fakeObjectStore{})
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")
	liker := mustRegister(t, store, "u2", "B")

	post, err := svc.Create(ctx, author.ID, "post", nil, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	like, err := svc.Like(ctx, post.ID, liker.ID)
	if err != nil {
		t.Fatalf("Like: %v", err)
	}

	if err := svc.Unlike(ctx, post.ID, like.ID); err != nil {
		t.Fatalf("Unlike: %v", err)
	}

	views, err := svc.List(ctx, liker.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if views[0].LikeCount != 0 {
		t.Errorf("LikeCount after Unlike = %d, want 0", views[0].LikeCount)
	}
}

func TestUpdatePost_NotOwner(t *testing.T) {
	store := memory.New()
	svc := newPostService(store, &fakeObjectStore{})
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")
	mustRegister(t, store, "u2", "B")

	post, err := svc.Create(ctx, author.ID, "original", nil, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	desc := "hijacked"
	_, err = svc.Update(ctx, "u2", post.ID, repository.PostPatch{Description: &desc})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Update by non-owner error = %v, want ErrForbidden", err)
	}

	// No mutation happened.
	stored, err := store.Posts.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Description != "original" {
		t.Errorf("Description after forbidden update = %q, want %q", stored.Description, "original")
	}
}

func TestDeletePost_NotOwnerIsNotFound(t *testing.T) {
	store := memory.New()
	svc := newPostService(store, &fakeObjectStore{})
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")
	mustRegister(t, store, "u2", "B")

	post, err := svc.Create(ctx, author.ID, "post", nil, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// "Not yours" and "absent" are the same answer under the combined
	// (id, author) filter.
	err = svc.Delete(ctx, "u2", post.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Delete by non-owner error = %v, want ErrNotFound", err)
	}

	if _, err := store.Posts.GetByID(ctx, post.ID); err != nil {
		t.Error("post should still exist after a forbidden delete")
	}
}

func TestLikers_ResolvesUsers(t *testing.T) {
	store := memory.New()
	svc := newPostService(store, &fakeObjectStore{})
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")
	b := mustRegister(t, store, "u2", "B")

	post, err := svc.Create(ctx, author.ID, "post", nil, false, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Like(ctx, post.ID, b.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}

	likers, err := svc.Likers(ctx, post.ID)
	if err != nil {
		t.Fatalf("Likers: %v", err)
	}
	if len(likers) != 1 || likers[0].UID != "u2" {
		t.Errorf("Likers = %+v, want the one liking user", likers)
	}
}

func TestCreatePost_WithItems(t *testing.T) {
	store := memory.New()
	svc := newPostService(store, &fakeObjectStore{})
	ctx := context.Background()

	author := mustRegister(t, store, "u1", "A")

	items := []model.Item{{Name: "chair", Description: "wooden", Price: 25}}
	post, err := svc.Create(ctx, author.ID, "selling", items, true, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !post.IsBuySell {
		t.Error("IsBuySell = false, want true")
	}
	if len(post.Items) != 1 || post.Items[0].Name != "chair" {
		t.Errorf("Items = %+v, want the chair item", post.Items)
	}
}
