package service

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/auth"
	"github.com/sakif/bazaar/internal/repository/memory"
)

func newUserService(store *memory.Store) *UserService {
	return NewUserService(store.Users, store.Follows, testLogger())
}

func TestRegister_Conflict(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	id := auth.Identity{UID: "u1", Email: "u1@example.com", Name: "One"}

	if _, err := svc.Register(ctx, id); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(ctx, id)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Register error = %v, want ErrConflict", err)
	}
}

func TestFollowUnfollow_Symmetry(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	a := mustRegister(t, store, "u1", "A")
	b := mustRegister(t, store, "u2", "B")

	if err := svc.Follow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	followed, err := store.Users.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(followed.Following) != 1 {
		t.Fatalf("following list length after Follow = %d, want 1", len(followed.Following))
	}

	if err := svc.Unfollow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Unfollow: %v", err)
	}

	after, err := store.Users.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(after.Following) != 0 {
		t.Errorf("following list length after Unfollow = %d, want 0", len(after.Following))
	}
	if _, err := store.Follows.Get(ctx, a.ID, b.ID); err == nil {
		t.Error("follow edge still present after Unfollow")
	}
}

func TestFollow_Duplicate(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	a := mustRegister(t, store, "u1", "A")
	b := mustRegister(t, store, "u2", "B")

	if err := svc.Follow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("first Follow: %v", err)
	}

	err := svc.Follow(ctx, a.ID, b.ID)
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Fatalf("second Follow error = %v, want ErrDuplicate", err)
	}
}

func TestFollow_OneSidedListMaintenance(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	a := mustRegister(t, store, "u1", "A")
	b := mustRegister(t, store, "u2", "B")

	if err := svc.Follow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	// Only the follower's side is written; the followed user's followers
	// array stays untouched.
	other, err := store.Users.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(other.Followers) != 0 {
		t.Errorf("followed user's followers length = %d, want 0", len(other.Followers))
	}
}

func TestFollow_UnknownUser(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	a := mustRegister(t, store, "u1", "A")

	err := svc.Follow(ctx, a.ID, primitive.NewObjectID())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Follow unknown user error = %v, want ErrNotFound", err)
	}
}

func TestUnfollow_NotFollowing(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	a := mustRegister(t, store, "u1", "A")
	b := mustRegister(t, store, "u2", "B")

	err := svc.Unfollow(ctx, a.ID, b.ID)
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Fatalf("Unfollow without edge error = %v, want ErrDuplicate", err)
	}
}

func TestGetProfile(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	mustRegister(t, store, "u1", "A")

	user, err := svc.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if user.Name != "A" {
		t.Errorf("Name = %q, want %q", user.Name, "A")
	}

	if _, err := svc.GetProfile(ctx, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProfile missing uid error = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetProfile(ctx, ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("GetProfile empty uid error = %v, want ErrValidation", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	mustRegister(t, store, "u1", "A")

	updated, err := svc.UpdateProfile(ctx, "u1", "New Name", "http://pic")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "New Name" || updated.Picture != "http://pic" {
		t.Errorf("updated profile = %q/%q, want %q/%q", updated.Name, updated.Picture, "New Name", "http://pic")
	}

	if _, err := svc.UpdateProfile(ctx, "missing", "x", "y"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateProfile missing uid error = %v, want ErrNotFound", err)
	}
}
