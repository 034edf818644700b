// Package service contains the business logic: ownership checks, edge
// bookkeeping, and the projections handlers serve. Services speak in domain
// types and apperror values — never in HTTP or bson.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/auth"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
)

// UserService handles profiles and the follow graph.
type UserService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	logger  *slog.Logger
}

func NewUserService(users repository.UserRepository, follows repository.FollowRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:   users,
		follows: follows,
		logger:  logger,
	}
}

// GetProfile returns the profile stored for an identity-provider uid.
func (s *UserService) GetProfile(ctx context.Context, uid string) (*model.User, error) {
	if uid == "" {
		return nil, apperror.ValidationFailed("uid", "uid is required")
	}
	return s.users.GetByUID(ctx, uid)
}

// UpdateProfile sets name and picture on the caller's profile and returns
// the updated document. Not-found when the caller has no profile yet.
func (s *UserService) UpdateProfile(ctx context.Context, uid, name, picture string) (*model.User, error) {
	user, err := s.users.UpdateProfile(ctx, uid, name, picture)
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("uid", uid))
	return user, nil
}

// Register creates a profile from the authenticated identity's claims.
// Conflict when a profile for that uid already exists. The repository's
// unique index backs the pre-check, so a racing double-registration still
// comes back as a conflict.
func (s *UserService) Register(ctx context.Context, id auth.Identity) (*model.User, error) {
	if _, err := s.users.GetByUID(ctx, id.UID); err == nil {
		return nil, apperror.Conflict("User already exists")
	}

	user := &model.User{
		UID:     id.UID,
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID.Hex()),
		slog.String("uid", user.UID),
	)
	return user, nil
}

// Follow creates the (current → other) follow edge and appends its id to
// the current user's following list.
//
// The two writes are deliberately not transactional — a crash in between
// leaves an edge whose id is missing from the list, which readers tolerate.
// Only the follower's side is maintained; the followed user's followers
// array is never touched (current contract).
func (s *UserService) Follow(ctx context.Context, currentUserID, otherUserID primitive.ObjectID) error {
	if _, err := s.users.GetByID(ctx, currentUserID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, otherUserID); err != nil {
		return err
	}

	// Advisory pre-check; the unique (user, following) index is the
	// authoritative guard against the check/insert race.
	if _, err := s.follows.Get(ctx, currentUserID, otherUserID); err == nil {
		return apperror.Duplicate("Already following this user")
	}

	edge := &model.Following{User: currentUserID, Following: otherUserID}
	if err := s.follows.Create(ctx, edge); err != nil {
		return err
	}

	if err := s.users.PushFollowing(ctx, currentUserID, edge.ID); err != nil {
		return fmt.Errorf("appending follow edge to following list: %w", err)
	}

	s.logger.Info("user followed",
		slog.String("user", currentUserID.Hex()),
		slog.String("following", otherUserID.Hex()),
	)
	return nil
}

// Unfollow removes the follow edge and pulls its id from the current user's
// following list. A missing edge answers "Not following this user".
func (s *UserService) Unfollow(ctx context.Context, currentUserID, otherUserID primitive.ObjectID) error {
	if _, err := s.users.GetByID(ctx, currentUserID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, otherUserID); err != nil {
		return err
	}

	edge, err := s.follows.Delete(ctx, currentUserID, otherUserID)
	if err != nil {
		return err
	}

	if err := s.users.PullFollowing(ctx, currentUserID, edge.ID); err != nil {
		return fmt.Errorf("removing follow edge from following list: %w", err)
	}

	s.logger.Info("user unfollowed",
		slog.String("user", currentUserID.Hex()),
		slog.String("following", otherUserID.Hex()),
	)
	return nil
}
