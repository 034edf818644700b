package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/auth"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
)

// AuthService completes the identity-provider login: after the OAuth
// callback yields a Google profile, it loads or creates the local profile
// and issues the API token.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// AuthResult bundles the profile and the issued token so the handler can set
// the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginWithGoogle registers the profile on first login and loads it on
// subsequent logins, then mints a token carrying the identity claims.
func (s *AuthService) LoginWithGoogle(ctx context.Context, gu *auth.GoogleUser) (*AuthResult, error) {
	id := auth.Identity{
		UID:     gu.ID,
		Email:   gu.Email,
		Name:    gu.Name,
		Picture: gu.Picture,
	}

	user, err := s.users.GetByUID(ctx, id.UID)
	switch {
	case err == nil:
		// returning user
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			UID:     id.UID,
			Email:   id.Email,
			Name:    id.Name,
			Picture: id.Picture,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("creating profile on first login: %w", err)
		}
		s.logger.Info("profile created on first login", slog.String("uid", id.UID))
	default:
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	token, err := s.tokens.Generate(id)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Me returns the profile belonging to the authenticated caller.
func (s *AuthService) Me(ctx context.Context, uid string) (*model.User, error) {
	return s.users.GetByUID(ctx, uid)
}
