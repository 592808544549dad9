package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/team-task-api/internal/auth"
	"github.com/yukikurage/team-task-api/internal/authz"
	"github.com/yukikurage/team-task-api/internal/models"
	"github.com/yukikurage/team-task-api/internal/repository"
)

// AuthService verifies credentials and issues access tokens.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// LoginResult is a verified user together with a fresh token.
type LoginResult struct {
	User  *models.User
	Token auth.IssuedToken
}

// VerifyCredentials returns the user owning email when password matches.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.BurnCompare(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies credentials, records the login and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user); err != nil {
		slog.WarnContext(ctx, "failed to record last login", "user_id", user.ID, "error", err)
	}

	token, err := s.tokens.IssueToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token}, nil
}

// Authenticate turns a bearer token into an actor.
func (s *AuthService) Authenticate(raw string) (authz.Actor, error) {
	claims, err := s.tokens.VerifyToken(raw)
	if err != nil {
		return authz.Actor{}, err
	}
	id, err := claims.UserID()
	if err != nil {
		return authz.Actor{}, fmt.Errorf("%w: %v", auth.ErrTokenInvalid, err)
	}
	return authz.Actor{ID: id, Role: claims.Role}, nil
}
