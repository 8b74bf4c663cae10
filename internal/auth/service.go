// Package auth is the upstream authentication collaborator: registration,
// login and bearer-token handling. The chat services never see credentials,
// only the resolved caller identity.
package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/models"
	"github.com/seaStamp/YOUng-chat-backend/internal/store"
)

// Service handles user registration and login.
type Service struct {
	store  store.Store
	tokens *TokenManager
}

// NewService creates the auth service.
func NewService(st store.Store, tokens *TokenManager) *Service {
	return &Service{store: st, tokens: tokens}
}

// Tokens exposes the token manager for the auth middleware.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, username, password, profileImage string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindDuplicate, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.store.CreateUser(ctx, email, username, string(hash), profileImage)
}

// Login verifies credentials and issues a bearer token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if user == nil {
		return "", time.Time{}, nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, user, nil
}
