package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password too short (min 8 characters)")
)

// AuthService handles registration, login and bearer-token resolution.
type AuthService struct {
	storage    *storage.Repository
	sessionTTL time.Duration
}

func NewAuthService(repo *storage.Repository, sessionTTL time.Duration) *AuthService {
	return &AuthService{storage: repo, sessionTTL: sessionTTL}
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (storage.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return storage.User{}, ErrInvalidEmail
	}
	if len(password) < 8 {
		return storage.User{}, ErrWeakPassword
	}

	if _, err := s.storage.GetUserByEmail(ctx, email); err == nil {
		return storage.User{}, ErrEmailTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return storage.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return storage.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := storage.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(displayName),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.storage.CreateUser(ctx, u); err != nil {
		return storage.User{}, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", u.ID)
	return u, nil
}

// Login verifies credentials and issues an opaque session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, storage.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", storage.User{}, ErrInvalidCredentials
		}
		return "", storage.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", storage.User{}, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return "", storage.User{}, err
	}
	if err := s.storage.CreateSession(ctx, token, u.ID, time.Now().Add(s.sessionTTL)); err != nil {
		return "", storage.User{}, err
	}

	slog.InfoContext(ctx, "User logged in", "user_id", u.ID)
	return token, u, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (storage.User, error) {
	if token == "" {
		return storage.User{}, core.ErrNotFound
	}
	return s.storage.GetSessionUser(ctx, token)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
