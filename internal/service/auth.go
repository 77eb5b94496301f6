package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gatekeep/gatekeep-go/internal/crypto"
	"github.com/gatekeep/gatekeep-go/internal/model"
	"github.com/gatekeep/gatekeep-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrUserExists         = errors.New("user already exists")
	ErrFieldTooLong       = errors.New("must be at most 255 characters")
)

// maxFieldLength matches the VARCHAR(255) user columns.
const maxFieldLength = 255

// AuthService handles authentication business logic.
type AuthService struct {
	repo   repository.UserRepository
	hasher *crypto.Hasher
	tokens *crypto.TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo repository.UserRepository, hasher *crypto.Hasher, tokens *crypto.TokenIssuer) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// Signup creates a new user account. No token is issued; the caller logs in separately.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	if req.Username == "" {
		return nil, ErrUsernameRequired
	}
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}
	if err := checkFieldLengths(req); err != nil {
		return nil, err
	}

	// Fast path only: the unique constraint in Create is authoritative.
	_, err := s.repo.GetByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("looking up username: %w", err)
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		Country:      req.Country,
		PasswordHash: hash,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns a signed session token.
// Unknown usernames and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up username: %w", err)
	}

	match, err := s.hasher.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !match {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return token, nil
}

// GetProfile returns the safe profile of the user a validated token was issued to.
// A user that no longer exists makes the token invalid.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrInvalidToken
		}
		return model.UserResponse{}, fmt.Errorf("looking up user: %w", err)
	}

	return user.ToResponse(), nil
}

func checkFieldLengths(req model.SignupRequest) error {
	fields := []struct{ name, value string }{
		{"username", req.Username},
		{"email", req.Email},
		{"country", req.Country},
	}
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > maxFieldLength {
			return fmt.Errorf("%s %w", f.name, ErrFieldTooLong)
		}
	}
	return nil
}
