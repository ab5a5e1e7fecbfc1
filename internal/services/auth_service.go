package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fit-challenge/internal/auth"
	"fit-challenge/internal/models"
	"fit-challenge/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService handles signup and login
type AuthService struct {
	repo *repository.Repository
}

func NewAuthService(repo *repository.Repository) *AuthService {
	return &AuthService{repo: repo}
}

// Register creates a user together with an empty wallet and returns a
// signed token.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		CreatedAt:    time.Now(),
	}

	err = s.repo.Atomic(ctx, func(r *repository.Repository) error {
		if err := r.CreateUser(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("email or username already taken")
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		wallet := &models.Wallet{
			ID:        uuid.New(),
			UserID:    user.ID,
			Balance:   0,
			CreatedAt: time.Now(),
		}
		return r.CreateWallet(ctx, wallet)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login verifies credentials and returns a signed token
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if user.Disabled {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}
