package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"github.com/astracore/crm-backend/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles credential exchange and token issuance.
type AuthService struct {
	userRepo        repository.UserRepository
	jwtSecret       string
	accessTokenTTL  int // minutes
	refreshTokenTTL int // days
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, accessTokenTTL, refreshTokenTTL int) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		jwtSecret:       jwtSecret,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login validates credentials and issues an access/refresh token pair.
// Absent users, inactive users and digest mismatches are indistinguishable
// to the caller.
func (s *AuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}
	user.LastLoginAt = &now

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh verifies a refresh token and reissues an access token from the
// token's own claims. The role is deliberately not re-read from storage, so
// a role change only takes effect once the refresh token expires or the user
// logs in again.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := utils.ParseToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}
	accessToken, err := utils.NewAccessToken(s.jwtSecret, *claims, s.accessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return accessToken, nil
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	claims := utils.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	accessToken, err := utils.NewAccessToken(s.jwtSecret, claims, s.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err := utils.NewRefreshToken(s.jwtSecret, claims, s.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
