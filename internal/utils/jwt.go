package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/astracore/crm-backend/internal/constants"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the identity carried by a signed access or refresh token.
type TokenClaims struct {
	UserID uint64
	Email  string
	Role   constants.Role
}

// NewAccessToken creates a short-lived signed JWT for API access.
func NewAccessToken(secret string, claims TokenClaims, ttlMinutes int) (string, error) {
	return signToken(secret, claims, time.Duration(ttlMinutes)*time.Minute)
}

// NewRefreshToken creates a long-lived signed JWT used only to mint new
// access tokens.
func NewRefreshToken(secret string, claims TokenClaims, ttlDays int) (string, error) {
	return signToken(secret, claims, time.Duration(ttlDays)*24*time.Hour)
}

func signToken(secret string, claims TokenClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", claims.UserID),
		"email": claims.Email,
		"role":  string(claims.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry of a token and extracts its
// identity claims.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	var userID uint64
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	email, _ := mapClaims["email"].(string)
	roleStr, _ := mapClaims["role"].(string)
	role := constants.Role(roleStr)
	if !constants.ValidRole(role) {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{UserID: userID, Email: email, Role: role}, nil
}
