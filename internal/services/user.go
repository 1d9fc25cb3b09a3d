package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"photo-gallery/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail validation
var ErrInvalidToken = errors.New("invalid token")

// CredentialStore is the persisted username -> digest mapping
type CredentialStore interface {
	Init() (bool, error)
	Load() (models.Credentials, error)
}

// UserService handles credential checks and login tokens
type UserService struct {
	creds     CredentialStore
	jwtSecret []byte
	tokenTTL  time.Duration
	clock     Clock
}

// NewUserService creates a new user service
func NewUserService(creds CredentialStore, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		creds:     creds,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		clock:     RealClock{},
	}
}

// HashPassword returns the hex SHA-256 digest stored in the credential file
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether username exists with the given password.
// Any failure to read the store yields false together with the error.
func (s *UserService) Verify(ctx context.Context, username, password string) (bool, error) {
	creds, err := s.creds.Load()
	if err != nil {
		return false, fmt.Errorf("failed to load credentials: %w", err)
	}

	stored, ok := creds[username]
	if !ok {
		// Hash anyway so unknown users cost the same as wrong passwords.
		HashPassword(password)
		return false, nil
	}

	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(computed)) == 1, nil
}

// TokensEnabled reports whether a signing secret is configured
func (s *UserService) TokensEnabled() bool {
	return len(s.jwtSecret) > 0
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(username string) (string, error) {
	if !s.TokensEnabled() {
		return "", errors.New("jwt secret is not configured")
	}

	now := s.clock.Now()
	claims := jwt.MapClaims{
		"username": username,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the username
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	if !s.TokensEnabled() {
		return "", ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", fmt.Errorf("%w: username not found", ErrInvalidToken)
	}

	return username, nil
}
