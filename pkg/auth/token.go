package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyClaims are the claims carried by an API key token. The JTI is
// persisted alongside the key so individual keys can be revoked.
type APIKeyClaims struct {
	UserUUID string `json:"user_uuid"`
	jwt.RegisteredClaims
}

// TokenMinter issues and verifies API key tokens for users.
type TokenMinter struct {
	secret []byte
}

// NewTokenMinter creates a TokenMinter signing with the given secret.
func NewTokenMinter(secret string) *TokenMinter {
	return &TokenMinter{secret: []byte(secret)}
}

// MintAPIKey creates a signed API key token for a user. It returns the
// token string, the token JTI and the expiry time.
func (m *TokenMinter) MintAPIKey(userUUID string, ttl time.Duration) (string, string, time.Time, error) {
	jti := uuid.New().String()
	expiry := time.Now().Add(ttl)

	claims := APIKeyClaims{
		UserUUID: userUUID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to sign api key: %w", err)
	}
	return signed, jti, expiry, nil
}

// VerifyAPIKey parses and validates a token string and returns its claims.
func (m *TokenMinter) VerifyAPIKey(tokenString string) (*APIKeyClaims, error) {
	claims := &APIKeyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid api key: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid api key")
	}
	return claims, nil
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares a bcrypt hash against a plaintext password.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
