// Package auth signs and verifies the bearer tokens that carry a caller's
// identity. Tokens are issued by the surrounding web layer; the ledger
// only verifies them.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"sacco-ledger/internal/domain/identity"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

var reUserID = regexp.MustCompile(`^[a-f0-9]{32}$`)

// Claims carries the role next to the standard claims; the user id is the subject.
type Claims struct {
	Role identity.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager handles HS256 token generation and validation.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{secretKey: []byte(secretKey), tokenDuration: tokenDuration}
}

func (m *JWTManager) Generate(id identity.Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return s, nil
}

// Validate parses tokenString and returns the identity it carries.
func (m *JWTManager) Validate(tokenString string) (identity.Identity, error) {
	if tokenString == "" {
		return identity.Identity{}, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return identity.Identity{}, ErrInvalidToken
	}
	if !reUserID.MatchString(claims.Subject) || !claims.Role.Valid() {
		return identity.Identity{}, ErrInvalidToken
	}
	return identity.Identity{UserID: claims.Subject, Role: claims.Role}, nil
}
