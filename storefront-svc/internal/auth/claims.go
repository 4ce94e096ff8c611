package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid session token")

const maxTokenLifetime = 24 * time.Hour

type Claims struct {
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
	PhoneNumber string      `json:"phone_number"`
	Name        string      `json:"name"`
	jwt.RegisteredClaims
}

// DecodeToken reads the claims without checking the signature. The upstream
// API verifies the token on every protected call; here it only drives the UI.
func DecodeToken(token string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.expired(now) {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	return claims, nil
}

func (c *Claims) expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// lifetime is how long the token should stay persisted.
func (c *Claims) lifetime(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return maxTokenLifetime
	}
	return min(c.ExpiresAt.Sub(now), maxTokenLifetime)
}
