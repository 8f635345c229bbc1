// Package auth signs and verifies the unsubscribe links sent in alert emails.
package auth

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTokenTTL is how long an unsubscribe link stays valid
	DefaultTokenTTL = 30 * 24 * time.Hour

	unsubscribePurpose = "unsubscribe"
	unsubscribePath    = "/api/v1/alerts/unsubscribe"
)

var (
	// ErrInvalidToken indicates the token is invalid
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates the token has expired
	ErrTokenExpired = errors.New("token expired")
	// ErrDisabled indicates no signing secret is configured
	ErrDisabled = errors.New("unsubscribe links disabled")
)

type unsubscribeClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Service issues unsubscribe tokens
type Service struct {
	secret []byte
	appURL string
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a new token service. An empty secret disables links.
func NewService(secret, appURL string) *Service {
	return &Service{
		secret: []byte(secret),
		appURL: appURL,
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
}

// Enabled reports whether tokens can be issued and verified
func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// GenerateToken signs an unsubscribe token for a subscription
func (s *Service) GenerateToken(subscriptionID uuid.UUID) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	now := s.now()
	claims := unsubscribeClaims{
		Purpose: unsubscribePurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subscriptionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies an unsubscribe token and returns its subscription id
func (s *Service) ValidateToken(tokenString string) (uuid.UUID, error) {
	if !s.Enabled() {
		return uuid.Nil, ErrDisabled
	}

	claims := &unsubscribeClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrInvalidToken
	}
	if !token.Valid || claims.Purpose != unsubscribePurpose {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// UnsubscribeURL returns the link for a subscription, or "" when links are
// disabled or no app URL is configured.
func (s *Service) UnsubscribeURL(subscriptionID uuid.UUID) (string, error) {
	if !s.Enabled() || s.appURL == "" {
		return "", nil
	}
	token, err := s.GenerateToken(subscriptionID)
	if err != nil {
		return "", fmt.Errorf("failed to sign unsubscribe token: %w", err)
	}
	return s.appURL + unsubscribePath + "?token=" + url.QueryEscape(token), nil
}
