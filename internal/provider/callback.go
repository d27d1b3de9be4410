package provider

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Callback token errors.
var (
	ErrInvalidCallbackToken = errors.New("invalid callback token")
	ErrExpiredCallbackToken = errors.New("expired callback token")
)

// CallbackClaims are the claims embedded in a signed webhook callback
// URL. The placeholder ID rides along so a completion signal can be
// correlated even when the provider omits our task ID from its payload.
type CallbackClaims struct {
	PlaceholderID string `json:"phid,omitempty"`
	jwt.RegisteredClaims
}

// CallbackSigner mints and verifies the signed tokens embedded in the
// webhook callback URLs handed to async providers. A provider can only
// hit the completion endpoint with a URL we generated ourselves.
type CallbackSigner struct {
	secret  []byte
	ttl     time.Duration
	baseURL string
}

// NewCallbackSigner creates a signer for callback URLs rooted at baseURL.
func NewCallbackSigner(secret string, ttl time.Duration, baseURL string) *CallbackSigner {
	return &CallbackSigner{
		secret:  []byte(secret),
		ttl:     ttl,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SignedURL returns the full webhook URL for one submission, with a
// token binding it to the task correlation keys.
func (s *CallbackSigner) SignedURL(taskRecordID, placeholderID string) (string, error) {
	now := time.Now().UTC()
	claims := CallbackClaims{
		PlaceholderID: placeholderID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   taskRecordID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign callback token: %w", err)
	}

	return s.baseURL + "/webhooks/generation/" + signed, nil
}

// Verify validates a callback token and returns its claims.
func (s *CallbackSigner) Verify(tokenString string) (*CallbackClaims, error) {
	claims := &CallbackClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCallbackToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallbackToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidCallbackToken
	}

	return claims, nil
}
