package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StateTTL bounds the OAuth round trip.
const StateTTL = 10 * time.Minute

// StateClaims ride in the login_state cookie across the provider round trip.
type StateClaims struct {
	ReturnTo string `json:"return_to"`
	jwt.RegisteredClaims
}

// StateSigner signs and verifies login state tokens.
type StateSigner struct {
	secret []byte
	now    func() time.Time
}

func NewStateSigner(secret string) *StateSigner {
	return &StateSigner{secret: []byte(secret), now: time.Now}
}

// Issue returns a signed token remembering where to land after login.
func (s *StateSigner) Issue(returnTo string) (string, error) {
	now := s.now()
	claims := &StateClaims{
		ReturnTo: SafeReturnPath(returnTo),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        GenerateToken(),
			ExpiresAt: jwt.NewNumericDate(now.Add(StateTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign login state: %w", err)
	}
	return signed, nil
}

// Verify returns the return path carried by a valid state token.
func (s *StateSigner) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid login state")
	}
	return SafeReturnPath(claims.ReturnTo), nil
}

// SafeReturnPath only lets local absolute paths through.
func SafeReturnPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return "/"
	}
	return p
}
