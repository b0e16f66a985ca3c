// Package auth verifies identity tokens and turns them into the minimal
// profile the presence core consumes. Tokens are issued elsewhere; this
// service only validates signature and expiry.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mapcollab/boardd/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified user profile.
type Identity struct {
	ID       domain.UserID `json:"id"`
	Name     string        `json:"name"`
	Initials string        `json:"initials"`
	Email    string        `json:"email,omitempty"`
	Picture  string        `json:"picture,omitempty"`
}

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Service validates HS256 identity tokens with a shared secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given identity. Used by tooling and tests;
// production tokens normally come from the identity provider.
func (s *Service) Issue(id domain.UserID, name, email, picture string) (string, error) {
	claims := Claims{
		Name:    name,
		Email:   email,
		Picture: picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(id),
			Issuer:    "boardd",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and builds the profile. Name falls
// back to email, then "Unknown"; initials are derived from the name.
func (s *Service) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	if name == "" {
		name = "Unknown"
	}

	return Identity{
		ID:       domain.UserID(claims.Subject),
		Name:     name,
		Initials: InitialsOf(name),
		Email:    claims.Email,
		Picture:  claims.Picture,
	}, nil
}

// InitialsOf takes the first letter of the first two words, uppercased.
func InitialsOf(name string) string {
	var b strings.Builder
	for i, part := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r := []rune(part)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}
