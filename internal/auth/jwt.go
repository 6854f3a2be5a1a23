package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"attendhub/internal/store"
)

// Session is the ephemeral authenticated identity. It lives only inside a
// signed token; nothing is persisted server-side, so logout is token discard
// and a process restart invalidates nothing except by expiry.
type Session struct {
	MemberID   string           `json:"member_id"`
	Role       store.Role       `json:"role"`
	Name       string           `json:"name"`
	Department store.Department `json:"department"`
}

// Claims is the JWT payload carrying a session.
type Claims struct {
	Role       store.Role       `json:"role"`
	Name       string           `json:"name"`
	Department store.Department `json:"department"`
	jwt.RegisteredClaims
}

// Session rebuilds the session held by the claims.
func (c Claims) Session() Session {
	return Session{
		MemberID:   c.Subject,
		Role:       c.Role,
		Name:       c.Name,
		Department: c.Department,
	}
}

// Issue signs an HS256 access token for the session.
func Issue(s Session, issuer, key string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := Claims{
		Role:       s.Role,
		Name:       s.Name,
		Department: s.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.MemberID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse validates a token and returns its claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	return *claims, nil
}
