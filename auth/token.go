package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims defines the data carried inside a session JWT.
// The username is the only identity the store trusts; the route layer
// copies it from the validated token into every core call.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates session tokens with a shared HMAC key.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
}

func NewTokenIssuer(key string, ttl time.Duration) TokenIssuer {
	return TokenIssuer{key: []byte(key), ttl: ttl}
}

// Generate creates a signed HS256 token bound to the given username.
func (i TokenIssuer) Generate(username string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chatline",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.key)
}

// Validate parses a token string and returns its claims when the
// signature and expiration check out.
func (i TokenIssuer) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.key, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
