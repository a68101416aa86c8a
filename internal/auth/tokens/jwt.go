package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries either an admin user identity (UserID, Username) or a
// web client identity (ClientToken), never both.
type Claims struct {
	UserID      string   `json:"user_id,omitempty"`
	Username    string   `json:"username,omitempty"`
	ClientToken string   `json:"user_token,omitempty"`
	Roles       []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type TokenService struct {
	secret    []byte
	expiresIn time.Duration
}

func NewTokenService(secret, expiresIn string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	duration := time.Hour
	if expiresIn != "" {
		parsed, err := time.ParseDuration(expiresIn)
		if err != nil {
			return nil, fmt.Errorf("invalid jwt expiry %q: %w", expiresIn, err)
		}
		duration = parsed
	}
	return &TokenService{secret: []byte(secret), expiresIn: duration}, nil
}

func (s *TokenService) Generate(claims Claims) (string, error) {
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
