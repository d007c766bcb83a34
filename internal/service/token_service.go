package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/infrastructure"
)

// TokenService issues and checks the bearer tokens that guard the local API.
// With no secret configured, the API is open and every check passes.
type TokenService struct {
	authConfig *infrastructure.AuthConfig
	now        func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(authConfig *infrastructure.AuthConfig) *TokenService {
	return &TokenService{authConfig: authConfig, now: time.Now}
}

// IssuedToken is a signed access token and when it stops working
type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Enabled reports whether requests must carry a token
func (s *TokenService) Enabled() bool {
	return s.authConfig.SecretKey != ""
}

// Issue signs a new access token for client, e.g. "extension" or "cli"
func (s *TokenService) Issue(client string) (*IssuedToken, error) {
	if !s.Enabled() {
		return nil, domain.NewDomainError(domain.ErrInvalidInput, "AUTH_SECRET is not set")
	}
	if client == "" {
		client = "extension"
	}

	now := s.now()
	expiry := now.Add(s.authConfig.TokenExpiry)
	claims := jwt.MapClaims{
		"sub":  client,
		"jti":  uuid.NewString(),
		"type": "access",
		"iat":  now.Unix(),
		"exp":  expiry.Unix(),
		"iss":  s.authConfig.Issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.authConfig.SecretKey))
	if err != nil {
		return nil, err
	}

	return &IssuedToken{AccessToken: signed, ExpiresAt: expiry}, nil
}

// Validate checks a token and returns the client it was issued to
func (s *TokenService) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.authConfig.SecretKey), nil
	},
		jwt.WithIssuer(s.authConfig.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return "", domain.ErrInvalidToken
	}
	client, ok := claims["sub"].(string)
	if !ok || client == "" {
		return "", domain.ErrInvalidToken
	}
	return client, nil
}
