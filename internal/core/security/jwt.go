// Package security validates bearer tokens issued to receiving operators.
package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "stockreceipt/internal/core/context"
)

// Role allowed to apply receipts.
const RoleReceiver = "receiver"

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:   secret,
		Issuer:   "stockreceipt",
		TokenTTL: 8 * time.Hour,
	}
}

// Claims are the token claims.
type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
}

// JWTService issues and validates HMAC-signed tokens.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// IssueToken signs a token for an operator.
func (s *JWTService) IssueToken(op appctx.Operator) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.TokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   op.OperatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name:  op.Name,
		Roles: op.Roles,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken checks the signature, issuer, and expiry, and returns the operator.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.Operator, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return &appctx.Operator{
		OperatorID: claims.Subject,
		Name:       claims.Name,
		Roles:      claims.Roles,
	}, nil
}
