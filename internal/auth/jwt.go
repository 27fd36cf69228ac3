package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// ErrWrongTokenKind is returned when a refresh token is presented where an access token is expected, or vice versa.
var ErrWrongTokenKind = errors.New("wrong token kind")

// Claims represents JWT claims for WireChat DM authentication.
type Claims struct {
	UserID int64     `json:"userId"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT configuration. Access and refresh tokens are signed with different secrets.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func (cfg *JWTConfig) secret(kind TokenKind) []byte {
	if kind == TokenRefresh {
		return cfg.RefreshSecret
	}
	return cfg.AccessSecret
}

func (cfg *JWTConfig) ttl(kind TokenKind) time.Duration {
	if kind == TokenRefresh {
		return cfg.RefreshTTL
	}
	return cfg.AccessTTL
}

// GenerateToken creates a signed token of the given kind for userID.
func GenerateToken(cfg *JWTConfig, kind TokenKind, userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ttl(kind))),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.secret(kind))
}

// ValidateToken parses and validates a token of the expected kind.
func ValidateToken(cfg *JWTConfig, kind TokenKind, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return cfg.secret(kind), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("token has no user id")
	}

	return claims, nil
}
