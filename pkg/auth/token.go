// Package auth validates and issues the bearer tokens that identify a
// workspace owner.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// clockSkew is tolerated on exp and nbf.
const clockSkew = 30 * time.Second

// Claims carries the owner id in the subject.
type Claims struct {
	UserID string   `json:"sub"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig configures a JWTValidator. Only HS256 is accepted; tokens from
// the identity provider are verified by the API Gateway authorizer before
// they reach the service.
type JWTConfig struct {
	SigningMethod string
	SecretKey     string
	Issuer        string
	// Audience, when set, must appear in the token's aud claim.
	Audience string
}

type JWTValidator struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.SigningMethod != "" && config.SigningMethod != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unsupported signing method: %s", config.SigningMethod)
	}
	if config.SecretKey == "" {
		return nil, errors.New("secret key required for HS256")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkew),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}
	return &JWTValidator{secret: []byte(config.SecretKey), parser: jwt.NewParser(opts...)}, nil
}

// ValidateToken parses a raw or "Bearer "-prefixed token.
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return nil, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	return claims, nil
}

type JWTGeneratorConfig struct {
	SecretKey  string
	Issuer     string
	Audience   string
	ExpiryTime time.Duration
}

// JWTGenerator issues HS256 tokens for the development token command.
type JWTGenerator struct {
	secret   []byte
	issuer   string
	audience jwt.ClaimStrings
	expiry   time.Duration
	now      func() time.Time
}

func NewJWTGenerator(config JWTGeneratorConfig) (*JWTGenerator, error) {
	if config.SecretKey == "" {
		return nil, errors.New("secret key required for HS256")
	}
	g := &JWTGenerator{
		secret: []byte(config.SecretKey),
		issuer: config.Issuer,
		expiry: config.ExpiryTime,
		now:    time.Now,
	}
	if g.expiry <= 0 {
		g.expiry = 15 * time.Minute
	}
	if config.Audience != "" {
		g.audience = jwt.ClaimStrings{config.Audience}
	}
	return g, nil
}

func (g *JWTGenerator) GenerateToken(userID, email string, roles []string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	now := g.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Audience:  g.audience,
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}
